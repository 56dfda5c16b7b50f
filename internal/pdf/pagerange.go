package pdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyDocument is returned when a range is normalized against a document
// without pages.
var ErrEmptyDocument = errors.New("document has no pages")

// PageRange is a caller-supplied, 1-indexed inclusive range.
type PageRange struct {
	Start int
	End   int
}

func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// NormalizeRange turns a 1-indexed inclusive (start, end) into a zero-indexed
// half-open range within [0, pageCount). The result always holds at least one
// page: nonsensical input collapses to the single page at start-1.
func NormalizeRange(start, end, pageCount int) (int, int, error) {
	if pageCount <= 0 {
		return 0, 0, ErrEmptyDocument
	}
	normStart := clamp(start-1, 0, pageCount-1)
	normEnd := clamp(end, normStart+1, pageCount)
	return normStart, normEnd, nil
}

// Normalize applies NormalizeRange to r.
func (r PageRange) Normalize(pageCount int) (int, int, error) {
	return NormalizeRange(r.Start, r.End, pageCount)
}

// PageSelection renders a normalized half-open range as a 1-based inclusive
// selection string ("3-5") understood by pdfcpu.
func PageSelection(normStart, normEnd int) string {
	if normEnd-normStart == 1 {
		return strconv.Itoa(normStart + 1)
	}
	return fmt.Sprintf("%d-%d", normStart+1, normEnd)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParsePageRanges parses comma-separated "start-end" tokens. A bare number n
// is read as n-n.
func ParsePageRanges(input string) ([]PageRange, error) {
	var ranges []PageRange
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		r, err := ParsePageRange(token)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no page ranges given")
	}
	return ranges, nil
}

// ParsePageRange parses a single "start-end" or "n" token.
func ParsePageRange(token string) (PageRange, error) {
	token = strings.TrimSpace(token)
	startStr, endStr, found := strings.Cut(token, "-")
	if !found {
		endStr = startStr
	}
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return PageRange{}, fmt.Errorf("invalid page range %q", token)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return PageRange{}, fmt.Errorf("invalid page range %q", token)
	}
	return PageRange{Start: start, End: end}, nil
}

// ParsePageList parses comma-separated page numbers, keeping order and
// duplicates.
func ParsePageList(input string) ([]int, error) {
	var pages []int
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", token)
		}
		pages = append(pages, n)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages given")
	}
	return pages, nil
}
