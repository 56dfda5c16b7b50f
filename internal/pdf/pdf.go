// Package pdf provides PDF manipulation built on pdfcpu plus the page-range and
// placement arithmetic the tools share.
//
// Functions:
//   - MergePDFs, RemoveBookmarks: combine uploads into one document.
//   - SplitPages, RotatePages, ExtractPages: page level edits driven by normalized ranges.
//   - Optimize, CompressWithGhostscript: size reduction.
//   - SignPDF: stamps a prepared signature image at an absolute placement.
//   - PageCount, PageSize, Validate: inspection.
//
// These functions are used by the tool service to process user-uploaded files.
package pdf

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"go-filetools/internal/utils"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var configOnce sync.Once

// newConfig returns a relaxed pdfcpu configuration that never touches the
// user config directory.
func newConfig() *model.Configuration {
	configOnce.Do(pdfapi.DisableConfigDir)
	config := model.NewDefaultConfiguration()
	config.ValidationMode = model.ValidationRelaxed
	return config
}

// PageOutOfRangeError reports an explicit page number outside the document.
type PageOutOfRangeError struct {
	Page      int
	PageCount int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d is out of range (document has %d pages)", e.Page, e.PageCount)
}

// Validate checks that path holds a readable PDF.
func Validate(path string) error {
	return pdfapi.ValidateFile(path, newConfig())
}

// PageCount returns the number of pages in path.
func PageCount(path string) (int, error) {
	return pdfapi.PageCountFile(path)
}

// PageSize returns the media box of the 1-based page.
func PageSize(path string, page int) (Size, error) {
	dims, err := pdfapi.PageDimsFile(path)
	if err != nil {
		return Size{}, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if page < 1 || page > len(dims) {
		return Size{}, &PageOutOfRangeError{Page: page, PageCount: len(dims)}
	}
	d := dims[page-1]
	return Size{Width: d.Width, Height: d.Height}, nil
}

func MergePDFs(files []string, outputPath string) error {
	return pdfapi.MergeCreateFile(files, outputPath, false, newConfig())
}

func RemoveBookmarks(pdfPath string) error {
	return pdfapi.RemoveBookmarksFile(pdfPath, pdfPath, newConfig())
}

// SplitPages writes pages start..end, already normalized against the
// document, to outputPath.
func SplitPages(pdfPath string, start, end int, outputPath string) error {
	if start < 1 || end < start {
		return fmt.Errorf("invalid page selection %d-%d", start, end)
	}
	pages := []string{PageSelection(start, end)}
	return pdfapi.TrimFile(pdfPath, outputPath, pages, newConfig())
}

// RotatePages rotates the pages in r (every page when r is nil) clockwise by
// rotation degrees, which must be a multiple of 90.
func RotatePages(pdfPath string, rotation int, r *PageRange, outputPath string) error {
	if rotation%90 != 0 {
		return fmt.Errorf("rotation must be a multiple of 90, got %d", rotation)
	}
	count, err := PageCount(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}
	start, end := 0, count
	if r != nil {
		if start, end, err = r.Normalize(count); err != nil {
			return err
		}
	} else if count == 0 {
		return ErrEmptyDocument
	}
	rotation = ((rotation % 360) + 360) % 360
	if rotation == 0 {
		return utils.CopyFile(pdfPath, outputPath)
	}
	pages := []string{PageSelection(start, end)}
	return pdfapi.RotateFile(pdfPath, outputPath, rotation, pages, newConfig())
}

// ExtractPages copies the listed 1-based pages, in the given order, into a
// new document. Any page outside the document is an error.
func ExtractPages(pdfPath string, pages []int, outputPath string) error {
	count, err := PageCount(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}
	if count == 0 {
		return ErrEmptyDocument
	}
	selected := make([]string, 0, len(pages))
	for _, p := range pages {
		if p < 1 || p > count {
			return &PageOutOfRangeError{Page: p, PageCount: count}
		}
		selected = append(selected, strconv.Itoa(p))
	}
	return pdfapi.CollectFile(pdfPath, outputPath, selected, newConfig())
}

// Optimize rewrites the document with pdfcpu's optimizer (deduplicated
// resources, compressed streams).
func Optimize(pdfPath, outputPath string) error {
	return pdfapi.OptimizeFile(pdfPath, outputPath, newConfig())
}

// SignPDF stamps a signature image onto a PDF at the given placement.
// sigImgPath: signature image file (PNG/JPEG), already rotated
// pageNum: 1-based page number
// place: absolute bottom-left placement in points
// imgWidth: pixel width of the signature image, used to derive the scale
// outputPath: output PDF file
func SignPDF(pdfPath, sigImgPath string, pageNum int, place Placement, imgWidth float64, outputPath string) error {
	// Copy the original file to the output first
	if err := utils.CopyFile(pdfPath, outputPath); err != nil {
		return fmt.Errorf("failed to copy PDF: %w", err)
	}

	// Absolute scale maps image pixels to the requested width in points.
	scale := place.Width / imgWidth
	desc := fmt.Sprintf("scale:%.4f abs, pos:bl, rot:0, op:1", scale)

	wm, err := pdfcpu.ParseImageWatermarkDetails(sigImgPath, desc, true, types.POINTS)
	if err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to parse image watermark: %w", err)
	}

	// Manually override positioning
	wm.Dx = place.X
	wm.Dy = place.Y

	pages := []string{strconv.Itoa(pageNum)}
	if err := pdfapi.AddWatermarksFile(outputPath, "", pages, wm, newConfig()); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("failed to apply signature: %w", err)
	}

	return nil
}
