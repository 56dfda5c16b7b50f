package document

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	marginSide   = 72.0
	marginTop    = 72.0
	marginBottom = 18.0

	bodySize   = 10.0
	bodyLeader = 12.0
	cellPad    = 6.0
)

type headingFont struct {
	size    float64
	leading float64
	after   float64
}

var headings = map[int]headingFont{
	1: {size: 16, leading: 20, after: 12},
	2: {size: 14, leading: 17, after: 6},
	3: {size: 12, leading: 14, after: 6},
}

// RenderPDF lays doc out on Letter pages and writes the result to path.
func RenderPDF(doc *Document, path string) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle("Converted document", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, b := range doc.Blocks {
		switch {
		case b.Paragraph != nil:
			renderParagraph(pdf, tr, *b.Paragraph)
		case b.Table != nil:
			pdf.Ln(14.4)
			renderTable(pdf, tr, *b.Table)
			pdf.Ln(14.4)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func renderParagraph(pdf *fpdf.Fpdf, tr func(string) string, p Paragraph) {
	if p.Text == "" {
		pdf.Ln(14.4)
		return
	}

	pdf.SetTextColor(0, 0, 0)
	if h, ok := headings[p.Level]; ok {
		align := p.Align
		if p.Level == 1 && !p.Aligned {
			align = AlignCenter
		}
		pdf.SetFont("Helvetica", "B", h.size)
		pdf.MultiCell(0, h.leading, tr(p.Text), "", string(align), false)
		pdf.Ln(h.after)
		return
	}

	pdf.SetFont("Helvetica", "", bodySize)
	pdf.MultiCell(0, bodyLeader, tr(p.Text), "", string(p.Align), false)
	pdf.Ln(7.2)
}

// renderTable draws a bordered grid with a grey header row and beige body
// rows. Columns share the usable width evenly.
func renderTable(pdf *fpdf.Fpdf, tr func(string) string, t Table) {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}

	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(cols)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1)

	for i, row := range t.Rows {
		header := i == 0
		size, leading := bodySize, bodyLeader
		if header {
			size, leading = 12, 14
			pdf.SetFont("Helvetica", "B", size)
		} else {
			pdf.SetFont("Helvetica", "", size)
		}

		lines := make([][]string, cols)
		height := 0.0
		for c := 0; c < cols; c++ {
			text := ""
			if c < len(row) {
				text = tr(row[c])
			}
			for _, part := range strings.Split(text, "\n") {
				lines[c] = append(lines[c], wrap(pdf, part, colW-2*cellPad)...)
			}
			height = max(height, float64(len(lines[c]))*leading)
		}
		bottomPad := cellPad
		if header {
			bottomPad = 12
		}
		height += cellPad + bottomPad

		if pdf.GetY()+height > pageH-marginBottom {
			pdf.AddPage()
		}

		y := pdf.GetY()
		for c := 0; c < cols; c++ {
			x := left + float64(c)*colW
			if header {
				pdf.SetFillColor(128, 128, 128)
				pdf.SetTextColor(245, 245, 245)
			} else {
				pdf.SetFillColor(245, 245, 220)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Rect(x, y, colW, height, "FD")
			for n, line := range lines[c] {
				pdf.SetXY(x+cellPad, y+cellPad+float64(n)*leading)
				pdf.CellFormat(colW-2*cellPad, leading, line, "", 0, "L", false, 0, "")
			}
		}
		pdf.SetXY(left, y+height)
	}
	pdf.SetTextColor(0, 0, 0)
}

// wrap breaks an already translated string into lines no wider than width,
// splitting on spaces and breaking words that do not fit on their own.
func wrap(pdf *fpdf.Fpdf, s string, width float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if pdf.GetStringWidth(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for pdf.GetStringWidth(word) > width && len(word) > 1 {
			n := len(word) - 1
			for n > 1 && pdf.GetStringWidth(word[:n]) > width {
				n--
			}
			lines = append(lines, word[:n])
			word = word[n:]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
