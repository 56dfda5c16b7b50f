// Package document converts between PDF and word-processing documents.
//
// LibreOffice does the conversion when it is installed. Without it DOCX files
// can still be rendered to PDF natively: paragraphs, headings, alignment and
// tables are read from the Office Open XML parts and laid out with fpdf.
package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Align is a paragraph alignment.
type Align string

const (
	AlignLeft    Align = "L"
	AlignCenter  Align = "C"
	AlignRight   Align = "R"
	AlignJustify Align = "J"
)

// Paragraph is one block of text. Level is 1-3 for headings, 0 otherwise.
type Paragraph struct {
	Text  string
	Level int
	Align Align
	// Aligned is true when the paragraph sets its own justification.
	Aligned bool
}

// Table is a grid of cell texts; the first row is the header.
type Table struct {
	Rows [][]string
}

// Block is either a paragraph or a table, in document order.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// Document is the parsed body of a DOCX file.
type Document struct {
	Blocks []Block
}

// Paragraphs returns the paragraph blocks.
func (d *Document) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, b := range d.Blocks {
		if b.Paragraph != nil {
			out = append(out, *b.Paragraph)
		}
	}
	return out
}

// Tables returns the table blocks.
func (d *Document) Tables() []Table {
	var out []Table
	for _, b := range d.Blocks {
		if b.Table != nil {
			out = append(out, *b.Table)
		}
	}
	return out
}

type paragraphXML struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
		Justification struct {
			Val string `xml:"val,attr"`
		} `xml:"jc"`
		OutlineLvl *struct {
			Val string `xml:"val,attr"`
		} `xml:"outlineLvl"`
	} `xml:"pPr"`
	Content []inlineXML `xml:",any"`
}

// inlineXML is a direct child of a paragraph: a run, or a container such as
// a hyperlink or tracked insertion that holds runs of its own.
type inlineXML struct {
	XMLName xml.Name
	Parts   []runPart `xml:",any"`
	Runs    []runXML  `xml:"r"`
}

type runXML struct {
	Parts []runPart `xml:",any"`
}

type runPart struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

type tableXML struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []paragraphXML `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

type stylesXML struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

// ErrPartTooLarge is returned when a DOCX part inflates beyond maxPartSize.
var ErrPartTooLarge = errors.New("document part exceeds the size limit")

// maxPartSize bounds the decompressed size of document.xml and styles.xml.
var maxPartSize int64 = 64 << 20

var headingStyle = regexp.MustCompile(`(?i)^heading\s*([1-9])$`)

// ReadDOCX parses the body of a DOCX archive.
func ReadDOCX(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("not a DOCX archive: %w", err)
	}

	body := findFile(zr, "word/document.xml")
	if body == nil {
		return nil, fmt.Errorf("missing required file: word/document.xml")
	}

	styles := map[string]string{}
	if f := findFile(zr, "word/styles.xml"); f != nil {
		var sx stylesXML
		if err := decodeFile(f, &sx); err == nil {
			for _, s := range sx.Styles {
				styles[s.ID] = s.Name.Val
			}
		}
	}

	rc, err := openPart(body)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseBody(xml.NewDecoder(rc), styles)
}

// parseBody walks the direct children of <w:body> so paragraphs and tables
// keep their order.
func parseBody(dec *xml.Decoder, styles map[string]string) (*Document, error) {
	doc := &Document{}
	inBody := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unmarshaling document.xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case el.Name.Local == "body":
				inBody = true
			case inBody && el.Name.Local == "p":
				var px paragraphXML
				if err := dec.DecodeElement(&px, &el); err != nil {
					return nil, err
				}
				p := buildParagraph(px, styles)
				doc.Blocks = append(doc.Blocks, Block{Paragraph: &p})
			case inBody && el.Name.Local == "tbl":
				var tx tableXML
				if err := dec.DecodeElement(&tx, &el); err != nil {
					return nil, err
				}
				if t := buildTable(tx); len(t.Rows) > 0 {
					doc.Blocks = append(doc.Blocks, Block{Table: &t})
				}
			case inBody:
				// sectPr and friends
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if el.Name.Local == "body" {
				inBody = false
			}
		}
	}
	return doc, nil
}

func buildParagraph(px paragraphXML, styles map[string]string) Paragraph {
	p := Paragraph{Text: strings.TrimSpace(paragraphText(px)), Align: AlignLeft}

	switch px.Props.Justification.Val {
	case "center":
		p.Align, p.Aligned = AlignCenter, true
	case "right", "end":
		p.Align, p.Aligned = AlignRight, true
	case "both", "distribute":
		p.Align, p.Aligned = AlignJustify, true
	case "left", "start":
		p.Aligned = true
	}

	p.Level = headingLevel(px.Props.Style.Val, styles)
	if p.Level == 0 && px.Props.OutlineLvl != nil {
		if n, err := strconv.Atoi(px.Props.OutlineLvl.Val); err == nil && n >= 0 && n < 3 {
			p.Level = n + 1
		}
	}
	return p
}

// headingLevel resolves "Heading 1".."Heading 3" by style name, falling back
// to the style id. Title counts as a first-level heading; deeper headings
// render as body text.
func headingLevel(styleID string, styles map[string]string) int {
	if styleID == "" {
		return 0
	}
	for _, name := range []string{styles[styleID], styleID} {
		if strings.EqualFold(name, "title") {
			return 1
		}
		if m := headingStyle.FindStringSubmatch(name); m != nil {
			if n, _ := strconv.Atoi(m[1]); n <= 3 {
				return n
			}
			return 0
		}
	}
	return 0
}

// paragraphText joins the paragraph's runs in document order, including runs
// nested in hyperlinks, insertions, smart tags and simple fields.
func paragraphText(px paragraphXML) string {
	var sb strings.Builder
	for _, c := range px.Content {
		switch c.XMLName.Local {
		case "r":
			writeRun(&sb, c.Parts)
		case "hyperlink", "ins", "smartTag", "fldSimple":
			for _, r := range c.Runs {
				writeRun(&sb, r.Parts)
			}
		}
	}
	return sb.String()
}

func writeRun(sb *strings.Builder, parts []runPart) {
	for _, part := range parts {
		switch part.XMLName.Local {
		case "t":
			sb.WriteString(part.Text)
		case "tab":
			sb.WriteString("    ")
		case "br", "cr":
			sb.WriteString("\n")
		}
	}
}

func buildTable(tx tableXML) Table {
	var t Table
	for _, row := range tx.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			parts := make([]string, 0, len(c.Paragraphs))
			for _, px := range c.Paragraphs {
				if s := strings.TrimSpace(paragraphText(px)); s != "" {
					parts = append(parts, s)
				}
			}
			cells = append(cells, strings.Join(parts, "\n"))
		}
		if len(cells) > 0 {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// openPart opens an archive member, refusing members that inflate past
// maxPartSize whatever their header claims.
func openPart(f *zip.File) (io.ReadCloser, error) {
	if f.UncompressedSize64 > uint64(maxPartSize) {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrPartTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &boundedReader{ReadCloser: rc, name: f.Name, left: maxPartSize + 1}, nil
}

type boundedReader struct {
	io.ReadCloser
	name string
	left int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if int64(len(p)) > b.left {
		p = p[:b.left]
	}
	n, err := b.ReadCloser.Read(p)
	b.left -= int64(n)
	if b.left <= 0 {
		return n, fmt.Errorf("%s: %w", b.name, ErrPartTooLarge)
	}
	return n, err
}

func decodeFile(f *zip.File, v any) error {
	rc, err := openPart(f)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}
