// Package tools implements the file operations behind each form.
//
// Every operation follows the same shape: store the upload under a unique
// name, call one library or external program, write the result into the
// output store and return a Result describing it. Failures come back as
// apperrors values so the HTTP layer can render them in the page.
package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/capability"
	"go-filetools/internal/logging"
	"go-filetools/internal/pdf"
	"go-filetools/internal/store"
	"go-filetools/internal/utils"

	"github.com/sirupsen/logrus"
)

// Upload is one file received from a client.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Output is a produced file. Filename identifies it for download; Name is the
// friendly name offered to the browser.
type Output struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
}

// Result describes a finished operation.
type Result struct {
	Operation    string            `json:"operation"`
	Outputs      []Output          `json:"outputs"`
	OriginalSize int64             `json:"original_size"`
	OutputSize   int64             `json:"output_size"`
	Details      map[string]string `json:"details,omitempty"`
	Duration     time.Duration     `json:"duration"`
}

// Output returns the first output, which is the only one for most tools.
func (r *Result) Output() Output {
	if len(r.Outputs) == 0 {
		return Output{}
	}
	return r.Outputs[0]
}

// SavedPercent is the size reduction relative to the original, negative when
// the output grew.
func (r *Result) SavedPercent() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.OriginalSize-r.OutputSize) / float64(r.OriginalSize) * 100
}

type Service struct {
	uploads *store.Store
	outputs *store.Store
	caps    *capability.Registry
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewService(uploads, outputs *store.Store, caps *capability.Registry, timeout time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		uploads: uploads,
		outputs: outputs,
		caps:    caps,
		timeout: timeout,
		log:     log,
	}
}

// Outputs exposes the output store for downloads.
func (s *Service) Outputs() *store.Store {
	return s.outputs
}

// Capabilities exposes the probed capability registry.
func (s *Service) Capabilities() *capability.Registry {
	return s.caps
}

var failureMessages = map[string]string{
	"compress_image":    "the image could not be compressed",
	"convert_image":     "the image could not be converted",
	"compress_pdf":      "the PDF could not be compressed",
	"merge_pdfs":        "the PDFs could not be merged",
	"split_pdf":         "the PDF could not be split",
	"rotate_pdf":        "the PDF could not be rotated",
	"extract_pages":     "the pages could not be extracted",
	"sign_pdf":          "the signature could not be applied",
	"remove_background": "the background could not be removed",
	"generate_qr":       "the QR code could not be generated",
	"pdf_to_doc":        "the PDF could not be converted to a document",
	"doc_to_pdf":        "the document could not be converted to PDF",
}

// run times fn, fills the bookkeeping fields of its Result and maps plain
// errors onto the error taxonomy.
func (s *Service) run(op string, fn func(res *Result) error) (*Result, error) {
	start := time.Now()
	return logging.Measure(s.log, op, func() (*Result, error) {
		res := &Result{Operation: op, Details: map[string]string{}}
		if err := fn(res); err != nil {
			return nil, s.classify(op, err)
		}
		for _, o := range res.Outputs {
			res.OutputSize += o.Size
		}
		res.Duration = time.Since(start)
		return res, nil
	})
}

func (s *Service) classify(op string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	var pageErr *pdf.PageOutOfRangeError
	switch {
	case errors.Is(err, pdf.ErrEmptyDocument):
		return apperrors.NewValidationError("The PDF has no pages")
	case errors.As(err, &pageErr):
		return apperrors.NewValidationError(fmt.Sprintf("Page %d is out of range, the document has %d pages", pageErr.Page, pageErr.PageCount))
	case errors.Is(err, context.DeadlineExceeded):
		s.log.WithError(err).WithField("operation", op).Error("operation timed out")
		return apperrors.NewProcessingError(failureMessages[op]+" in time", err)
	}
	s.log.WithError(err).WithField("operation", op).Error("operation failed")
	return apperrors.NewProcessingError(failureMessages[op], err)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Kind is the class of file an upload must be.
type Kind int

const (
	KindPDF Kind = iota
	KindImage
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindImage:
		return "image"
	default:
		return "document"
	}
}

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
}

// Sniff reports whether header looks like a file of kind k.
func Sniff(k Kind, header []byte) bool {
	switch k {
	case KindPDF:
		return strings.HasPrefix(string(header), "%PDF-")
	case KindImage:
		if imageTypes[http.DetectContentType(header)] {
			return true
		}
		h := string(header)
		return strings.HasPrefix(h, "II*\x00") || strings.HasPrefix(h, "MM\x00*")
	case KindDocument:
		h := string(header)
		return strings.HasPrefix(h, "PK\x03\x04") || strings.HasPrefix(h, "\xD0\xCF\x11\xE0")
	}
	return false
}

// save checks the magic bytes of u and stores it in the upload directory.
func (s *Service) save(u Upload, kind Kind) (*store.File, error) {
	if u.Reader == nil || strings.TrimSpace(u.Name) == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Please choose a %s file", kind))
	}
	br := bufio.NewReaderSize(u.Reader, 512)
	header, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(header) == 0 {
		return nil, apperrors.NewValidationError("The uploaded file is empty")
	}
	if !Sniff(kind, header) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not a valid %s file", utils.SanitizeFilename(u.Name), kind))
	}
	return s.uploads.Save(br, u.Name)
}

// output registers a file a library wrote at path under display name.
func (s *Service) output(res *Result, unique, path, display string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output was not written: %w", err)
	}
	res.Outputs = append(res.Outputs, Output{Filename: unique, Name: display, Size: info.Size()})
	return nil
}

func (s *Service) outputFile(res *Result, f *store.File, display string) {
	res.Outputs = append(res.Outputs, Output{Filename: f.Name, Name: display, Size: f.Size})
}

func (s *Service) discard(files ...*store.File) {
	for _, f := range files {
		if f != nil {
			s.uploads.Remove(f.Name)
		}
	}
}
