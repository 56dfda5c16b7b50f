// Package handlers provides the HTML form handlers and file downloads.
//
// Every tool has one handler serving both methods: GET renders the empty
// form, POST runs the tool and renders the same page with either the result
// or an error message.
//
// Example usage:
//
//	h, err := handlers.New(service, maxUploadSize, logger)
//	r := chi.NewRouter()
//	r.Get("/compress", h.CompressImage)
//	r.Post("/compress", h.CompressImage)
//
// All handlers are designed to be used with the chi router.
package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/capability"
	"go-filetools/internal/imaging"
	"go-filetools/internal/tools"
	"go-filetools/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Tool describes one entry on the homepage and in the navigation.
type Tool struct {
	Path        string
	Page        string
	Title       string
	Description string
	Requires    string
}

// Tools lists the tool pages in display order.
var Tools = []Tool{
	{Path: "/compress", Page: "compress", Title: "Compress image", Description: "Shrink PNG, JPEG, GIF, BMP, TIFF or WebP images by re-encoding them at a lower quality."},
	{Path: "/convert-image", Page: "convert_image", Title: "Convert image", Description: "Convert an image to PNG, JPEG, GIF, BMP or TIFF."},
	{Path: "/remove-background", Page: "remove_background", Title: "Remove background", Description: "Cut out the subject of a photo and optionally fill the background with a color.", Requires: capability.BgRemoval},
	{Path: "/compress-pdf", Page: "compress_pdf", Title: "Compress PDF", Description: "Reduce the size of a PDF at low, medium or high compression."},
	{Path: "/edit-pdf", Page: "edit_pdf", Title: "Edit PDF", Description: "Merge PDFs, split by page ranges, rotate pages or extract pages."},
	{Path: "/sign-pdf", Page: "sign_pdf", Title: "Sign PDF", Description: "Place a signature image on a page of a PDF."},
	{Path: "/qr", Page: "qr", Title: "QR code", Description: "Generate a QR code for any text or URL."},
	{Path: "/convert-pdf-doc", Page: "convert_pdf_doc", Title: "PDF to Word", Description: "Convert a PDF into an editable DOCX document.", Requires: capability.Office},
	{Path: "/convert-doc-pdf", Page: "convert_doc_pdf", Title: "Word to PDF", Description: "Convert a DOCX (or DOC, with LibreOffice) document into a PDF."},
}

// PageData is passed to every template.
type PageData struct {
	Title        string
	Page         string
	Tools        []Tool
	Capabilities map[string]capability.Capability
	Form         map[string]string
	Result       *tools.Result
	Error        string
	ErrorType    apperrors.ErrorType
	Notes        []string
	Download     string
	MaxUpload    int64
	Extra        any
}

type Handler struct {
	svc           *tools.Service
	maxUploadSize int64
	pages         map[string]*template.Template
	log           logrus.FieldLogger
}

func New(svc *tools.Service, maxUploadSize int64, log logrus.FieldLogger) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, maxUploadSize: maxUploadSize, pages: pages, log: log}, nil
}

var templateFuncs = template.FuncMap{
	"humanSize": HumanSize,
	"seconds": func(d time.Duration) string {
		return fmt.Sprintf("%.2f s", d.Seconds())
	},
	"percent": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f)
	},
	"lower": strings.ToLower,
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	names := []string{"index"}
	for _, t := range Tools {
		names = append(names, t.Page)
	}
	for _, name := range names {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/result.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// HumanSize formats a byte count with binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (h *Handler) newPage(page string) *PageData {
	data := &PageData{
		Page:         page,
		Tools:        Tools,
		Capabilities: map[string]capability.Capability{},
		Form:         map[string]string{},
		Download:     "/download/",
		MaxUpload:    h.maxUploadSize,
	}
	for _, c := range h.svc.Capabilities().All() {
		data.Capabilities[c.Name] = c
	}
	data.Title = "File tools"
	for _, t := range Tools {
		if t.Page == page {
			data.Title = t.Title
		}
	}
	return data
}

func (h *Handler) render(w http.ResponseWriter, status int, data *PageData) {
	tmpl, ok := h.pages[data.Page]
	if !ok {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		h.log.WithError(err).WithField("page", data.Page).Error("failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail renders data with the message for err. Errors outside the taxonomy are
// treated as processing failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, data *PageData, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewProcessingError("the request could not be handled", err)
	}
	entry := h.log.WithFields(logrus.Fields{
		"page":       data.Page,
		"error_type": appErr.Type,
		"path":       r.URL.Path,
	})
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		entry.Info(appErr.Message)
	case apperrors.ErrorTypeUnavailable:
		entry.WithField("kind", appErr.Kind).Warn(appErr.Message)
	default:
		entry.WithError(appErr).Error("request failed")
	}
	data.Error = appErr.UserMessage()
	data.ErrorType = appErr.Type
	data.Result = nil
	h.render(w, apperrors.GetStatusCode(appErr), data)
}

// Index renders the homepage.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage("index"))
}

// Healthz godoc
// @Summary      Health check
// @Description  Reports liveness and which optional external tools were found at startup
// @Tags         system
// @Produce      json
// @Success      200  {object}  handlers.HealthResponse
// @Router       /healthz [get]
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:       "ok",
		Capabilities: h.svc.Capabilities().All(),
	})
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status       string                  `json:"status"`
	Capabilities []capability.Capability `json:"capabilities"`
}

// Download godoc
// @Summary      Download a result file
// @Description  Streams a produced file as an attachment. The optional name parameter renames the download; the stored extension is always kept.
// @Tags         files
// @Produce      application/octet-stream
// @Param        filename  path   string  true   "Stored filename from the result page"
// @Param        name      query  string  false  "Download name"
// @Success      200  {file}    file    "File download"
// @Failure      404  {string}  string  "File not found"
// @Router       /download/{filename} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveOutput(w, r, "")
}

// DownloadBackgroundRemoved godoc
// @Summary      Download a background-removed image
// @Description  Streams a background removal result as a PNG attachment
// @Tags         files
// @Produce      image/png
// @Param        filename  path   string  true   "Stored filename from the result page"
// @Param        name      query  string  false  "Download name"
// @Success      200  {file}    file    "PNG download"
// @Failure      404  {string}  string  "File not found"
// @Router       /download-bg-removed/{filename} [get]
func (h *Handler) DownloadBackgroundRemoved(w http.ResponseWriter, r *http.Request) {
	h.serveOutput(w, r, ".png")
}

func (h *Handler) serveOutput(w http.ResponseWriter, r *http.Request, requireExt string) {
	filename := chi.URLParam(r, "filename")
	file, err := h.svc.Outputs().Stat(filename)
	if err == nil && requireExt != "" && !strings.EqualFold(filepath.Ext(file.Name), requireExt) {
		err = apperrors.NewNotFoundError("File not found")
	}
	if err != nil {
		if apperrors.GetStatusCode(err) == http.StatusNotFound {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		h.log.WithError(err).WithField("filename", filename).Error("failed to stat download")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	f, err := os.Open(file.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	name := DownloadName(file.Name, r.URL.Query().Get("name"))
	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, file.CreatedAt, f)
}

// contentTypeFor names image types itself since the system MIME table often
// lacks BMP and TIFF.
func contentTypeFor(name string) string {
	ext := filepath.Ext(name)
	if format, err := imaging.ParseFormat(ext); err == nil {
		return format.ContentType()
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DownloadName picks the attachment name: the requested name when given,
// otherwise the stored name without its unique prefix. The stored extension
// always wins.
func DownloadName(stored, requested string) string {
	ext := filepath.Ext(stored)
	name := utils.DisplayName(stored)
	if requested = strings.TrimSpace(requested); requested != "" {
		name = utils.SanitizeFilename(requested)
	}
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name
}
