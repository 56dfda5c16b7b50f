package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"go-filetools/internal/capability"
	"go-filetools/internal/store"
	"go-filetools/internal/tools"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  chi.Router
	outputs *store.Store
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()

	uploads, err := store.New(filepath.Join(t.TempDir(), "uploads"), logger)
	require.NoError(t, err)
	outputs, err := store.New(filepath.Join(t.TempDir(), "output"), logger)
	require.NoError(t, err)
	caps := capability.NewRegistry(logger).WithLookPath(func(string) (string, error) {
		return "", errors.New("not found")
	})
	caps.Probe(capability.DefaultSpecs("", "", ""))

	h, err := New(tools.NewService(uploads, outputs, caps, 0, logger), maxUpload, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Get("/healthz", h.Healthz)
	r.Get("/download/{filename}", h.Download)
	r.Get("/download-bg-removed/{filename}", h.DownloadBackgroundRemoved)
	for _, tool := range Tools {
		handler := map[string]http.HandlerFunc{
			"compress":          h.CompressImage,
			"convert_image":     h.ConvertImage,
			"remove_background": h.RemoveBackground,
			"compress_pdf":      h.CompressPDF,
			"edit_pdf":          h.EditPDF,
			"sign_pdf":          h.SignPDF,
			"qr":                h.QR,
			"convert_pdf_doc":   h.PDFToDoc,
			"convert_doc_pdf":   h.DocToPDF,
		}[tool.Page]
		require.NotNil(t, handler, tool.Page)
		r.Get(tool.Path, handler)
		r.Post(tool.Path, handler)
	}
	return &testServer{router: r, outputs: outputs}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

type filePart struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownloadName(t *testing.T) {
	const uuid = "123e4567-e89b-12d3-a456-426614174000"
	tests := []struct {
		name      string
		stored    string
		requested string
		expected  string
	}{
		{"prefix stripped", uuid + "-merged.pdf", "", "merged.pdf"},
		{"requested name kept", uuid + "-merged.pdf", "report.pdf", "report.pdf"},
		{"extension appended", uuid + "-merged.pdf", "report", "report.pdf"},
		{"wrong extension", uuid + "-qr_code.png", "code.jpg", "code.jpg.png"},
		{"path stripped", uuid + "-merged.pdf", "../../etc/passwd", "passwd.pdf"},
		{"blank requested", uuid + "-merged.pdf", "   ", "merged.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DownloadName(tt.stored, tt.requested))
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/bmp", contentTypeFor("scan.bmp"))
	assert.Equal(t, "image/tiff", contentTypeFor("scan.TIF"))
	assert.Equal(t, "image/jpeg", contentTypeFor("photo.jpg"))
	assert.Equal(t, "application/pdf", contentTypeFor("doc.pdf"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("noext"))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 MB", HumanSize(1536*1024))
	assert.Equal(t, "20.0 MB", HumanSize(20<<20))
}

func TestPagesRender(t *testing.T) {
	s := newTestServer(t, 20<<20)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	for _, tool := range Tools {
		assert.Contains(t, rr.Body.String(), tool.Path)
	}
	assert.Contains(t, rr.Body.String(), "Unavailable")

	for _, tool := range Tools {
		t.Run(tool.Page, func(t *testing.T) {
			rr := s.do(httptest.NewRequest(http.MethodGet, tool.Path, nil))
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "<h1>"+tool.Title+"</h1>")
			assert.Contains(t, rr.Body.String(), "<form")
		})
	}
}

func TestCompressImagePost(t *testing.T) {
	s := newTestServer(t, 20<<20)
	req := multipartRequest(t, "/compress", map[string]string{"quality": "40"},
		filePart{"image", "photo.png", testPNG(t)})

	rr := s.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "compressed_photo.png")
	assert.Contains(t, body, "/download/")
	assert.Contains(t, body, `value="40"`)
	assert.NotContains(t, body, `class="error"`)
	assert.Equal(t, 1, s.outputs.Len())
}

func TestMissingFileRerendersForm(t *testing.T) {
	s := newTestServer(t, 20<<20)
	rr := s.do(multipartRequest(t, "/compress", map[string]string{"quality": "40"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please choose a file to upload")
	assert.Contains(t, rr.Body.String(), "<form")
}

func TestInvalidQualityIsValidationError(t *testing.T) {
	s := newTestServer(t, 20<<20)
	rr := s.do(multipartRequest(t, "/compress", map[string]string{"quality": "500"},
		filePart{"image", "photo.png", testPNG(t)}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Quality must be a whole number between 1 and 100")
	assert.Equal(t, 0, s.outputs.Len())
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, 1024)
	rr := s.do(multipartRequest(t, "/compress", nil,
		filePart{"image", "big.png", bytes.Repeat([]byte{0x89}, 8192)}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="error"`)
	assert.Equal(t, 0, s.outputs.Len())
}

func TestUnavailableCapabilityMessage(t *testing.T) {
	s := newTestServer(t, 20<<20)
	rr := s.do(multipartRequest(t, "/remove-background", nil,
		filePart{"image", "photo.png", testPNG(t)}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "rembg")
	assert.Equal(t, 0, s.outputs.Len())
}

func TestEditPDFUnknownAction(t *testing.T) {
	s := newTestServer(t, 20<<20)
	rr := s.do(multipartRequest(t, "/edit-pdf", map[string]string{"action": "shred"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please choose merge, split, rotate or extract")
}

func TestSignPDFRejectsRatio(t *testing.T) {
	s := newTestServer(t, 20<<20)
	rr := s.do(multipartRequest(t, "/sign-pdf", map[string]string{"x_ratio": "1.5"}))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Horizontal position must be between 0 and 1")
}

func TestQRFallbackColors(t *testing.T) {
	s := newTestServer(t, 20<<20)
	form := url.Values{
		"data":             {"https://example.com"},
		"fill_color":       {"red"},
		"background_color": {"#00ff00"},
	}
	req := httptest.NewRequest(http.MethodPost, "/qr", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := s.do(req)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Invalid fill color")
	assert.NotContains(t, body, "Invalid background color")
	assert.Contains(t, body, "qr_code.png")
	assert.Contains(t, body, `value="#000000"`)
	assert.Contains(t, body, `value="#00ff00"`)
}

func TestDownload(t *testing.T) {
	s := newTestServer(t, 20<<20)
	file, err := s.outputs.WriteFile([]byte("%PDF-1.4 test"), "merged.pdf")
	require.NoError(t, err)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/download/"+file.Name+"?name=report", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=report.pdf`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 test", rr.Body.String())

	rr = s.do(httptest.NewRequest(http.MethodGet, "/download/"+file.Name, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename=merged.pdf`, rr.Header().Get("Content-Disposition"))
}

func TestDownloadNotFound(t *testing.T) {
	s := newTestServer(t, 20<<20)
	pdfFile, err := s.outputs.WriteFile([]byte("%PDF-1.4"), "merged.pdf")
	require.NoError(t, err)

	rr := s.do(httptest.NewRequest(http.MethodGet, "/download/nope.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(httptest.NewRequest(http.MethodGet, "/download/..%2Fsecret", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(httptest.NewRequest(http.MethodGet, "/download-bg-removed/"+pdfFile.Name, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 20<<20)
	rr := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Capabilities, 3)
	for _, c := range resp.Capabilities {
		assert.False(t, c.Available, c.Name)
	}
}
