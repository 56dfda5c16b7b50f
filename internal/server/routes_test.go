package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-filetools/internal/capability"
	"go-filetools/internal/config"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:           0,
		UploadDir:      filepath.Join(dir, "uploads"),
		OutputDir:      filepath.Join(dir, "output"),
		MaxUploadSize:  20 << 20,
		FileTTL:        time.Minute,
		ConvertTimeout: 30 * time.Second,
		RateLimit:      100,
		RateBurst:      100,
		LogLevel:       "debug",
		LogFormat:      "text",
	}
}

func setupTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	caps := capability.NewRegistry(logger).WithLookPath(func(string) (string, error) {
		return "", errors.New("not found")
	})
	caps.Probe(capability.DefaultSpecs("", "", ""))

	s, err := newServer(cfg, logger, caps)
	require.NoError(t, err)
	ts := httptest.NewServer(s.RegisterRoutes())
	t.Cleanup(ts.Close)
	return s, ts
}

func testPDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 20)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.Cell(200, 30, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func findOutput(t *testing.T, dir, suffix string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			return entry.Name()
		}
	}
	t.Fatalf("no file ending in %s in %s", suffix, dir)
	return ""
}

func TestIndex(t *testing.T) {
	_, ts := setupTestServer(t, testConfig(t))

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "/edit-pdf")
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestUnknownRoute(t *testing.T) {
	_, ts := setupTestServer(t, testConfig(t))

	resp, err := http.Get(ts.URL + "/no-such-page")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMergeAndDownload(t *testing.T) {
	cfg := testConfig(t)
	_, ts := setupTestServer(t, cfg)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("action", "merge"))
	for i, pages := range []int{2, 3} {
		part, err := writer.CreateFormFile("pdfs", fmt.Sprintf("part%d.pdf", i+1))
		require.NoError(t, err)
		_, err = part.Write(testPDF(t, pages))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(ts.URL+"/edit-pdf", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "merged.pdf")
	assert.NotContains(t, string(body), `class="error"`)

	stored := findOutput(t, cfg.OutputDir, "-merged.pdf")

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploads are removed after processing")

	resp, err = http.Get(ts.URL + "/download/" + stored + "?name=" + url.QueryEscape("combined"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=combined.pdf", resp.Header.Get("Content-Disposition"))
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRejectsNonPDFUpload(t *testing.T) {
	cfg := testConfig(t)
	_, ts := setupTestServer(t, cfg)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("action", "extract"))
	require.NoError(t, writer.WriteField("pages", "1"))
	part, err := writer.CreateFormFile("pdf", "notpdf.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("this is not a pdf"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(ts.URL+"/edit-pdf", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `class="error"`)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRateLimitOnSubmissions(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	_, ts := setupTestServer(t, cfg)

	form := url.Values{"data": {"hello"}}
	resp, err := http.PostForm(ts.URL+"/qr", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.PostForm(ts.URL+"/qr", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Page views are not limited.
	resp, err = http.Get(ts.URL + "/qr")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwaggerLocalhostOnly(t *testing.T) {
	_, ts := setupTestServer(t, testConfig(t))

	resp, err := http.Get(ts.URL + "/swagger/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/swagger/index.html", nil)
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	_, ts := setupTestServer(t, testConfig(t))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestCleanup(t *testing.T) {
	s, _ := setupTestServer(t, testConfig(t))
	_, err := s.Outputs.WriteFile([]byte("x"), "a.txt")
	require.NoError(t, err)
	_, err = s.Uploads.WriteFile([]byte("y"), "b.txt")
	require.NoError(t, err)

	s.Cleanup()
	assert.Equal(t, 0, s.Outputs.Len())
	assert.Equal(t, 0, s.Uploads.Len())
}

func TestWarnMissingCapabilities(t *testing.T) {
	logger, hook := test.NewNullLogger()
	caps := capability.NewRegistry(logger).WithLookPath(func(file string) (string, error) {
		if file == "soffice" {
			return "/usr/bin/soffice", nil
		}
		return "", errors.New("not found")
	})
	caps.Probe(capability.DefaultSpecs("", "", ""))
	hook.Reset()

	warnMissing(caps, logger)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "rembg")
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxUploadSize = 0
	logger, _ := test.NewNullLogger()
	_, err := newServer(cfg, logger, capability.NewRegistry(logger))
	assert.Error(t, err)
}
