package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"spaces", "my report final.pdf", "my_report_final.pdf"},
		{"accents folded", "résumé.docx", "resume.docx"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\me\photo.png`, "photo.png"},
		{"hidden file", ".env", "env"},
		{"only symbols", "???", "file"},
		{"empty", "", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameKeepsExtensionWhenTruncating(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("a", 300) + ".pdf")

	assert.Len(t, got, maxNameLength)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestUniqueNameIsUnique(t *testing.T) {
	a := UniqueName("scan.pdf")
	b := UniqueName("scan.pdf")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-scan.pdf"))
}

func TestReplaceExtAndBaseName(t *testing.T) {
	assert.Equal(t, "photo.webp", ReplaceExt("photo.png", ".webp"))
	assert.Equal(t, "archive.tar.zip", ReplaceExt("archive.tar.gz", ".zip"))
	assert.Equal(t, "noext.pdf", ReplaceExt("noext", ".pdf"))
	assert.Equal(t, "contract", BaseName("uploads/contract.pdf"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "scan.pdf", DisplayName(UniqueName("scan.pdf")))
	assert.Equal(t, "plain-name.pdf", DisplayName("plain-name.pdf"))
	assert.Equal(t, "not-a-uuid-000000000000000000000000-x.pdf", DisplayName("not-a-uuid-000000000000000000000000-x.pdf"))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "dst.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 original"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("a much longer previous output"), 0644))

	require.NoError(t, CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 original", string(data))

	assert.Error(t, CopyFile(filepath.Join(dir, "missing.pdf"), dst))
}
