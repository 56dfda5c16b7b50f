// Package utils provides utility functions for filename sanitization and UUID generation.
//
// Functions:
//   - SanitizeFilename: Returns a safe ASCII filename for storage.
//   - GenerateUUID: Returns a new UUID string.
//   - UniqueName: Prefixes a sanitized name with a UUID so concurrent uploads never collide.
//   - ReplaceExt: Swaps the extension of a filename.
//   - DisplayName: Recovers the friendly name from a stored name.
//   - CopyFile: Copies a file, replacing the destination.
//
// Used throughout the backend for safe file handling and unique IDs.
package utils

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	repeats     = regexp.MustCompile(`_+`)
)

const maxNameLength = 100

// SanitizeFilename folds accents to ASCII, replaces anything outside
// [a-zA-Z0-9._-] and trims leading dots so the result is never hidden or a
// path component. An empty result becomes "file".
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, base); err == nil {
		base = folded
	}

	safe := unsafeChars.ReplaceAllString(base, "_")
	safe = repeats.ReplaceAllString(safe, "_")
	safe = strings.TrimLeft(safe, "._")
	if len(safe) > maxNameLength {
		ext := filepath.Ext(safe)
		if len(ext) > 10 {
			ext = ""
		}
		safe = safe[:maxNameLength-len(ext)] + ext
	}
	if safe == "" || safe == "." || safe == ".." {
		return "file"
	}
	return safe
}

func GenerateUUID() string {
	return uuid.New().String()
}

// UniqueName returns "<uuid>-<sanitized name>".
func UniqueName(name string) string {
	return GenerateUUID() + "-" + SanitizeFilename(name)
}

// ReplaceExt returns name with its extension replaced by ext (which includes
// the dot).
func ReplaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// BaseName returns the filename without directory or extension.
func BaseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DisplayName strips the UUID prefix added by UniqueName.
func DisplayName(stored string) string {
	const prefix = 36
	if len(stored) > prefix+1 && stored[prefix] == '-' {
		if _, err := uuid.Parse(stored[:prefix]); err == nil {
			return stored[prefix+1:]
		}
	}
	return stored
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
