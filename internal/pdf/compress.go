package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CompressionLevel selects how aggressively a PDF is rewritten.
type CompressionLevel string

const (
	CompressionLow    CompressionLevel = "low"
	CompressionMedium CompressionLevel = "medium"
	CompressionHigh   CompressionLevel = "high"
)

// ParseCompressionLevel accepts low, medium or high.
func ParseCompressionLevel(s string) (CompressionLevel, error) {
	switch CompressionLevel(s) {
	case CompressionLow, CompressionMedium, CompressionHigh:
		return CompressionLevel(s), nil
	case "":
		return CompressionMedium, nil
	}
	return "", fmt.Errorf("invalid compression level %q", s)
}

// ghostscriptSettings maps a level to the -dPDFSETTINGS preset and image
// resolution.
func ghostscriptSettings(level CompressionLevel) (string, int) {
	switch level {
	case CompressionHigh:
		return "/screen", 72
	case CompressionLow:
		return "/printer", 300
	default:
		return "/ebook", 150
	}
}

// CompressWithGhostscript rewrites pdfPath through Ghostscript's pdfwrite
// device.
func CompressWithGhostscript(ctx context.Context, gsPath, pdfPath, outputPath string, level CompressionLevel) error {
	pdfSettings, dpi := ghostscriptSettings(level)

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=" + pdfSettings,
		"-dCompatibilityLevel=1.4",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-dSAFER",
		"-dAutoRotatePages=/None",
		"-dColorImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dColorImageResolution=%d", dpi),
		"-dGrayImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dGrayImageResolution=%d", dpi),
		"-dMonoImageDownsampleType=/Bicubic",
		fmt.Sprintf("-dMonoImageResolution=%d", dpi),
		"-dSubsetFonts=true",
		"-dDownsampleColorImages=true",
		"-dDownsampleGrayImages=true",
		"-dDownsampleMonoImages=true",
	}
	if level == CompressionHigh {
		args = append(args, "-dCompressFonts=true", "-dCompressStreams=true")
	}
	args = append(args, "-sOutputFile="+outputPath, pdfPath)

	cmd := exec.CommandContext(ctx, gsPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ghostscript failed: %v, output: %s", err, string(output))
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return fmt.Errorf("ghostscript did not create output file")
	}
	return nil
}
