// Package background removes image backgrounds through the rembg command line
// tool and optionally fills the freed area with a solid color.
package background

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"strings"

	"go-filetools/internal/imaging"
	"go-filetools/internal/utils"
)

// OutputName returns the download name for a processed upload. The result is
// always a PNG.
func OutputName(original string) string {
	return "bg_removed_" + utils.BaseName(utils.SanitizeFilename(original)) + ".png"
}

// Remove runs `rembg i input output`. The output is a PNG with an alpha matte.
func Remove(ctx context.Context, rembgPath, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, rembgPath, "i", inputPath, outputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("rembg timed out: %w", ctx.Err())
		}
		return fmt.Errorf("rembg failed: %v, output: %s", err, strings.TrimSpace(stderr.String()))
	}
	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("rembg did not create output file")
	}
	return nil
}

// Fill reads the matted PNG at path and composites it over bg. When bg is
// nil the image is re-encoded unchanged so the output stays transparent.
func Fill(path string, bg *color.NRGBA) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := imaging.Decode(f)
	if err != nil {
		return nil, err
	}
	var out image.Image = img
	if bg != nil {
		out = imaging.Composite(img, *bg)
	}
	return imaging.EncodeBytes(out, imaging.PNG, 100)
}
