package document

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Target is an output format LibreOffice is asked to produce.
type Target string

const (
	TargetDOCX Target = "docx"
	TargetPDF  Target = "pdf"
)

// ConvertWithOffice runs a headless LibreOffice conversion of inputPath and
// moves the result to outputPath. Each call uses a throwaway profile so
// concurrent conversions do not fight over the user installation lock.
func ConvertWithOffice(ctx context.Context, sofficePath, inputPath, outputPath string, target Target) error {
	profile, err := os.MkdirTemp("", "soffice-profile-")
	if err != nil {
		return fmt.Errorf("failed to create office profile: %w", err)
	}
	defer os.RemoveAll(profile)

	outDir, err := os.MkdirTemp(filepath.Dir(outputPath), ".convert-")
	if err != nil {
		return fmt.Errorf("failed to create conversion dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	profileURL := url.URL{Scheme: "file", Path: filepath.ToSlash(profile)}
	args := []string{
		"--headless",
		"--norestore",
		"--nolockcheck",
		"-env:UserInstallation=" + profileURL.String(),
	}
	convertTo := string(target)
	if target == TargetDOCX {
		// PDFs open in Draw by default; the Writer import filter yields editable text.
		if strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
			args = append(args, "--infilter=writer_pdf_import")
		}
		convertTo = "docx:MS Word 2007 XML"
	}
	args = append(args, "--convert-to", convertTo, "--outdir", outDir, inputPath)

	cmd := exec.CommandContext(ctx, sofficePath, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("office conversion timed out: %w", ctx.Err())
		}
		return fmt.Errorf("office conversion failed: %v, output: %s", err, strings.TrimSpace(output.String()))
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, base+"."+string(target))
	if info, err := os.Stat(produced); err != nil || info.Size() == 0 {
		return fmt.Errorf("office conversion did not create output file, output: %s", strings.TrimSpace(output.String()))
	}
	return os.Rename(produced, outputPath)
}

// DOCXToPDF renders a DOCX file natively and returns the parsed document.
func DOCXToPDF(inputPath, outputPath string) (*Document, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	doc, err := ReadDOCX(f, info.Size())
	if err != nil {
		return nil, err
	}
	if err := RenderPDF(doc, outputPath); err != nil {
		return nil, err
	}
	return doc, nil
}
