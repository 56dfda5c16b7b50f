package tools

import (
	"context"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/background"
	"go-filetools/internal/capability"
	"go-filetools/internal/document"
	"go-filetools/internal/imaging"
	"go-filetools/internal/qr"
	"go-filetools/internal/utils"
)

// RemoveBackground cuts the subject out of an image. With bg set the
// transparent area is filled with that color. The output is always PNG.
func (s *Service) RemoveBackground(ctx context.Context, u Upload, bg *color.NRGBA) (*Result, error) {
	return s.run("remove_background", func(res *Result) error {
		rembg, err := s.caps.Require(capability.BgRemoval)
		if err != nil {
			return err
		}
		in, err := s.save(u, KindImage)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		matte, mattePath := s.uploads.Path("matte.png")
		defer s.uploads.Remove(matte)

		cctx, cancel := s.withTimeout(ctx)
		defer cancel()
		if err := background.Remove(cctx, rembg, in.Path, mattePath); err != nil {
			return err
		}

		data, err := background.Fill(mattePath, bg)
		if err != nil {
			return err
		}
		display := background.OutputName(u.Name)
		out, err := s.outputs.WriteFile(data, display)
		if err != nil {
			return err
		}
		s.outputFile(res, out, display)
		if bg != nil {
			res.Details["background"] = imaging.Hex(*bg)
		} else {
			res.Details["background"] = "transparent"
		}
		return nil
	})
}

// GenerateQR encodes data and writes the symbol as a PNG.
func (s *Service) GenerateQR(ctx context.Context, data string, opts qr.Options) (*Result, error) {
	return s.run("generate_qr", func(res *Result) error {
		data = strings.TrimSpace(data)
		if data == "" {
			return apperrors.NewValidationError("Please enter the text or URL to encode")
		}
		if len(data) > qr.MaxDataLength {
			return apperrors.NewValidationError("The text is too long to fit in a QR code")
		}
		if opts.ModuleSize < 1 || opts.ModuleSize > qr.MaxModuleSize {
			return apperrors.NewValidationError("Module size must be between 1 and " + strconv.Itoa(qr.MaxModuleSize))
		}
		if opts.Border < 0 || opts.Border > qr.MaxBorder {
			return apperrors.NewValidationError("Border must be between 0 and " + strconv.Itoa(qr.MaxBorder))
		}

		img, err := qr.Generate(data, opts)
		if err != nil {
			return err
		}
		png, err := imaging.EncodeBytes(img, imaging.PNG, 100)
		if err != nil {
			return err
		}
		out, err := s.outputs.WriteFile(png, "qr_code.png")
		if err != nil {
			return err
		}
		modules, err := qr.Modules(data, opts.Level)
		if err != nil {
			return err
		}
		s.outputFile(res, out, "qr_code.png")
		res.Details["modules"] = strconv.Itoa(modules)
		res.Details["dimensions"] = strconv.Itoa(img.Bounds().Dx()) + "x" + strconv.Itoa(img.Bounds().Dy())
		return nil
	})
}

// PDFToDoc converts a PDF into an editable DOCX with LibreOffice.
func (s *Service) PDFToDoc(ctx context.Context, u Upload) (*Result, error) {
	return s.run("pdf_to_doc", func(res *Result) error {
		soffice, err := s.caps.Require(capability.Office)
		if err != nil {
			return err
		}
		in, err := s.save(u, KindPDF)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		display := "converted_" + utils.BaseName(utils.SanitizeFilename(u.Name)) + ".docx"
		unique, out := s.outputs.Path(display)
		cctx, cancel := s.withTimeout(ctx)
		defer cancel()
		if err := document.ConvertWithOffice(cctx, soffice, in.Path, out, document.TargetDOCX); err != nil {
			s.outputs.Remove(unique)
			return err
		}
		if err := s.output(res, unique, out, display); err != nil {
			return err
		}
		res.Details["engine"] = "libreoffice"
		return nil
	})
}

// DocToPDF converts a word-processing document to PDF. LibreOffice is
// preferred; without it DOCX files are rendered natively and legacy .doc
// files are refused.
func (s *Service) DocToPDF(ctx context.Context, u Upload) (*Result, error) {
	return s.run("doc_to_pdf", func(res *Result) error {
		in, err := s.save(u, KindDocument)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		display := "converted_" + utils.BaseName(utils.SanitizeFilename(u.Name)) + ".pdf"
		unique, out := s.outputs.Path(display)
		isDOCX := strings.EqualFold(filepath.Ext(u.Name), ".docx")

		engine := ""
		if soffice, err := s.caps.Require(capability.Office); err == nil {
			cctx, cancel := s.withTimeout(ctx)
			err = document.ConvertWithOffice(cctx, soffice, in.Path, out, document.TargetPDF)
			cancel()
			if err == nil {
				engine = "libreoffice"
			} else if !isDOCX {
				s.outputs.Remove(unique)
				return err
			} else {
				s.log.WithError(err).Warn("office conversion failed, rendering DOCX natively")
			}
		} else if !isDOCX {
			return err
		}

		if engine == "" {
			doc, err := document.DOCXToPDF(in.Path, out)
			if err != nil {
				s.outputs.Remove(unique)
				return apperrors.NewValidationError("The document could not be read as DOCX", err.Error())
			}
			engine = "native"
			res.Details["paragraphs"] = strconv.Itoa(len(doc.Paragraphs()))
			res.Details["tables"] = strconv.Itoa(len(doc.Tables()))
		}
		if err := s.output(res, unique, out, display); err != nil {
			return err
		}
		res.Details["engine"] = engine
		return nil
	})
}
