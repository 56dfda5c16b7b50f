package tools

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/capability"
	"go-filetools/internal/pdf"
	"go-filetools/internal/store"
	"go-filetools/internal/utils"
)

// MaxMergeFiles bounds a single merge request.
const MaxMergeFiles = 20

// CompressPDF shrinks a PDF with Ghostscript when it is installed and with
// pdfcpu's optimizer otherwise. If neither makes the file smaller the
// original bytes are returned.
func (s *Service) CompressPDF(ctx context.Context, u Upload, level pdf.CompressionLevel) (*Result, error) {
	return s.run("compress_pdf", func(res *Result) error {
		in, err := s.save(u, KindPDF)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		display := "compressed_" + utils.SanitizeFilename(u.Name)
		unique, out := s.outputs.Path(display)

		engine := "pdfcpu"
		if gsPath, err := s.caps.Require(capability.Ghostscript); err == nil {
			cctx, cancel := s.withTimeout(ctx)
			err = pdf.CompressWithGhostscript(cctx, gsPath, in.Path, out, level)
			cancel()
			if err == nil {
				engine = "ghostscript"
			} else {
				s.log.WithError(err).Warn("ghostscript compression failed, falling back to pdfcpu")
			}
		}
		if engine == "pdfcpu" {
			if err := pdf.Optimize(in.Path, out); err != nil {
				s.outputs.Remove(unique)
				return err
			}
		}

		if info, err := os.Stat(out); err == nil && info.Size() >= in.Size {
			if err := utils.CopyFile(in.Path, out); err != nil {
				return err
			}
			res.Details["note"] = "The PDF is already well optimized, the original was kept"
		}
		if err := s.output(res, unique, out, display); err != nil {
			return err
		}
		res.Details["engine"] = engine
		res.Details["level"] = string(level)
		res.Details["compression_percentage"] = fmt.Sprintf("%.1f%%", percentSaved(res.OriginalSize, res.Output().Size))
		return nil
	})
}

func percentSaved(original, compressed int64) float64 {
	if original == 0 {
		return 0
	}
	return float64(original-compressed) / float64(original) * 100
}

// MergePDFs concatenates uploads in order.
func (s *Service) MergePDFs(ctx context.Context, uploads []Upload) (*Result, error) {
	return s.run("merge_pdfs", func(res *Result) error {
		if len(uploads) < 2 {
			return apperrors.NewValidationError("Please choose at least two PDF files to merge")
		}
		if len(uploads) > MaxMergeFiles {
			return apperrors.NewValidationError(fmt.Sprintf("At most %d files can be merged at once", MaxMergeFiles))
		}

		files := make([]*store.File, 0, len(uploads))
		defer func() { s.discard(files...) }()
		paths := make([]string, 0, len(uploads))
		for _, u := range uploads {
			f, err := s.save(u, KindPDF)
			if err != nil {
				return err
			}
			files = append(files, f)
			paths = append(paths, f.Path)
			res.OriginalSize += f.Size
		}

		unique, out := s.outputs.Path("merged.pdf")
		if err := pdf.MergePDFs(paths, out); err != nil {
			s.outputs.Remove(unique)
			return err
		}
		if err := pdf.RemoveBookmarks(out); err != nil {
			s.log.WithError(err).Debug("merged PDF has no bookmarks to remove")
		}
		if err := s.output(res, unique, out, "merged.pdf"); err != nil {
			return err
		}
		if count, err := pdf.PageCount(out); err == nil {
			res.Details["pages"] = strconv.Itoa(count)
		}
		res.Details["files"] = strconv.Itoa(len(uploads))
		return nil
	})
}

// SplitPDF writes one document per range. Ranges are normalized against the
// page count, so every output holds at least one page.
func (s *Service) SplitPDF(ctx context.Context, u Upload, ranges []pdf.PageRange) (*Result, error) {
	return s.run("split_pdf", func(res *Result) error {
		if len(ranges) == 0 {
			return apperrors.NewValidationError("Please enter at least one page range, for example 1-3, 5-7")
		}
		in, err := s.save(u, KindPDF)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		count, err := pdf.PageCount(in.Path)
		if err != nil {
			return err
		}
		name := utils.SanitizeFilename(u.Name)
		applied := make([]string, 0, len(ranges))
		for i, r := range ranges {
			start, end, err := r.Normalize(count)
			if err != nil {
				return err
			}
			display := fmt.Sprintf("split_%d_%s", i+1, name)
			unique, out := s.outputs.Path(display)
			if err := pdf.SplitPages(in.Path, start, end, out); err != nil {
				s.outputs.Remove(unique)
				return err
			}
			if err := s.output(res, unique, out, display); err != nil {
				return err
			}
			applied = append(applied, pdf.PageSelection(start, end))
		}
		res.Details["pages"] = strconv.Itoa(count)
		res.Details["ranges"] = strings.Join(applied, ", ")
		return nil
	})
}

// RotatePDF turns the pages in r, or every page when r is nil, clockwise.
func (s *Service) RotatePDF(ctx context.Context, u Upload, rotation int, r *pdf.PageRange) (*Result, error) {
	return s.run("rotate_pdf", func(res *Result) error {
		switch rotation {
		case 90, 180, 270, -90, -180, -270:
		default:
			return apperrors.NewValidationError("Rotation must be 90, 180 or 270 degrees")
		}
		in, err := s.save(u, KindPDF)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		display := "rotated_" + utils.SanitizeFilename(u.Name)
		unique, out := s.outputs.Path(display)
		if err := pdf.RotatePages(in.Path, rotation, r, out); err != nil {
			s.outputs.Remove(unique)
			return err
		}
		if err := s.output(res, unique, out, display); err != nil {
			return err
		}
		res.Details["rotation"] = strconv.Itoa(rotation)
		if r != nil {
			res.Details["range"] = r.String()
		} else {
			res.Details["range"] = "all pages"
		}
		return nil
	})
}

// ExtractPages copies the listed pages, in order, into a new document.
func (s *Service) ExtractPages(ctx context.Context, u Upload, pages []int) (*Result, error) {
	return s.run("extract_pages", func(res *Result) error {
		if len(pages) == 0 {
			return apperrors.NewValidationError("Please enter the pages to extract, for example 1, 3, 5")
		}
		in, err := s.save(u, KindPDF)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		display := "extracted_" + utils.SanitizeFilename(u.Name)
		unique, out := s.outputs.Path(display)
		if err := pdf.ExtractPages(in.Path, pages, out); err != nil {
			s.outputs.Remove(unique)
			return err
		}
		if err := s.output(res, unique, out, display); err != nil {
			return err
		}
		list := make([]string, len(pages))
		for i, p := range pages {
			list[i] = strconv.Itoa(p)
		}
		res.Details["pages"] = strings.Join(list, ", ")
		return nil
	})
}
