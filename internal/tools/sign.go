package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/imaging"
	"go-filetools/internal/pdf"
	"go-filetools/internal/utils"
)

// maxSignaturePixels caps the signature image side before it is stamped.
const maxSignaturePixels = 1000

// MaxSignatureScale bounds the scale factor accepted from a form.
const MaxSignatureScale = 10.0

// SignRequest positions a signature on one page.
type SignRequest struct {
	Page      int
	Placement pdf.PlacementSpec
}

// Validate rejects ratios outside [0,1] and non-positive scales.
func (r SignRequest) Validate() error {
	p := r.Placement
	switch {
	case r.Page < 1:
		return apperrors.NewValidationError("Page must be 1 or greater")
	case math.IsNaN(p.XRatio) || p.XRatio < 0 || p.XRatio > 1:
		return apperrors.NewValidationError("Horizontal position must be between 0 and 1")
	case math.IsNaN(p.YRatio) || p.YRatio < 0 || p.YRatio > 1:
		return apperrors.NewValidationError("Vertical position must be between 0 and 1")
	case math.IsNaN(p.Scale) || p.Scale <= 0 || p.Scale > MaxSignatureScale:
		return apperrors.NewValidationError(fmt.Sprintf("Scale must be greater than 0 and at most %g", MaxSignatureScale))
	}
	return nil
}

// SignPDF rotates the signature image, computes its box with pdf.Place and
// stamps it onto the requested page.
func (s *Service) SignPDF(ctx context.Context, doc, signature Upload, req SignRequest) (*Result, error) {
	return s.run("sign_pdf", func(res *Result) error {
		if err := req.Validate(); err != nil {
			return err
		}
		in, err := s.save(doc, KindPDF)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		sig, err := s.save(signature, KindImage)
		if err != nil {
			return err
		}
		defer s.discard(sig)

		page, err := pdf.PageSize(in.Path, req.Page)
		if err != nil {
			return err
		}

		img, _, err := decodeFile(sig.Path)
		if err != nil {
			return err
		}
		img = imaging.Fit(img, maxSignaturePixels, maxSignaturePixels)
		source := pdf.Size{Width: float64(img.Bounds().Dx()), Height: float64(img.Bounds().Dy())}
		rotated := imaging.Rotate(img, req.Placement.Rotation)

		data, err := imaging.EncodeBytes(rotated, imaging.PNG, 100)
		if err != nil {
			return err
		}
		stamp, err := s.uploads.WriteFile(data, "signature.png")
		if err != nil {
			return err
		}
		defer s.discard(stamp)

		place := pdf.Place(req.Placement, page, source)
		display := "signed_" + utils.SanitizeFilename(doc.Name)
		unique, out := s.outputs.Path(display)
		if err := pdf.SignPDF(in.Path, stamp.Path, req.Page, place, float64(rotated.Bounds().Dx()), out); err != nil {
			s.outputs.Remove(unique)
			return err
		}
		if err := s.output(res, unique, out, display); err != nil {
			return err
		}

		res.Details["page"] = strconv.Itoa(req.Page)
		res.Details["position"] = fmt.Sprintf("x=%.1f, y=%.1f", place.X, place.Y)
		res.Details["size"] = fmt.Sprintf("%.1f x %.1f pt", place.Width, place.Height)
		res.Details["rotation"] = strconv.Itoa(req.Placement.Rotation)
		return nil
	})
}
