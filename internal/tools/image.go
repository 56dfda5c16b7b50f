package tools

import (
	"context"
	"image"
	"os"
	"strconv"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/imaging"
	"go-filetools/internal/utils"
)

// DefaultImageQuality is used when the form leaves quality empty.
const DefaultImageQuality = 30

func validateQuality(q int) error {
	if q < 1 || q > 100 {
		return apperrors.NewValidationError("Quality must be between 1 and 100")
	}
	return nil
}

// CompressImage re-encodes an image in its own format at quality. Formats
// without an encoder (WebP) are written as JPEG.
func (s *Service) CompressImage(ctx context.Context, u Upload, quality int) (*Result, error) {
	return s.run("compress_image", func(res *Result) error {
		if err := validateQuality(quality); err != nil {
			return err
		}
		in, err := s.save(u, KindImage)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		img, detected, err := decodeFile(in.Path)
		if err != nil {
			return err
		}
		format, err := imaging.ParseFormat(detected)
		if err != nil {
			format = imaging.JPEG
		}

		data, err := imaging.EncodeBytes(img, format, quality)
		if err != nil {
			return err
		}
		display := "compressed_" + utils.ReplaceExt(utils.SanitizeFilename(u.Name), format.Ext())
		out, err := s.outputs.WriteFile(data, display)
		if err != nil {
			return err
		}
		s.outputFile(res, out, display)
		res.Details["format"] = string(format)
		res.Details["quality"] = strconv.Itoa(quality)
		return nil
	})
}

// ConvertImage re-encodes an image as target.
func (s *Service) ConvertImage(ctx context.Context, u Upload, target imaging.Format, quality int) (*Result, error) {
	return s.run("convert_image", func(res *Result) error {
		if err := validateQuality(quality); err != nil {
			return err
		}
		in, err := s.save(u, KindImage)
		if err != nil {
			return err
		}
		defer s.discard(in)
		res.OriginalSize = in.Size

		img, detected, err := decodeFile(in.Path)
		if err != nil {
			return err
		}
		data, err := imaging.EncodeBytes(img, target, quality)
		if err != nil {
			return err
		}
		display := "converted_" + utils.BaseName(utils.SanitizeFilename(u.Name)) + target.Ext()
		out, err := s.outputs.WriteFile(data, display)
		if err != nil {
			return err
		}
		s.outputFile(res, out, display)
		res.Details["from"] = detected
		res.Details["to"] = string(target)
		res.Details["dimensions"] = strconv.Itoa(img.Bounds().Dx()) + "x" + strconv.Itoa(img.Bounds().Dy())
		return nil
	})
}

// decodeFile opens and decodes an image. Undecodable input is a validation
// error.
func decodeFile(path string) (img image.Image, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err = imaging.Decode(f)
	if err != nil {
		return nil, "", apperrors.NewValidationError("The image could not be read. Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP")
	}
	return img, format, nil
}
