package handlers

import (
	"image/color"
	"net/http"
	"strconv"
	"strings"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/imaging"
	"go-filetools/internal/pdf"
	"go-filetools/internal/qr"
	"go-filetools/internal/tools"
)

// Edit actions accepted by the edit-pdf form.
const (
	ActionMerge   = "merge"
	ActionSplit   = "split"
	ActionRotate  = "rotate"
	ActionExtract = "extract"
)

// handle renders the empty form on GET. On POST it parses the form, runs the
// tool and renders the result or the error on the same page.
func (h *Handler) handle(w http.ResponseWriter, r *http.Request, data *PageData, run func() (*tools.Result, error)) {
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, data)
		return
	}
	if err := h.parseForm(w, r); err != nil {
		h.fail(w, r, data, err)
		return
	}
	formValues(r, data)

	res, err := run()
	if err != nil {
		h.fail(w, r, data, err)
		return
	}
	data.Result = res
	h.render(w, http.StatusOK, data)
}

// CompressImage godoc
// @Summary      Compress an image
// @Description  Re-encodes the uploaded image in its own format at the given quality
// @Tags         images
// @Accept       multipart/form-data
// @Produce      html
// @Param        image    formData  file     true   "Image (png, jpeg, gif, bmp, tiff, webp)"
// @Param        quality  formData  integer  false  "Quality 1-100" default(30)
// @Success      200  {string}  string  "Result page"
// @Router       /compress [post]
func (h *Handler) CompressImage(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("compress")
	data.Form["quality"] = strconv.Itoa(tools.DefaultImageQuality)
	h.handle(w, r, data, func() (*tools.Result, error) {
		quality, err := imaging.ParseQuality(r.PostFormValue("quality"), tools.DefaultImageQuality)
		if err != nil {
			return nil, apperrors.NewValidationError("Quality must be a whole number between 1 and 100")
		}
		u, f, err := openUpload(r, "image")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return h.svc.CompressImage(r.Context(), u, quality)
	})
}

// ConvertImage godoc
// @Summary      Convert an image
// @Description  Converts the uploaded image to another format
// @Tags         images
// @Accept       multipart/form-data
// @Produce      html
// @Param        image          formData  file     true   "Image"
// @Param        target_format  formData  string   true   "png, jpeg, gif, bmp or tiff"
// @Param        quality        formData  integer  false  "JPEG quality 1-100" default(90)
// @Success      200  {string}  string  "Result page"
// @Router       /convert-image [post]
func (h *Handler) ConvertImage(w http.ResponseWriter, r *http.Request) {
	const defaultQuality = 90
	data := h.newPage("convert_image")
	data.Form["target_format"] = string(imaging.PNG)
	data.Form["quality"] = strconv.Itoa(defaultQuality)
	data.Extra = imaging.Formats
	h.handle(w, r, data, func() (*tools.Result, error) {
		target, err := imaging.ParseFormat(r.PostFormValue("target_format"))
		if err != nil {
			return nil, apperrors.NewValidationError("Please choose a supported target format")
		}
		quality, err := imaging.ParseQuality(r.PostFormValue("quality"), defaultQuality)
		if err != nil {
			return nil, apperrors.NewValidationError("Quality must be a whole number between 1 and 100")
		}
		u, f, err := openUpload(r, "image")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return h.svc.ConvertImage(r.Context(), u, target, quality)
	})
}

// RemoveBackground godoc
// @Summary      Remove an image background
// @Description  Cuts out the subject with rembg. A valid #rrggbb background_color fills the removed area; anything else leaves it transparent.
// @Tags         images
// @Accept       multipart/form-data
// @Produce      html
// @Param        image             formData  file    true   "Image"
// @Param        background_color  formData  string  false  "Fill color as #rrggbb"
// @Success      200  {string}  string  "Result page"
// @Router       /remove-background [post]
func (h *Handler) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("remove_background")
	data.Download = "/download-bg-removed/"
	h.handle(w, r, data, func() (*tools.Result, error) {
		var bg *color.NRGBA
		if v := strings.TrimSpace(r.PostFormValue("background_color")); v != "" {
			if c, ok := imaging.ParseHexColor(v); ok {
				bg = &c
			} else {
				data.Notes = append(data.Notes, "Invalid background color "+strconv.Quote(v)+", the background was left transparent.")
			}
		}
		u, f, err := openUpload(r, "image")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return h.svc.RemoveBackground(r.Context(), u, bg)
	})
}

// CompressPDF godoc
// @Summary      Compress a PDF
// @Description  Rewrites the PDF with Ghostscript when installed, otherwise with pdfcpu optimization
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      html
// @Param        pdf                formData  file    true   "PDF document"
// @Param        compression_level  formData  string  false  "low, medium or high" default(medium)
// @Success      200  {string}  string  "Result page"
// @Router       /compress-pdf [post]
func (h *Handler) CompressPDF(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("compress_pdf")
	data.Form["compression_level"] = string(pdf.CompressionMedium)
	h.handle(w, r, data, func() (*tools.Result, error) {
		level, err := pdf.ParseCompressionLevel(r.PostFormValue("compression_level"))
		if err != nil {
			return nil, apperrors.NewValidationError("Compression level must be low, medium or high")
		}
		u, f, err := openUpload(r, "pdf")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return h.svc.CompressPDF(r.Context(), u, level)
	})
}

// EditPDF godoc
// @Summary      Merge, split, rotate or extract PDF pages
// @Description  action=merge takes two or more files under pdfs. split takes page_ranges such as "1-3, 5". rotate takes rotation and an optional page_range. extract takes pages such as "1, 3, 5".
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      html
// @Param        action       formData  string   true   "merge, split, rotate or extract"
// @Param        pdfs         formData  []file   false  "PDFs to merge, in order"
// @Param        pdf          formData  file     false  "PDF for split, rotate and extract"
// @Param        page_ranges  formData  string   false  "Split ranges"
// @Param        rotation     formData  integer  false  "90, 180, 270 or their negatives"
// @Param        page_range   formData  string   false  "Pages to rotate, all when empty"
// @Param        pages        formData  string   false  "Pages to extract"
// @Success      200  {string}  string  "Result page"
// @Router       /edit-pdf [post]
func (h *Handler) EditPDF(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("edit_pdf")
	data.Form["action"] = ActionMerge
	data.Form["rotation"] = "90"
	h.handle(w, r, data, func() (*tools.Result, error) {
		action := r.PostFormValue("action")
		if action == ActionMerge {
			uploads, closeAll, err := openUploads(r, "pdfs")
			defer closeAll()
			if err != nil {
				return nil, err
			}
			return h.svc.MergePDFs(r.Context(), uploads)
		}

		switch action {
		case ActionSplit, ActionRotate, ActionExtract:
		default:
			return nil, apperrors.NewValidationError("Please choose merge, split, rotate or extract")
		}
		u, f, err := openUpload(r, "pdf")
		if err != nil {
			return nil, err
		}
		defer f.Close()

		switch action {
		case ActionSplit:
			ranges, err := pdf.ParsePageRanges(r.PostFormValue("page_ranges"))
			if err != nil {
				return nil, apperrors.NewValidationError("Page ranges must look like 1-3, 5, 7-9", err.Error())
			}
			return h.svc.SplitPDF(r.Context(), u, ranges)
		case ActionRotate:
			rotation, err := intField(r, "rotation", "Rotation", 90)
			if err != nil {
				return nil, err
			}
			var pr *pdf.PageRange
			if v := strings.TrimSpace(r.PostFormValue("page_range")); v != "" {
				parsed, err := pdf.ParsePageRange(v)
				if err != nil {
					return nil, apperrors.NewValidationError("Page range must look like 2-5", err.Error())
				}
				pr = &parsed
			}
			return h.svc.RotatePDF(r.Context(), u, rotation, pr)
		default:
			pages, err := pdf.ParsePageList(r.PostFormValue("pages"))
			if err != nil {
				return nil, apperrors.NewValidationError("Pages must be a comma separated list such as 1, 3, 5", err.Error())
			}
			return h.svc.ExtractPages(r.Context(), u, pages)
		}
	})
}

// SignPDF godoc
// @Summary      Sign a PDF
// @Description  Places a signature image on one page. x_ratio and y_ratio position the top-left corner as fractions of the page measured from the top-left. At scale 1 the signature is 150 pt wide.
// @Tags         pdf
// @Accept       multipart/form-data
// @Produce      html
// @Param        pdf        formData  file     true   "PDF document"
// @Param        signature  formData  file     true   "Signature image"
// @Param        page       formData  integer  false  "Page number" default(1)
// @Param        x_ratio    formData  number   false  "Horizontal position 0-1" default(0.5)
// @Param        y_ratio    formData  number   false  "Vertical position 0-1" default(0.8)
// @Param        scale      formData  number   false  "Scale factor" default(1)
// @Param        rotation   formData  integer  false  "Clockwise rotation in degrees" default(0)
// @Success      200  {string}  string  "Result page"
// @Router       /sign-pdf [post]
func (h *Handler) SignPDF(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("sign_pdf")
	data.Form["page"] = "1"
	data.Form["x_ratio"] = "0.5"
	data.Form["y_ratio"] = "0.8"
	data.Form["scale"] = "1"
	data.Form["rotation"] = "0"
	h.handle(w, r, data, func() (*tools.Result, error) {
		req, err := signRequest(r)
		if err != nil {
			return nil, err
		}
		doc, df, err := openUpload(r, "pdf")
		if err != nil {
			return nil, err
		}
		defer df.Close()
		sig, sf, err := openUpload(r, "signature")
		if err != nil {
			return nil, apperrors.NewValidationError("Please choose a signature image")
		}
		defer sf.Close()
		return h.svc.SignPDF(r.Context(), doc, sig, req)
	})
}

func signRequest(r *http.Request) (tools.SignRequest, error) {
	var req tools.SignRequest
	var err error
	if req.Page, err = intField(r, "page", "Page", 1); err != nil {
		return req, err
	}
	if req.Placement.XRatio, err = floatField(r, "x_ratio", "Horizontal position", 0.5); err != nil {
		return req, err
	}
	if req.Placement.YRatio, err = floatField(r, "y_ratio", "Vertical position", 0.8); err != nil {
		return req, err
	}
	if req.Placement.Scale, err = floatField(r, "scale", "Scale", 1); err != nil {
		return req, err
	}
	if req.Placement.Rotation, err = intField(r, "rotation", "Rotation", 0); err != nil {
		return req, err
	}
	return req, req.Validate()
}

// QR godoc
// @Summary      Generate a QR code
// @Description  Encodes text as a PNG QR code. Invalid colors fall back to black on white and the page notes it.
// @Tags         qr
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        data              formData  string   true   "Text or URL"
// @Param        error_correction  formData  string   false  "L, M, Q or H" default(M)
// @Param        module_size       formData  integer  false  "Pixels per module" default(10)
// @Param        border            formData  integer  false  "Quiet zone in modules" default(4)
// @Param        fill_color        formData  string   false  "Module color as #rrggbb" default(#000000)
// @Param        background_color  formData  string   false  "Background color as #rrggbb" default(#ffffff)
// @Success      200  {string}  string  "Result page"
// @Router       /qr [post]
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	var (
		defaultFill = color.NRGBA{A: 0xff}
		defaultBg   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	)
	data := h.newPage("qr")
	data.Form["error_correction"] = "M"
	data.Form["module_size"] = strconv.Itoa(qr.DefaultModuleSize)
	data.Form["border"] = strconv.Itoa(qr.DefaultBorder)
	data.Form["fill_color"] = imaging.Hex(defaultFill)
	data.Form["background_color"] = imaging.Hex(defaultBg)
	h.handle(w, r, data, func() (*tools.Result, error) {
		opts := qr.DefaultOptions()
		var err error
		if opts.Level, err = qr.ParseLevel(r.PostFormValue("error_correction")); err != nil {
			return nil, apperrors.NewValidationError("Error correction must be L, M, Q or H")
		}
		if opts.ModuleSize, err = qr.ParseBounded(r.PostFormValue("module_size"), qr.DefaultModuleSize, 1, qr.MaxModuleSize); err != nil {
			return nil, apperrors.NewValidationError("Module size: " + err.Error())
		}
		if opts.Border, err = qr.ParseBounded(r.PostFormValue("border"), qr.DefaultBorder, 0, qr.MaxBorder); err != nil {
			return nil, apperrors.NewValidationError("Border: " + err.Error())
		}
		opts.Foreground = colorField(r, data, "fill_color", "fill", defaultFill)
		opts.Background = colorField(r, data, "background_color", "background", defaultBg)
		return h.svc.GenerateQR(r.Context(), r.PostFormValue("data"), opts)
	})
}

// colorField reads a hex color, noting the fallback when the value is invalid.
func colorField(r *http.Request, data *PageData, field, label string, def color.NRGBA) color.NRGBA {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return def
	}
	c, ok := imaging.HexColorOrDefault(v, def)
	if !ok {
		data.Notes = append(data.Notes, "Invalid "+label+" color "+strconv.Quote(v)+", using "+imaging.Hex(def)+".")
		data.Form[field] = imaging.Hex(def)
	}
	return c
}

// PDFToDoc godoc
// @Summary      Convert PDF to Word
// @Description  Converts a PDF into a DOCX document with LibreOffice
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      html
// @Param        pdf  formData  file  true  "PDF document"
// @Success      200  {string}  string  "Result page"
// @Router       /convert-pdf-doc [post]
func (h *Handler) PDFToDoc(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.newPage("convert_pdf_doc"), func() (*tools.Result, error) {
		u, f, err := openUpload(r, "pdf")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return h.svc.PDFToDoc(r.Context(), u)
	})
}

// DocToPDF godoc
// @Summary      Convert Word to PDF
// @Description  Converts a DOCX or DOC document to PDF. Without LibreOffice only DOCX is supported and is rendered natively.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      html
// @Param        document  formData  file  true  "DOCX or DOC document"
// @Success      200  {string}  string  "Result page"
// @Router       /convert-doc-pdf [post]
func (h *Handler) DocToPDF(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.newPage("convert_doc_pdf"), func() (*tools.Result, error) {
		u, f, err := openUpload(r, "document")
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return h.svc.DocToPDF(r.Context(), u)
	})
}
