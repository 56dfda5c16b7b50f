package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go-filetools/internal/apperrors"
	"go-filetools/internal/tools"
)

// multipartMemory is how much of a form is kept in memory before parts spill
// to temporary files.
const multipartMemory = 8 << 20

// parseForm bounds the body and parses it as multipart (or urlencoded for the
// QR form).
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewValidationError(fmt.Sprintf("The upload is too large, the limit is %s", HumanSize(h.maxUploadSize)))
	}
	return apperrors.NewValidationError("The form could not be read", err.Error())
}

// formValues copies the submitted fields so the page can be re-rendered with
// the user's input.
func formValues(r *http.Request, data *PageData) {
	for key, values := range r.PostForm {
		if len(values) > 0 {
			data.Form[key] = values[0]
		}
	}
}

// openUpload opens the first file posted under field. The caller closes the
// returned file.
func openUpload(r *http.Request, field string) (tools.Upload, multipart.File, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return tools.Upload{}, nil, apperrors.NewValidationError("Please choose a file to upload")
	}
	header := r.MultipartForm.File[field][0]
	f, err := header.Open()
	if err != nil {
		return tools.Upload{}, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return tools.Upload{Name: header.Filename, Reader: f}, f, nil
}

// openUploads opens every file posted under field, in order.
func openUploads(r *http.Request, field string) ([]tools.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	if r.MultipartForm == nil {
		return nil, closeAll, nil
	}
	var uploads []tools.Upload
	for _, header := range r.MultipartForm.File[field] {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("failed to open upload: %w", err)
		}
		files = append(files, f)
		uploads = append(uploads, tools.Upload{Name: header.Filename, Reader: f})
	}
	return uploads, closeAll, nil
}

// intField parses an optional integer form value.
func intField(r *http.Request, field, label string, def int) (int, error) {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a whole number", label))
	}
	return n, nil
}

// floatField parses an optional decimal form value.
func floatField(r *http.Request, field, label string, def float64) (float64, error) {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a number", label))
	}
	return f, nil
}
