package server

import (
	"net/http"

	_ "go-filetools/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes returns the router with every page, download and system
// endpoint. Tool submissions share the rate limiter.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.With(localhostOnly).Get("/swagger/*", httpSwagger.WrapHandler)

	h := s.handler
	r.Get("/", h.Index)
	r.Get("/healthz", h.Healthz)
	r.Get("/download/{filename}", h.Download)
	r.Get("/download-bg-removed/{filename}", h.DownloadBackgroundRemoved)

	pages := map[string]http.HandlerFunc{
		"/compress":          h.CompressImage,
		"/convert-image":     h.ConvertImage,
		"/remove-background": h.RemoveBackground,
		"/compress-pdf":      h.CompressPDF,
		"/edit-pdf":          h.EditPDF,
		"/sign-pdf":          h.SignPDF,
		"/qr":                h.QR,
		"/convert-pdf-doc":   h.PDFToDoc,
		"/convert-doc-pdf":   h.DocToPDF,
	}
	for path, handler := range pages {
		r.Get(path, handler)
	}
	r.Group(func(post chi.Router) {
		post.Use(s.rateLimit)
		for path, handler := range pages {
			post.Post(path, handler)
		}
	})

	return r
}
