// Package server provides the HTTP server setup for go-filetools.
//
// NewServer wires the configuration, file stores, capability registry, tool
// service and handlers together.
//
// Expected outputs:
// - Server listens on the configured port (default 8080)
// - Produced files older than FILE_TTL are swept periodically
//
// Usage:
//
//	srv, err := server.NewServer(cfg, logger)
//	go srv.StartJanitor(ctx)
//	srv.HTTPServer().ListenAndServe()
//
// See internal/server/routes.go for route registration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-filetools/internal/capability"
	"go-filetools/internal/config"
	"go-filetools/internal/handlers"
	"go-filetools/internal/store"
	"go-filetools/internal/tools"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// minSweepInterval keeps the janitor from spinning on very short TTLs.
const minSweepInterval = 10 * time.Second

type Server struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	Uploads *store.Store
	Outputs *store.Store
	Caps    *capability.Registry
	handler *handlers.Handler
	limiter *rate.Limiter
}

// ProbeCapabilities looks up the optional external tools once and logs what
// was found.
func ProbeCapabilities(cfg *config.Config, log logrus.FieldLogger) *capability.Registry {
	caps := capability.NewRegistry(log)
	caps.Probe(capability.DefaultSpecs(cfg.SofficePath, cfg.RembgPath, cfg.GhostscriptPath))
	warnMissing(caps, log)
	return caps
}

// warnMissing names the tools that are switched off for this run.
func warnMissing(caps *capability.Registry, log logrus.FieldLogger) {
	if !caps.Available(capability.Office) {
		log.Warn("LibreOffice not found: PDF to Word is disabled and DOCX files are rendered natively")
	}
	if !caps.Available(capability.BgRemoval) {
		log.Warn("rembg not found: background removal is disabled")
	}
}

func NewServer(cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	return newServer(cfg, log, ProbeCapabilities(cfg, log))
}

func newServer(cfg *config.Config, log logrus.FieldLogger, caps *capability.Registry) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	uploads, err := store.New(cfg.UploadDir, log)
	if err != nil {
		return nil, err
	}
	outputs, err := store.New(cfg.OutputDir, log)
	if err != nil {
		return nil, err
	}

	svc := tools.NewService(uploads, outputs, caps, cfg.ConvertTimeout, log)
	h, err := handlers.New(svc, cfg.MaxUploadSize, log)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		log:     log,
		Uploads: uploads,
		Outputs: outputs,
		Caps:    caps,
		handler: h,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}, nil
}

// HTTPServer returns the configured http.Server. The write timeout leaves
// room for the slowest external conversion.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      s.cfg.ConvertTimeout + time.Minute,
	}
}

// StartJanitor sweeps expired uploads and outputs until ctx is done.
func (s *Server) StartJanitor(ctx context.Context) {
	interval := s.cfg.FileTTL / 3
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	go s.Uploads.Janitor(ctx, interval, s.cfg.FileTTL)
	s.Outputs.Janitor(ctx, interval, s.cfg.FileTTL)
}

// Cleanup removes every file from both directories.
func (s *Server) Cleanup() {
	s.Uploads.Clear()
	s.Outputs.Clear()
}
