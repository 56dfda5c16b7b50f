// Package main API.
//
// go-filetools serves small image, PDF, QR and document utilities behind
// HTML forms.
//
//	@title			go-filetools API
//	@version		1.0.0
//	@description	Image, PDF, QR and document utilities behind HTML forms.
//	@host			localhost:8080
//	@BasePath		/
//	@schemes		http
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go-filetools/internal/config"
	"go-filetools/internal/logging"
	"go-filetools/internal/server"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveFlags = []cli.Flag{
	&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port (overrides PORT)"},
	&cli.StringFlag{Name: "upload-dir", Usage: "directory for incoming files (overrides UPLOAD_DIR)"},
	&cli.StringFlag{Name: "output-dir", Usage: "directory for produced files (overrides OUTPUT_DIR)"},
	&cli.Int64Flag{Name: "max-upload-size", Usage: "request body limit in bytes (overrides MAX_UPLOAD_SIZE)"},
	&cli.DurationFlag{Name: "file-ttl", Usage: "how long produced files are kept (overrides FILE_TTL)"},
	&cli.DurationFlag{Name: "convert-timeout", Usage: "limit for external conversions (overrides CONVERT_TIMEOUT)"},
	&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides LOG_LEVEL)"},
	&cli.StringFlag{Name: "log-format", Usage: "text or json (overrides LOG_FORMAT)"},
	&cli.StringFlag{Name: "log-file", Usage: "also write logs to this file (overrides LOG_FILE)"},
}

func main() {
	app := &cli.App{
		Name:   "go-filetools",
		Usage:  "image, PDF, QR and document tools with a web front end",
		Flags:  serveFlags,
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server (default)",
				Flags:  serveFlags,
				Action: serve,
			},
			{
				Name:   "capabilities",
				Usage:  "report which optional external tools are installed",
				Action: capabilities,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("upload-dir") {
		cfg.UploadDir = c.String("upload-dir")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("max-upload-size") {
		cfg.MaxUploadSize = c.Int64("max-upload-size")
	}
	if c.IsSet("file-ttl") {
		cfg.FileTTL = c.Duration("file-ttl")
	}
	if c.IsSet("convert-timeout") {
		cfg.ConvertTimeout = c.Duration("convert-timeout")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
}

func gracefulShutdown(apiServer *http.Server, done chan bool, cleanupFunc func(), log logrus.FieldLogger) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	if cleanupFunc != nil {
		log.Info("cleaning upload and output directories")
		cleanupFunc()
	}

	log.Info("server exiting")

	// Notify the caller that the shutdown is complete
	done <- true
}

func serve(c *cli.Context) error {
	cfg := config.Load()
	applyFlags(c, cfg)

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	// Leftovers from a previous run are never tracked, so drop them.
	srv.Cleanup()

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go srv.StartJanitor(janitorCtx)

	httpServer := srv.HTTPServer()
	done := make(chan bool, 1)
	go gracefulShutdown(httpServer, done, srv.Cleanup, logger)

	logger.WithFields(logrus.Fields{
		"addr":       httpServer.Addr,
		"upload_dir": cfg.UploadDir,
		"output_dir": cfg.OutputDir,
		"file_ttl":   cfg.FileTTL.String(),
	}).Info("starting server")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	<-done
	logger.Info("graceful shutdown complete")
	return nil
}

func capabilities(c *cli.Context) error {
	cfg := config.Load()
	caps := server.ProbeCapabilities(cfg, logging.Discard())

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CAPABILITY\tAVAILABLE\tPATH / HINT")
	for _, entry := range caps.All() {
		detail := entry.Path
		if !entry.Available {
			detail = entry.Hint
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", entry.Label, entry.Available, detail)
	}
	return w.Flush()
}
