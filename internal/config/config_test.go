package config

import (
	"testing"
	"time"
)

const defaultMaxUploadSize int64 = 20 * 1024 * 1024

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "UPLOAD_DIR", "OUTPUT_DIR", "MAX_UPLOAD_SIZE", "FILE_TTL", "CONVERT_TIMEOUT",
		"RATE_LIMIT", "RATE_BURST", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
		"SOFFICE_PATH", "REMBG_PATH", "GHOSTSCRIPT_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.UploadDir != "uploads" || cfg.OutputDir != "output" {
		t.Fatalf("expected default dirs uploads/output, got %s/%s", cfg.UploadDir, cfg.OutputDir)
	}
	if cfg.MaxUploadSize != defaultMaxUploadSize {
		t.Fatalf("expected default max upload size %d, got %d", defaultMaxUploadSize, cfg.MaxUploadSize)
	}
	if cfg.FileTTL != 30*time.Minute {
		t.Fatalf("expected default file ttl 30m, got %s", cfg.FileTTL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("expected info/text logging, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("MAX_UPLOAD_SIZE", "12345")
	t.Setenv("FILE_TTL", "5m")
	t.Setenv("CONVERT_TIMEOUT", "10s")
	t.Setenv("RATE_LIMIT", "0.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOFFICE_PATH", "/opt/libreoffice/program/soffice")

	cfg := FromEnv()

	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Fatalf("expected output dir /tmp/out, got %s", cfg.OutputDir)
	}
	if cfg.MaxUploadSize != 12345 {
		t.Fatalf("expected max upload size 12345, got %d", cfg.MaxUploadSize)
	}
	if cfg.FileTTL != 5*time.Minute || cfg.ConvertTimeout != 10*time.Second {
		t.Fatalf("expected durations 5m/10s, got %s/%s", cfg.FileTTL, cfg.ConvertTimeout)
	}
	if cfg.RateLimit != 0.5 {
		t.Fatalf("expected rate limit 0.5, got %v", cfg.RateLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.SofficePath != "/opt/libreoffice/program/soffice" {
		t.Fatalf("expected soffice override, got %s", cfg.SofficePath)
	}
}

func TestFromEnv_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("MAX_UPLOAD_SIZE", "huge")
	t.Setenv("FILE_TTL", "forever")

	cfg := FromEnv()

	if cfg.Port != 8080 {
		t.Fatalf("expected fallback port 8080, got %d", cfg.Port)
	}
	if cfg.MaxUploadSize != defaultMaxUploadSize {
		t.Fatalf("expected fallback max upload size, got %d", cfg.MaxUploadSize)
	}
	if cfg.FileTTL != 30*time.Minute {
		t.Fatalf("expected fallback ttl, got %s", cfg.FileTTL)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid port to fail validation")
	}

	cfg = FromEnv()
	cfg.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty output dir to fail validation")
	}
}
