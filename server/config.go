package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the runtime settings for the dashboard server.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"FRAUDGUARD_ADDR" envDefault:":8080"`
	// MaxUploadBytes caps each multipart upload. Defaults to 20 MiB.
	MaxUploadBytes int64 `env:"FRAUDGUARD_MAX_UPLOAD_BYTES" envDefault:"20971520"`
	// OCRLanguages are the Tesseract language hints for ID extraction.
	OCRLanguages []string `env:"FRAUDGUARD_OCR_LANGS" envDefault:"eng" envSeparator:","`
	// FaceModelDir points at the dlib model files; empty leaves face matching
	// unconfigured and the KYC tab reports it inline.
	FaceModelDir string `env:"FRAUDGUARD_FACE_MODELS"`
	// FaceThreshold is the verification distance cutoff.
	FaceThreshold float64 `env:"FRAUDGUARD_FACE_THRESHOLD" envDefault:"0.6"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
