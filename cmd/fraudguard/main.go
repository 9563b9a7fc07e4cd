// Command fraudguard serves the fraud analysis dashboard. Configuration comes
// from FRAUDGUARD_* environment variables; flags override.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wudi/fraudguard/face/goface"
	"github.com/wudi/fraudguard/observability"
	_ "github.com/wudi/fraudguard/ocr/tesseract"
	"github.com/wudi/fraudguard/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fraudguard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	addr := flag.String("addr", cfg.Addr, "listen address")
	faceModels := flag.String("face-models", cfg.FaceModelDir, "directory with the dlib face model files")
	flag.Parse()
	cfg.Addr = *addr
	cfg.FaceModelDir = *faceModels

	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	opts := server.Options{
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		OCRLanguages:   cfg.OCRLanguages,
	}
	if cfg.FaceModelDir != "" {
		eng, err := goface.New(cfg.FaceModelDir, goface.WithThreshold(cfg.FaceThreshold))
		if err != nil {
			return err
		}
		defer eng.Close()
		opts.Face = eng
	} else {
		logger.Warn("face matching disabled: no model directory configured")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(opts).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening", observability.String("addr", cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
