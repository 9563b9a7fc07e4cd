// Package server exposes the fraud analysis toolkit as a JSON/multipart HTTP
// API with a static dashboard page. Each endpoint runs one analysis and
// copies the result into the session record; the report endpoint reads the
// record once to assemble the export.
package server

import (
	_ "embed"
	"net/http"

	"github.com/wudi/fraudguard/face"
	"github.com/wudi/fraudguard/observability"
	"github.com/wudi/fraudguard/ocr"
	"github.com/wudi/fraudguard/rules"
	"github.com/wudi/fraudguard/session"
)

//go:embed static/index.html
var indexHTML []byte

const defaultMaxUploadBytes = 20 << 20

// Options wires the server's collaborators. Zero-value fields fall back to
// the package defaults (noop OCR, unconfigured face engine, built-in rules).
type Options struct {
	Store          *session.Store
	OCR            ocr.Engine
	Face           face.Engine
	Rules          []rules.Rule
	Logger         observability.Logger
	Tracer         observability.Tracer
	MaxUploadBytes int64
	OCRLanguages   []string
}

// Server handles the dashboard API.
type Server struct {
	store          *session.Store
	ocrEngine      ocr.Engine
	faceEngine     face.Engine
	rules          []rules.Rule
	log            observability.Logger
	tracer         observability.Tracer
	maxUploadBytes int64
	ocrLanguages   []string
}

// New builds a Server from opts.
func New(opts Options) *Server {
	s := &Server{
		store:          opts.Store,
		ocrEngine:      opts.OCR,
		faceEngine:     opts.Face,
		rules:          opts.Rules,
		log:            opts.Logger,
		tracer:         opts.Tracer,
		maxUploadBytes: opts.MaxUploadBytes,
		ocrLanguages:   opts.OCRLanguages,
	}
	if s.store == nil {
		s.store = session.NewStore()
	}
	if s.ocrEngine == nil {
		s.ocrEngine = ocr.DefaultEngine()
	}
	if s.faceEngine == nil {
		s.faceEngine = face.DefaultEngine()
	}
	if s.rules == nil {
		s.rules = rules.DefaultRules()
	}
	if s.log == nil {
		s.log = observability.NopLogger{}
	}
	if s.tracer == nil {
		s.tracer = observability.NopTracer()
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/forgery", s.handleForgery)
	mux.HandleFunc("POST /api/sessions/{id}/signature", s.handleSignature)
	mux.HandleFunc("POST /api/sessions/{id}/aadhaar", s.handleAadhaar)
	mux.HandleFunc("POST /api/sessions/{id}/pan", s.handlePAN)
	mux.HandleFunc("POST /api/sessions/{id}/face", s.handleFace)
	mux.HandleFunc("POST /api/sessions/{id}/transactions", s.handleTransactions)
	mux.HandleFunc("POST /api/sessions/{id}/report", s.handleReport)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
