// Package goface implements face.Engine with dlib ResNet descriptors via
// github.com/Kagami/go-face. It needs the shape predictor and recognition
// model files (shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat)
// in the configured model directory.
package goface

import (
	"context"
	"fmt"
	"math"

	dlib "github.com/Kagami/go-face"

	"github.com/wudi/fraudguard/face"
)

// Engine is a dlib-backed face matcher.
type Engine struct {
	rec       *dlib.Recognizer
	threshold float64
}

// Option configures the engine.
type Option func(*Engine)

// WithThreshold overrides the verification distance cutoff.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) { e.threshold = threshold }
}

// New loads the dlib models from modelDir and registers the engine as the
// package-wide default.
func New(modelDir string, opts ...Option) (*Engine, error) {
	rec, err := dlib.NewRecognizer(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load face models from %s: %w", modelDir, err)
	}
	e := &Engine{rec: rec, threshold: face.DefaultThreshold}
	for _, opt := range opts {
		opt(e)
	}
	face.SetDefaultEngine(e)
	return e, nil
}

// Close releases the dlib recognizer.
func (e *Engine) Close() {
	e.rec.Close()
}

func (e *Engine) Name() string { return "dlib" }

// Verify locates one face per image, computes descriptor distance, and
// reports whether it falls under the threshold. A missing or ambiguous face
// is an error for the caller to surface, never a silent mismatch.
func (e *Engine) Verify(ctx context.Context, id, live face.Input) (face.Match, error) {
	idDesc, err := e.descriptor(ctx, id)
	if err != nil {
		return face.Match{}, err
	}
	liveDesc, err := e.descriptor(ctx, live)
	if err != nil {
		return face.Match{}, err
	}
	d := euclidean(idDesc, liveDesc)
	return face.Match{
		Distance:  d,
		Threshold: e.threshold,
		Verified:  d <= e.threshold,
	}, nil
}

func (e *Engine) descriptor(ctx context.Context, in face.Input) (dlib.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return dlib.Descriptor{}, err
	}
	f, err := e.rec.RecognizeSingle(in.Image)
	if err != nil {
		return dlib.Descriptor{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	if f == nil {
		return dlib.Descriptor{}, fmt.Errorf("%s: %w", in.ID, face.ErrNoFace)
	}
	return f.Descriptor, nil
}

func euclidean(a, b dlib.Descriptor) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
