// Package face defines the KYC face-matching contract: an ID-document photo
// compared against a live capture, scored by embedding distance.
package face

import (
	"context"
	"errors"
)

// DefaultThreshold is the embedding distance at or below which two faces are
// considered the same person. 0.6 is the conventional cutoff for dlib-style
// 128-dimension descriptors.
const DefaultThreshold = 0.6

var (
	// ErrNoFace reports that no face could be located in an input image.
	ErrNoFace = errors.New("face: no face detected")
	// ErrNotConfigured reports that no face engine has been installed.
	ErrNotConfigured = errors.New("face: no engine configured")
)

// Input is an encoded image (JPEG or PNG) submitted for matching.
type Input struct {
	// ID is an optional caller-provided identifier used in error messages.
	ID string
	// Image is the encoded image payload.
	Image []byte
}

// Match is the outcome of comparing two faces.
type Match struct {
	// Distance is the Euclidean distance between the two face descriptors.
	Distance float64
	// Threshold is the cutoff the verification used.
	Threshold float64
	// Verified reports Distance <= Threshold.
	Verified bool
}

// Engine verifies that two images show the same person.
type Engine interface {
	Name() string
	Verify(ctx context.Context, id, live Input) (Match, error)
}

var defaultEngine Engine = unconfiguredEngine{}

// DefaultEngine returns the process-wide face engine (dlib-backed when the
// goface subpackage is linked in).
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine sets the process-wide face engine.
func SetDefaultEngine(engine Engine) { defaultEngine = engine }

type unconfiguredEngine struct{}

func (unconfiguredEngine) Name() string { return "unconfigured" }

func (unconfiguredEngine) Verify(context.Context, Input, Input) (Match, error) {
	return Match{}, ErrNotConfigured
}
