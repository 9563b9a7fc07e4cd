package face

import (
	"context"
	"errors"
	"testing"
)

func TestUnconfiguredEngine(t *testing.T) {
	_, err := DefaultEngine().Verify(context.Background(), Input{ID: "id"}, Input{ID: "live"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Verify() error = %v, want ErrNotConfigured", err)
	}
}

type fixedEngine struct{ m Match }

func (f fixedEngine) Name() string { return "fixed" }
func (f fixedEngine) Verify(context.Context, Input, Input) (Match, error) {
	return f.m, nil
}

func TestSetDefaultEngine(t *testing.T) {
	orig := DefaultEngine()
	defer SetDefaultEngine(orig)

	want := Match{Distance: 0.31, Threshold: DefaultThreshold, Verified: true}
	SetDefaultEngine(fixedEngine{m: want})
	got, err := DefaultEngine().Verify(context.Background(), Input{}, Input{})
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
