package ocr

import (
	"context"
	"errors"
	"testing"
)

type fakeEngine struct {
	texts map[string]string
	err   error
}

func (f fakeEngine) Name() string { return "fake" }

func (f fakeEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{InputID: in.ID, PlainText: f.texts[in.ID]}, nil
}

type fakeBatchEngine struct {
	fakeEngine
	batchCalls int
}

func (f *fakeBatchEngine) RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error) {
	f.batchCalls++
	out := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		res, err := f.Recognize(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func TestRecognizeSequential(t *testing.T) {
	eng := fakeEngine{texts: map[string]string{"a": "first", "b": "second"}}
	results, err := Recognize(context.Background(), eng, Input{ID: "a"}, Input{ID: "b"})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(results) != 2 || results[1].PlainText != "second" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRecognizePrefersBatch(t *testing.T) {
	eng := &fakeBatchEngine{fakeEngine: fakeEngine{texts: map[string]string{"a": "x"}}}
	if _, err := Recognize(context.Background(), eng, Input{ID: "a"}); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if eng.batchCalls != 1 {
		t.Fatalf("batch calls = %d, want 1", eng.batchCalls)
	}
}

func TestRecognizeWrapsError(t *testing.T) {
	sentinel := errors.New("engine down")
	_, err := Recognize(context.Background(), fakeEngine{err: sentinel}, Input{ID: "a"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Recognize() error = %v, want wrapped sentinel", err)
	}
}

func TestRecognizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Recognize(ctx, fakeEngine{}, Input{ID: "a"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Recognize() error = %v, want context.Canceled", err)
	}
}

func TestDefaultEngineNoop(t *testing.T) {
	res, err := DefaultEngine().Recognize(context.Background(), Input{ID: "x"})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.InputID != "x" || res.PlainText != "" {
		t.Fatalf("unexpected noop result: %+v", res)
	}
}
