package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFields(t *testing.T) {
	cases := []struct {
		field Field
		key   string
	}{
		{String("name", "forgery"), "name"},
		{Int("count", 3), "count"},
		{Int64("elapsed_ms", 125), "elapsed_ms"},
		{Float64("score", 0.92), "score"},
		{Bool("verified", true), "verified"},
		{Error("err", context.Canceled), "err"},
	}
	for _, c := range cases {
		if c.field.Key() != c.key {
			t.Fatalf("unexpected key: %s", c.field.Key())
		}
		if c.field.Value() == nil {
			t.Fatalf("nil value for %s", c.key)
		}
	}
}

func TestInt64Field(t *testing.T) {
	f := Int64(MetricForgeryTime, 42)
	if f.Key() != MetricForgeryTime {
		t.Fatalf("unexpected key: %s", f.Key())
	}
	v, ok := f.Value().(int64)
	if !ok || v != 42 {
		t.Fatalf("unexpected value: %v", f.Value())
	}
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NopLogger{}
	if got := l.With(String("k", "v")); got == nil {
		t.Fatal("With returned nil logger")
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	l.With(String("session", "abc")).Info("analysis complete", Float64("score", 0.75))
	out := buf.String()
	if !strings.Contains(out, "analysis complete") || !strings.Contains(out, "session=abc") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestNopTracer(t *testing.T) {
	ctx, span := NopTracer().StartSpan(context.Background(), "ssim")
	if ctx == nil {
		t.Fatal("nil context")
	}
	span.SetTag("k", "v")
	span.SetError(nil)
	span.Finish()
}
