package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/fraudguard/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(t *testing.T, text string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	in := ocr.InputFromBytes("doc", renderText(t, "PAN ABCPX1234F"), ocr.ImageFormatPNG,
		ocr.WithLanguages("eng"), ocr.WithDPI(300))

	res, err := NewEngine().Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.InputID != "doc" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
	if !strings.Contains(res.PlainText, "1234") {
		t.Fatalf("expected digits in OCR output, got %q", res.PlainText)
	}
}

func TestEngineBatchCanceled(t *testing.T) {
	ensureTesseractAvailable(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().RecognizeBatch(ctx, []ocr.Input{{ID: "a"}})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestDefaultEngineRegistered(t *testing.T) {
	if ocr.DefaultEngine().Name() != "tesseract" {
		t.Fatalf("default engine = %s, want tesseract", ocr.DefaultEngine().Name())
	}
}
