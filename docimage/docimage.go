// Package docimage decodes uploaded document images into normalized grayscale
// bitmaps for comparison. Plain PNG/JPEG uploads go through the standard
// decoders; PDF uploads are handled by a tolerant scan for embedded image
// XObjects, since scanned banking documents are single full-page images.
package docimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Normalized edge lengths used before similarity scoring.
const (
	DocumentSize  = 600
	SignatureSize = 300
)

var (
	// ErrEmptyUpload reports a zero-byte upload.
	ErrEmptyUpload = errors.New("docimage: empty upload")
	// ErrNoEmbeddedImage reports a PDF upload with no decodable image XObject.
	ErrNoEmbeddedImage = errors.New("docimage: no embedded image found in PDF")
)

// Decode turns an uploaded file into an image. The file name selects the PDF
// path; unknown extensions fall back to content sniffing via image.Decode.
func Decode(name string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if strings.HasSuffix(strings.ToLower(name), ".pdf") || bytes.HasPrefix(data, []byte("%PDF-")) {
		return DecodePDF(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// Grayscale converts img to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Resize scales img to w x h using bilinear interpolation.
func Resize(img image.Image, w, h int) image.Image {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

// Normalize scales img to w x h grayscale in one pass, the shape the
// similarity scorer expects.
func Normalize(img image.Image, w, h int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}
