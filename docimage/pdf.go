package docimage

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// DecodePDF scans raw PDF bytes for image XObjects and decodes the largest
// one. The scan is deliberately tolerant: it does not build an xref table and
// survives damaged or nonstandard files, in the spirit of repair-mode PDF
// readers. DCTDecode streams are embedded JPEGs; FlateDecode streams carry raw
// 8-bit DeviceGray or DeviceRGB samples.
func DecodePDF(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	var best image.Image
	bestPixels := 0
	for _, obj := range scanStreamObjects(data) {
		img, err := decodeImageObject(obj)
		if err != nil {
			continue
		}
		px := img.Bounds().Dx() * img.Bounds().Dy()
		if px > bestPixels {
			best, bestPixels = img, px
		}
	}
	if best == nil {
		return nil, ErrNoEmbeddedImage
	}
	return best, nil
}

type streamObject struct {
	dict string
	data []byte
}

// scanStreamObjects walks the byte stream for `<<dict>> stream ... endstream`
// spans without consulting the xref table.
func scanStreamObjects(data []byte) []streamObject {
	var objs []streamObject
	off := 0
	for {
		i := bytes.Index(data[off:], []byte("stream"))
		if i < 0 {
			break
		}
		i += off
		off = i + len("stream")
		if i >= 3 && string(data[i-3:i]) == "end" {
			continue
		}
		dict, ok := dictBefore(data, i)
		if !ok {
			continue
		}
		start := i + len("stream")
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		rel := bytes.Index(data[start:], []byte("endstream"))
		if rel < 0 {
			continue
		}
		objs = append(objs, streamObject{dict: dict, data: data[start : start+rel]})
		off = start + rel + len("endstream")
	}
	return objs
}

// dictBefore walks backwards from pos balancing << and >> pairs to recover the
// dictionary that introduces a stream keyword.
func dictBefore(data []byte, pos int) (string, bool) {
	depth := 0
	for i := pos - 1; i > 0; i-- {
		if data[i] == '>' && data[i-1] == '>' {
			depth++
			i--
			continue
		}
		if data[i] == '<' && data[i-1] == '<' {
			depth--
			if depth == 0 {
				return string(data[i-1 : pos]), true
			}
			i--
		}
	}
	return "", false
}

var (
	imageSubtypeRe = regexp.MustCompile(`/Subtype\s*/Image\b`)
	widthRe        = regexp.MustCompile(`/Width\s+(\d+)`)
	heightRe       = regexp.MustCompile(`/Height\s+(\d+)`)
	bitsRe         = regexp.MustCompile(`/BitsPerComponent\s+(\d+)`)
	predictorRe    = regexp.MustCompile(`/Predictor\s+(\d+)`)
)

func decodeImageObject(obj streamObject) (image.Image, error) {
	if !imageSubtypeRe.MatchString(obj.dict) {
		return nil, fmt.Errorf("not an image XObject")
	}
	switch {
	case strings.Contains(obj.dict, "/DCTDecode"):
		img, err := jpeg.Decode(bytes.NewReader(obj.data))
		if err != nil {
			return nil, fmt.Errorf("decode DCT stream: %w", err)
		}
		return img, nil
	case strings.Contains(obj.dict, "/FlateDecode"):
		return decodeFlateImage(obj)
	}
	return nil, fmt.Errorf("unsupported image filter")
}

func decodeFlateImage(obj streamObject) (image.Image, error) {
	w, okW := dictInt(widthRe, obj.dict)
	h, okH := dictInt(heightRe, obj.dict)
	if !okW || !okH || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("missing image dimensions")
	}
	if bits, ok := dictInt(bitsRe, obj.dict); ok && bits != 8 {
		return nil, fmt.Errorf("unsupported bits per component: %d", bits)
	}
	if m, ok := dictInt(predictorRe, obj.dict); ok && m > 1 {
		return nil, fmt.Errorf("unsupported flate predictor: %d", m)
	}
	components := 0
	switch {
	case strings.Contains(obj.dict, "/DeviceGray"):
		components = 1
	case strings.Contains(obj.dict, "/DeviceRGB"):
		components = 3
	default:
		return nil, fmt.Errorf("unsupported color space")
	}
	zr, err := zlib.NewReader(bytes.NewReader(obj.data))
	if err != nil {
		return nil, fmt.Errorf("open flate stream: %w", err)
	}
	defer zr.Close()
	want := w * h * components
	raw := make([]byte, want)
	if _, err := io.ReadFull(zr, raw); err != nil {
		return nil, fmt.Errorf("read flate samples: %w", err)
	}
	if components == 1 {
		img := image.NewGray(image.Rect(0, 0, w, h))
		copy(img.Pix, raw)
		return img, nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i*4+0] = raw[i*3+0]
		img.Pix[i*4+1] = raw[i*3+1]
		img.Pix[i*4+2] = raw[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img, nil
}

func dictInt(re *regexp.Regexp, dict string) (int, bool) {
	m := re.FindStringSubmatch(dict)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
