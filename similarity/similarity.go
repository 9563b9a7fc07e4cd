// Package similarity scores structural similarity between two grayscale
// document images and classifies the score into fraud-review bands.
package similarity

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// SSIM parameters for 8-bit images (Wang et al. defaults).
const (
	windowSize   = 8
	k1           = 0.01
	k2           = 0.03
	dynamicRange = 255.0
)

// ErrSizeMismatch reports images whose dimensions differ. Callers normalize
// both sides to a common size before scoring.
var ErrSizeMismatch = errors.New("similarity: image dimensions differ")

// SSIM computes the mean structural similarity index between a and b over a
// sliding window, along with a per-window similarity map scaled to 0..255
// (dark regions mark structural differences). Identical images score 1.0.
func SSIM(a, b *image.Gray) (float64, *image.Gray, error) {
	if a == nil || b == nil {
		return 0, nil, errors.New("similarity: nil image")
	}
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, nil, ErrSizeMismatch
	}
	w, h := ab.Dx(), ab.Dy()
	if w < windowSize || h < windowSize {
		return 0, nil, fmt.Errorf("similarity: image smaller than %dx%d window", windowSize, windowSize)
	}

	c1 := (k1 * dynamicRange) * (k1 * dynamicRange)
	c2 := (k2 * dynamicRange) * (k2 * dynamicRange)
	mw, mh := w-windowSize+1, h-windowSize+1
	diff := image.NewGray(image.Rect(0, 0, mw, mh))

	var sum float64
	for y := 0; y < mh; y++ {
		for x := 0; x < mw; x++ {
			v := windowSSIM(a, b, ab.Min.X+x, ab.Min.Y+y, bb.Min.X+x, bb.Min.Y+y, c1, c2)
			sum += v
			scaled := v * 255
			if scaled < 0 {
				scaled = 0
			} else if scaled > 255 {
				scaled = 255
			}
			diff.SetGray(x, y, color.Gray{Y: uint8(scaled + 0.5)})
		}
	}
	return sum / float64(mw*mh), diff, nil
}

func windowSSIM(a, b *image.Gray, ax, ay, bx, by int, c1, c2 float64) float64 {
	const n = windowSize * windowSize
	var sumA, sumB, sumAA, sumBB, sumAB float64
	for dy := 0; dy < windowSize; dy++ {
		aRow := a.Pix[a.PixOffset(ax, ay+dy):]
		bRow := b.Pix[b.PixOffset(bx, by+dy):]
		for dx := 0; dx < windowSize; dx++ {
			pa := float64(aRow[dx])
			pb := float64(bRow[dx])
			sumA += pa
			sumB += pb
			sumAA += pa * pa
			sumBB += pb * pb
			sumAB += pa * pb
		}
	}
	muA := sumA / n
	muB := sumB / n
	varA := sumAA/n - muA*muA
	varB := sumBB/n - muB*muB
	cov := sumAB/n - muA*muB
	return ((2*muA*muB + c1) * (2*cov + c2)) / ((muA*muA + muB*muB + c1) * (varA + varB + c2))
}

// Band classifies a similarity score for review.
type Band int

const (
	BandGenuine Band = iota
	BandSuspicious
	BandForged
)

func (b Band) String() string {
	switch b {
	case BandGenuine:
		return "genuine"
	case BandSuspicious:
		return "suspicious"
	default:
		return "forged"
	}
}

// DocumentBand applies the document-forgery thresholds: above 0.9 no forgery,
// above 0.6 minor differences, otherwise a high chance of forgery.
func DocumentBand(score float64) Band {
	switch {
	case score > 0.9:
		return BandGenuine
	case score > 0.6:
		return BandSuspicious
	default:
		return BandForged
	}
}

// SignatureBand applies the stricter signature thresholds: above 0.85 genuine,
// above 0.6 a partial, suspicious match, otherwise likely forged.
func SignatureBand(score float64) Band {
	switch {
	case score > 0.85:
		return BandGenuine
	case score > 0.6:
		return BandSuspicious
	default:
		return BandForged
	}
}
