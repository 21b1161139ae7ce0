// Package noteshrink reduces scanned-document images to a small,
// high-contrast color palette. It estimates the paper (background) color,
// separates ink (foreground) pixels by saturation/value divergence, extracts
// representative ink colors with k-means++ clustering, and maps every pixel
// to its nearest palette entry, yielding an index buffer plus a palette.
package noteshrink

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"
)

// RGB is a single 8-bit-per-channel color triple.
type RGB [3]uint8

// Palette is an ordered list of representative colors. Slot 0 is always the
// background color; the remaining slots are cluster centroids in discovery
// order.
type Palette []RGB

// PixelBuffer holds a flat row-major RGB image, 3 bytes per pixel.
type PixelBuffer struct {
	W, H int
	Pix  []byte // len = W*H*3
}

// NumPixels returns the pixel count of the buffer.
func (b PixelBuffer) NumPixels() int {
	return b.W * b.H
}

func (b PixelBuffer) validate() error {
	if b.W < 0 || b.H < 0 || len(b.Pix) != b.W*b.H*3 {
		return fmt.Errorf("%w: %dx%d buffer with %d bytes", ErrEmptyBuffer, b.W, b.H, len(b.Pix))
	}
	return nil
}

// pixel returns the i-th pixel of the buffer.
func (b PixelBuffer) pixel(i int) RGB {
	off := i * 3
	return RGB{b.Pix[off], b.Pix[off+1], b.Pix[off+2]}
}

// Result is the output of processing one image: a per-pixel palette index
// buffer, the palette it references, and the foreground mask that was
// recomputed against the final palette's background slot.
type Result struct {
	Labels  []uint8
	Palette Palette
	Mask    []bool
	W, H    int
}

// ForegroundRatio reports the fraction of pixels classified as foreground.
func (r *Result) ForegroundRatio() float64 {
	if len(r.Mask) == 0 {
		return 0
	}
	fg := 0
	for _, m := range r.Mask {
		if m {
			fg++
		}
	}
	return float64(fg) / float64(len(r.Mask))
}

// ColorExtractor produces k representative foreground colors for an image.
// It lets callers swap the built-in clusterer for an alternative extraction
// method; the background slot and palette post-processing are unaffected.
type ColorExtractor func(buf PixelBuffer, k int) ([]RGB, error)

// Options controls the quantization pipeline.
type Options struct {
	// NumColors is the total palette size including the background slot.
	NumColors int
	// ValueThreshold is the minimum brightness divergence from the
	// background for a pixel to count as foreground, in [0,1].
	ValueThreshold float64
	// SatThreshold is the minimum saturation divergence from the
	// background for a pixel to count as foreground, in [0,1].
	SatThreshold float64
	// SampleFraction is the fraction of pixels sampled for palette
	// statistics, in (0,1].
	SampleFraction float64
	// Saturate applies a global contrast stretch to the palette.
	Saturate bool
	// WhiteBG overwrites the background slot with pure white after the
	// palette is built.
	WhiteBG bool
	// GlobalPalette builds one shared palette from all images in a batch
	// instead of one per image.
	GlobalPalette bool
	// KMeansIter caps the clustering iteration count.
	KMeansIter int
	// Workers bounds the quantizer fan-out; 0 means runtime.NumCPU().
	Workers int
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		NumColors:      8,
		ValueThreshold: 0.25,
		SatThreshold:   0.20,
		SampleFraction: 0.05,
		Saturate:       true,
		WhiteBG:        false,
		GlobalPalette:  false,
		KMeansIter:     40,
	}
}

// Validate rejects configurations the pipeline cannot honor.
func (o Options) Validate() error {
	if o.NumColors < 1 || o.NumColors > 256 {
		return fmt.Errorf("%w: numColors %d not in [1,256]", ErrInvalidConfiguration, o.NumColors)
	}
	if o.ValueThreshold < 0 || o.ValueThreshold > 1 {
		return fmt.Errorf("%w: valueThreshold %g not in [0,1]", ErrInvalidConfiguration, o.ValueThreshold)
	}
	if o.SatThreshold < 0 || o.SatThreshold > 1 {
		return fmt.Errorf("%w: satThreshold %g not in [0,1]", ErrInvalidConfiguration, o.SatThreshold)
	}
	if o.SampleFraction <= 0 || o.SampleFraction > 1 {
		return fmt.Errorf("%w: sampleFraction %g not in (0,1]", ErrInvalidConfiguration, o.SampleFraction)
	}
	if o.KMeansIter < 1 {
		return fmt.Errorf("%w: kmeansIter %d < 1", ErrInvalidConfiguration, o.KMeansIter)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers %d < 0", ErrInvalidConfiguration, o.Workers)
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Shrink runs the full single-image pipeline: sample, estimate the
// background, build a palette, and quantize every pixel against it.
// A nil rng selects a time-seeded source.
func Shrink(buf PixelBuffer, opt Options, rng *rand.Rand) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	samples := SamplePixels(buf, opt.SampleFraction, rng)
	pal, err := BuildPalette(samples, opt, rng)
	if err != nil {
		return nil, err
	}
	return ApplyPalette(buf, pal, opt)
}
