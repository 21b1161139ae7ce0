package noteshrink

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// ProgressFunc receives image-level progress updates. Purely observational;
// it never affects results. Callbacks fire in image-processing order.
type ProgressFunc func(current, total int, message string)

// Runner processes batches of page images with a shared configuration.
//
// Images are processed one at a time; the heavy per-pixel work inside
// ApplyPalette already fans out across workers, and sequential scheduling
// keeps progress reporting ordered and results reproducible under a seeded
// random source.
type Runner struct {
	Opts Options

	// Log receives per-image diagnostics. Defaults to a no-op logger.
	Log zerolog.Logger

	// Progress, when set, is invoked once per processed image.
	Progress ProgressFunc

	// Rand drives sampling and clustering. Seed it for reproducible runs.
	Rand *rand.Rand

	// Extract, when set, replaces the built-in clusterer as the source of
	// non-background palette colors. Ignored in global-palette mode.
	Extract ColorExtractor
}

// NewRunner returns a Runner with a no-op logger and a time-seeded random
// source.
func NewRunner(opts Options) *Runner {
	return &Runner{
		Opts: opts,
		Log:  zerolog.Nop(),
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process runs the pipeline for a single image.
func (r *Runner) Process(buf PixelBuffer) (*Result, error) {
	if err := r.Opts.Validate(); err != nil {
		return nil, err
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}

	samples := SamplePixels(buf, r.Opts.SampleFraction, r.Rand)

	var pal Palette
	if r.Extract != nil {
		bg, err := BackgroundColor(samples, bgBitsPerChannel)
		if err != nil {
			return nil, err
		}
		colors, err := r.Extract(buf, r.Opts.NumColors-1)
		if err != nil {
			return nil, fmt.Errorf("extract palette colors: %w", err)
		}
		pal = AssemblePalette(bg, colors, r.Opts)
	} else {
		var err error
		pal, err = BuildPalette(samples, r.Opts, r.Rand)
		if err != nil {
			return nil, err
		}
	}

	res, err := ApplyPalette(buf, pal, r.Opts)
	if err != nil {
		return nil, err
	}
	mean, sigma := QuantizationError(samples, pal)
	r.Log.Debug().
		Int("width", buf.W).
		Int("height", buf.H).
		Int("colors", len(pal)).
		Float64("fg_ratio", res.ForegroundRatio()).
		Float64("quant_err_mean", mean).
		Float64("quant_err_sigma", sigma).
		Msg("image quantized")
	return res, nil
}

// ProcessBatch runs the pipeline over a batch of page images.
//
// In per-image mode each image gets its own palette; a failing image leaves
// a nil slot in the results and the batch continues, with the failures
// joined into the returned error. In global-palette mode all images are
// sampled first, the merged samples build one shared immutable palette, and
// every image is quantized against it; any sampling or palette failure
// aborts the whole batch since there is no partial-palette fallback.
//
// Cancellation is coarse: the context is checked between images only.
func (r *Runner) ProcessBatch(ctx context.Context, images []PixelBuffer) ([]*Result, error) {
	if err := r.Opts.Validate(); err != nil {
		return nil, err
	}
	if r.Opts.GlobalPalette {
		return r.processGlobal(ctx, images)
	}

	results := make([]*Result, len(images))
	var errs []error
	for i, buf := range images {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Process(buf)
		if err != nil {
			r.Log.Error().Err(err).Int("image", i+1).Msg("image failed")
			errs = append(errs, fmt.Errorf("image %d: %w", i+1, err))
			continue
		}
		results[i] = res
		r.report(i+1, len(images), "processed")
	}
	return results, errors.Join(errs...)
}

func (r *Runner) processGlobal(ctx context.Context, images []PixelBuffer) ([]*Result, error) {
	sets := make([][]RGB, len(images))
	for i, buf := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := buf.validate(); err != nil {
			return nil, fmt.Errorf("sample image %d: %w", i+1, err)
		}
		sets[i] = SamplePixels(buf, r.Opts.SampleFraction, r.Rand)
		r.report(i+1, len(images), "sampled")
	}

	merged := RebalanceSamples(sets, r.Rand)
	pal, err := BuildPalette(merged, r.Opts, r.Rand)
	if err != nil {
		return nil, fmt.Errorf("global palette: %w", err)
	}
	r.Log.Info().Int("samples", len(merged)).Int("colors", len(pal)).Msg("global palette built")

	results := make([]*Result, len(images))
	for i, buf := range images {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := ApplyPalette(buf, pal, r.Opts)
		if err != nil {
			return results, fmt.Errorf("image %d: %w", i+1, err)
		}
		results[i] = res
		r.report(i+1, len(images), "processed")
	}
	return results, nil
}

func (r *Runner) report(current, total int, msg string) {
	if r.Progress != nil {
		r.Progress(current, total, msg)
	}
}
