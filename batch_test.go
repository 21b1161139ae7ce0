package noteshrink

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

// flatPage builds a nearly uniform page whose foreground is a single
// pixel; with a large NumColors the clusterer cannot form a partition and
// the image fails with ErrInsufficientSamples.
func flatPage() PixelBuffer {
	buf := gridBuffer(10, 10, RGB{250, 250, 250})
	copy(buf.Pix[:3], []byte{0, 0, 0})
	return buf
}

func newTestRunner(opts Options) *Runner {
	r := NewRunner(opts)
	r.Rand = rand.New(rand.NewSource(1))
	return r
}

func TestProcessBatchContinuesPastFailures(t *testing.T) {
	opts := DefaultOptions()
	opts.NumColors = 8
	opts.SampleFraction = 1
	r := newTestRunner(opts)

	var progress []int
	r.Progress = func(current, total int, msg string) {
		progress = append(progress, current)
	}

	results, err := r.ProcessBatch(context.Background(), []PixelBuffer{inkPage(), flatPage(), inkPage()})
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("got %v, want joined ErrInsufficientSamples", err)
	}
	if results[0] == nil || results[2] == nil {
		t.Error("healthy images must still produce results")
	}
	if results[1] != nil {
		t.Error("failed image must leave a nil slot")
	}
	// Progress fires only for processed images, in order.
	if len(progress) != 2 || progress[0] != 1 || progress[1] != 3 {
		t.Errorf("progress = %v, want [1 3]", progress)
	}
}

func TestProcessBatchGlobalPalette(t *testing.T) {
	opts := DefaultOptions()
	opts.NumColors = 4
	opts.SampleFraction = 1
	opts.GlobalPalette = true
	r := newTestRunner(opts)

	results, err := r.ProcessBatch(context.Background(), []PixelBuffer{inkPage(), inkPage()})
	if err != nil {
		t.Fatal(err)
	}
	// Both images share one palette value.
	for i := range results[0].Palette {
		if results[0].Palette[i] != results[1].Palette[i] {
			t.Fatalf("palette slot %d differs between images in global mode", i)
		}
	}
}

func TestProcessBatchGlobalPaletteAbortsOnFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.NumColors = 8
	opts.SampleFraction = 1
	opts.GlobalPalette = true
	r := newTestRunner(opts)

	// Two near-flat pages: the merged foreground cannot support 7
	// clusters, so the shared palette step must abort the whole batch.
	results, err := r.ProcessBatch(context.Background(), []PixelBuffer{flatPage(), flatPage()})
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("got %v, want ErrInsufficientSamples", err)
	}
	if results != nil {
		t.Error("aborted global batch must not return partial results")
	}
}

func TestProcessBatchCancellation(t *testing.T) {
	opts := DefaultOptions()
	opts.SampleFraction = 1
	opts.NumColors = 4
	r := newTestRunner(opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.ProcessBatch(ctx, []PixelBuffer{inkPage()}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestProcessWithExtractor(t *testing.T) {
	opts := DefaultOptions()
	opts.NumColors = 3
	opts.SampleFraction = 1
	opts.Saturate = false
	r := newTestRunner(opts)
	r.Extract = func(buf PixelBuffer, k int) ([]RGB, error) {
		if k != 2 {
			t.Errorf("extractor asked for %d colors, want 2", k)
		}
		return []RGB{{1, 2, 3}, {4, 5, 6}}, nil
	}

	res, err := r.Process(inkPage())
	if err != nil {
		t.Fatal(err)
	}
	if res.Palette[1] != (RGB{1, 2, 3}) || res.Palette[2] != (RGB{4, 5, 6}) {
		t.Errorf("extracted colors not placed: %v", res.Palette)
	}
}
