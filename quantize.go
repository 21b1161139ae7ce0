package noteshrink

import (
	"fmt"
	"sync"
)

// ApplyPalette maps every pixel of the buffer to its nearest palette entry
// by Euclidean RGB distance, ties going to the lowest palette index. The
// foreground mask is recomputed against the palette's slot-0 color as it
// stands after post-processing; if the background was forced white, white
// is the classification reference. No pixel is short-circuited to slot 0.
//
// Per-pixel work is independent, so the buffer is split into row chunks
// across opt.Workers goroutines. The palette is read-only for the duration
// and the output is deterministic.
func ApplyPalette(buf PixelBuffer, pal Palette, opt Options) (*Result, error) {
	if len(pal) < 1 || len(pal) > 256 {
		return nil, fmt.Errorf("%w: palette with %d slots", ErrInvalidConfiguration, len(pal))
	}
	if err := buf.validate(); err != nil {
		return nil, err
	}

	n := buf.NumPixels()
	labels := make([]uint8, n)
	mask := make([]bool, n)
	bgSat, bgVal := satVal(pal[0])

	workers := opt.workers()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				p := buf.pixel(i)
				mask[i] = foreground(p, bgSat, bgVal, opt.ValueThreshold, opt.SatThreshold)
				labels[i] = nearestPaletteIndex(p, pal)
			}
		}(start, end)
	}
	wg.Wait()

	return &Result{Labels: labels, Palette: pal, Mask: mask, W: buf.W, H: buf.H}, nil
}

// nearestPaletteIndex returns the index of the palette entry closest to c
// in squared Euclidean RGB distance, ties going to the lowest index.
func nearestPaletteIndex(c RGB, pal Palette) uint8 {
	best := 0
	bestD := int(^uint(0) >> 1)
	for i, p := range pal {
		dr := int(c[0]) - int(p[0])
		dg := int(c[1]) - int(p[1])
		db := int(c[2]) - int(p[2])
		if d := dr*dr + dg*dg + db*db; d < bestD {
			bestD = d
			best = i
		}
	}
	return uint8(best)
}
