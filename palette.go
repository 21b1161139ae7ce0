package noteshrink

import "math/rand"

// midGray fills palette slots when no foreground samples exist to cluster.
var midGray = RGB{128, 128, 128}

// BuildPalette estimates the background color from the samples, clusters
// the foreground samples into NumColors-1 groups, and assembles the final
// palette: slot 0 is the background, the remaining slots are centroids in
// discovery order.
//
// An empty foreground is not an error; clustering is skipped and the
// non-background slots default to mid-gray. NumColors of 1 also skips
// clustering and yields the background alone. Post-processing (contrast
// stretch, forced white background) applies in both cases.
func BuildPalette(samples []RGB, opt Options, rng *rand.Rand) (Palette, error) {
	bg, err := BackgroundColor(samples, bgBitsPerChannel)
	if err != nil {
		return nil, err
	}

	pal := make(Palette, opt.NumColors)
	pal[0] = bg
	if opt.NumColors > 1 {
		mask := ForegroundMask(bg, samples, opt.ValueThreshold, opt.SatThreshold)
		fg := make([]RGB, 0, len(samples))
		for i, m := range mask {
			if m {
				fg = append(fg, samples[i])
			}
		}
		if len(fg) == 0 {
			for i := 1; i < opt.NumColors; i++ {
				pal[i] = midGray
			}
		} else {
			centroids, _, err := KMeans(fg, opt.NumColors-1, opt.KMeansIter, rng)
			if err != nil {
				return nil, err
			}
			copy(pal[1:], centroids)
		}
	}
	return finishPalette(pal, opt), nil
}

// AssemblePalette builds a palette from an already-estimated background and
// externally extracted foreground colors, applying the same post-processing
// as BuildPalette. Missing slots fill with mid-gray; extra colors are
// dropped.
func AssemblePalette(bg RGB, colors []RGB, opt Options) Palette {
	pal := make(Palette, opt.NumColors)
	pal[0] = bg
	for i := 1; i < opt.NumColors; i++ {
		if i-1 < len(colors) {
			pal[i] = colors[i-1]
		} else {
			pal[i] = midGray
		}
	}
	return finishPalette(pal, opt)
}

func finishPalette(pal Palette, opt Options) Palette {
	if opt.Saturate {
		saturatePalette(pal)
	}
	if opt.WhiteBG {
		pal[0] = RGB{255, 255, 255}
	}
	return pal
}

// saturatePalette applies a linear contrast stretch across every byte of
// the palette, using the single global min and max. A flat palette is left
// unchanged.
func saturatePalette(pal Palette) {
	minV, maxV := pal[0][0], pal[0][0]
	for _, c := range pal {
		for _, ch := range c {
			if ch < minV {
				minV = ch
			}
			if ch > maxV {
				maxV = ch
			}
		}
	}
	if maxV == minV {
		return
	}
	span := float64(maxV - minV)
	for i, c := range pal {
		for j, ch := range c {
			pal[i][j] = clampChannel(255 * float64(ch-minV) / span)
		}
	}
}
