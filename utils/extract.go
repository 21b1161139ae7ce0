package utils

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	noteshrink "github.com/lokchonmou/pdf-noteshrink"
)

// PaletteMethod selects an alternative source of non-background palette
// colors. The core pipeline's own clusterer remains the default; these
// methods trade its thresholds-driven ink separation for general-purpose
// dominant-color extraction.
type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod maps a CLI flag value to a method.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	default:
		return 0, fmt.Errorf("unknown palette method %q (valid: dominantcolor, kmeans)", s)
	}
}

// Extractor adapts a palette method to the core pipeline's ColorExtractor
// hook.
func Extractor(method PaletteMethod) noteshrink.ColorExtractor {
	return func(buf noteshrink.PixelBuffer, k int) ([]noteshrink.RGB, error) {
		colors := ExtractColors(FromPixelBuffer(buf), k, method)
		if len(colors) == 0 && k > 0 {
			return nil, fmt.Errorf("palette method %s produced no colors", method)
		}
		SortByBrightness(colors)
		return colors, nil
	}
}

// ExtractColors extracts k representative colors with the given method,
// falling back to dominant-color extraction when library k-means yields
// nothing usable.
func ExtractColors(img image.Image, k int, method PaletteMethod) []noteshrink.RGB {
	if method == PaletteMethodKMeans {
		if p := extractKMeansColors(img, k); len(p) != 0 {
			return p
		}
	}
	return extractDominantColors(img, k)
}

// SortByBrightness orders colors from darkest to brightest by linear
// luminance.
func SortByBrightness(colors []noteshrink.RGB) {
	slices.SortFunc(colors, func(a, b noteshrink.RGB) int {
		ya := luminance(a)
		yb := luminance(b)
		if ya < yb {
			return -1
		}
		if ya > yb {
			return 1
		}
		return 0
	})
}

func luminance(c noteshrink.RGB) float64 {
	r, g, b := toColorful(c).LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func toColorful(c noteshrink.RGB) colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

func toRGB(c colorful.Color) noteshrink.RGB {
	c = c.Clamped()
	return noteshrink.RGB{
		uint8(math.Round(c.R * 255)),
		uint8(math.Round(c.G * 255)),
		uint8(math.Round(c.B * 255)),
	}
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

func extractDominantColors(img image.Image, k int) []noteshrink.RGB {
	if k <= 0 {
		return nil
	}
	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: w})
	}
	return selectDiverse(weighted, k)
}

func extractKMeansColors(img image.Image, k int) []noteshrink.RGB {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep the partitioning tractable on large pages.
	const maxSamples = 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col, weight: w})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse greedily picks k colors, seeding with the heaviest
// candidate and then maximizing a weight-biased Lab distance to the
// already-selected set.
func selectDiverse(cands []weightedColor, k int) []noteshrink.RGB {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	if k > len(cands) {
		k = len(cands)
	}
	maxW := cands[0].weight
	seed := 0
	for i, c := range cands {
		if c.weight > maxW {
			maxW = c.weight
			seed = i
		}
	}
	if maxW <= 0 {
		maxW = 1
	}

	labs := make([][3]float64, len(cands))
	for i, c := range cands {
		l, a, b := c.col.Lab()
		labs[i] = [3]float64{l, a, b}
	}

	picked := []int{seed}
	taken := make([]bool, len(cands))
	taken[seed] = true
	for len(picked) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range cands {
			if taken[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range picked {
				d0 := labs[i][0] - labs[s][0]
				d1 := labs[i][1] - labs[s][1]
				d2 := labs[i][2] - labs[s][2]
				if d := d0*d0 + d1*d1 + d2*d2; d < minD2 {
					minD2 = d
				}
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(cands[i].weight/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		picked = append(picked, bestIdx)
	}

	out := make([]noteshrink.RGB, 0, len(picked))
	for _, idx := range picked {
		out = append(out, toRGB(cands[idx].col))
	}
	return out
}
