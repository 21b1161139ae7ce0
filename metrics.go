package noteshrink

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// QuantizationError measures how far a sample set lands from its nearest
// palette entries: the mean and standard deviation of the per-sample
// Euclidean distances. Useful for judging whether a palette is large
// enough for the material being archived.
func QuantizationError(samples []RGB, pal Palette) (mean, sigma float64) {
	if len(samples) == 0 || len(pal) == 0 {
		return 0, 0
	}
	dists := make([]float64, len(samples))
	for i, c := range samples {
		p := pal[nearestPaletteIndex(c, pal)]
		dr := float64(c[0]) - float64(p[0])
		dg := float64(c[1]) - float64(p[1])
		db := float64(c[2]) - float64(p[2])
		dists[i] = math.Sqrt(dr*dr + dg*dg + db*db)
	}
	mean, sigma = stat.MeanStdDev(dists, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}
	return mean, sigma
}
