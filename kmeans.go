package noteshrink

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// KMeans partitions RGB points into k clusters and returns the centroids
// (clamped to 8-bit channels) together with the final point labels.
//
// Initialization follows k-means++: the first centroid is drawn uniformly,
// each subsequent one with probability proportional to the squared distance
// from its nearest already-chosen centroid, which biases new centroids
// toward regions the existing ones cover poorly.
//
// Fewer points than clusters is a hard error; a well-formed k-partition is
// impossible and the caller must adjust its parameters.
func KMeans(points []RGB, k, maxIter int, rng *rand.Rand) ([]RGB, []int, error) {
	if k < 1 {
		return nil, nil, fmt.Errorf("%w: k %d < 1", ErrInvalidConfiguration, k)
	}
	if len(points) < k {
		return nil, nil, fmt.Errorf("%w: %d points for %d clusters", ErrInsufficientSamples, len(points), k)
	}

	centroids := initCentroids(points, k, rng)
	labels := make([]int, len(points))
	prev := make([]int, len(points))

	for iter := 0; iter < maxIter; iter++ {
		for i, p := range points {
			labels[i] = nearestCentroid(p, centroids)
		}
		// The first pass has no previous labels to compare against, so
		// it always completes fully.
		if iter > 0 && equalLabels(labels, prev) {
			break
		}
		copy(prev, labels)
		updateCentroids(points, labels, centroids)
	}

	out := make([]RGB, k)
	for i, c := range centroids {
		out[i] = RGB{clampChannel(c[0]), clampChannel(c[1]), clampChannel(c[2])}
	}
	return out, labels, nil
}

// initCentroids implements the k-means++ seeding policy.
func initCentroids(points []RGB, k int, rng *rand.Rand) [][3]float64 {
	centroids := make([][3]float64, 0, k)
	centroids = append(centroids, toFloat(points[rng.Intn(len(points))]))

	d2 := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d2[i] = nearestSqDist(toFloat(p), centroids)
			total += d2[i]
		}
		if total == 0 {
			// Every point coincides with a chosen centroid; the
			// weighted draw has no mass, so fall back to uniform.
			centroids = append(centroids, toFloat(points[rng.Intn(len(points))]))
			continue
		}
		u := rng.Float64() * total
		pick := len(points) - 1
		for i := range points {
			u -= d2[i]
			if u <= 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, toFloat(points[pick]))
	}
	return centroids
}

// updateCentroids recomputes each centroid as the per-channel mean of its
// assigned points. A centroid with no assigned points keeps its previous
// value; it does not reinitialize or drop out.
func updateCentroids(points []RGB, labels []int, centroids [][3]float64) {
	sums := make([][3]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, p := range points {
		l := labels[i]
		sums[l][0] += float64(p[0])
		sums[l][1] += float64(p[1])
		sums[l][2] += float64(p[2])
		counts[l]++
	}
	for i := range centroids {
		if counts[i] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[i]), sums[i][:])
		centroids[i] = sums[i]
	}
}

// nearestCentroid returns the index of the closest centroid by squared
// Euclidean distance, ties going to the lowest index.
func nearestCentroid(p RGB, centroids [][3]float64) int {
	fp := toFloat(p)
	best := 0
	bestD := math.MaxFloat64
	for i, c := range centroids {
		if d := sqDist(fp, c); d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

func nearestSqDist(p [3]float64, centroids [][3]float64) float64 {
	best := math.MaxFloat64
	for _, c := range centroids {
		if d := sqDist(p, c); d < best {
			best = d
		}
	}
	return best
}

func sqDist(a, b [3]float64) float64 {
	dr := a[0] - b[0]
	dg := a[1] - b[1]
	db := a[2] - b[2]
	return dr*dr + dg*dg + db*db
}

func toFloat(c RGB) [3]float64 {
	return [3]float64{float64(c[0]), float64(c[1]), float64(c[2])}
}

func clampChannel(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func equalLabels(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
