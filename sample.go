package noteshrink

import "math/rand"

// SamplePixels draws max(1, floor(n*fraction)) pixels from the buffer
// uniformly at random without replacement. Output order carries no meaning.
// A zero-pixel buffer yields an empty, non-nil set.
func SamplePixels(buf PixelBuffer, fraction float64, rng *rand.Rand) []RGB {
	n := buf.NumPixels()
	if n == 0 {
		return []RGB{}
	}
	count := int(float64(n) * fraction)
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}

	// Partial Fisher-Yates: only the taken prefix is shuffled, so large
	// images with small fractions do not pay for a full shuffle.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	out := make([]RGB, count)
	for i := 0; i < count; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = buf.pixel(idx[i])
	}
	return out
}

// RebalanceSamples merges per-image sample sets for global-palette
// construction. Each set is uniformly downsampled to the smallest set's
// size before concatenation so that no single page dominates the shared
// palette. Input sets are not modified.
func RebalanceSamples(sets [][]RGB, rng *rand.Rand) []RGB {
	if len(sets) == 0 {
		return []RGB{}
	}
	target := len(sets[0])
	for _, s := range sets[1:] {
		if len(s) < target {
			target = len(s)
		}
	}
	merged := make([]RGB, 0, target*len(sets))
	for _, s := range sets {
		merged = append(merged, downsample(s, target, rng)...)
	}
	return merged
}

// downsample picks count elements from s uniformly without replacement.
func downsample(s []RGB, count int, rng *rand.Rand) []RGB {
	if count >= len(s) {
		return s
	}
	idx := make([]int, len(s))
	for i := range idx {
		idx[i] = i
	}
	out := make([]RGB, count)
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(s)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = s[idx[i]]
	}
	return out
}
