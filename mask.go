package noteshrink

import "math"

// satVal computes HSV-style saturation and value for a color:
// value = max/255, saturation = (max-min)/max, with saturation 0 for black.
func satVal(c RGB) (sat, val float64) {
	maxC := c[0]
	minC := c[0]
	for _, ch := range c[1:] {
		if ch > maxC {
			maxC = ch
		}
		if ch < minC {
			minC = ch
		}
	}
	val = float64(maxC) / 255
	if maxC > 0 {
		sat = float64(maxC-minC) / float64(maxC)
	}
	return sat, val
}

// foreground reports whether a pixel diverges from the background in
// either brightness or saturation. The OR is deliberate: divergence on a
// single channel is enough to count as ink.
func foreground(c RGB, bgSat, bgVal, valueThreshold, satThreshold float64) bool {
	s, v := satVal(c)
	return math.Abs(v-bgVal) >= valueThreshold || math.Abs(s-bgSat) >= satThreshold
}

// ForegroundMask classifies each sample against the background color,
// returning one boolean per sample in input order.
func ForegroundMask(bg RGB, samples []RGB, valueThreshold, satThreshold float64) []bool {
	bgSat, bgVal := satVal(bg)
	mask := make([]bool, len(samples))
	for i, c := range samples {
		mask[i] = foreground(c, bgSat, bgVal, valueThreshold, satThreshold)
	}
	return mask
}
