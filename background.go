package noteshrink

import "fmt"

// bgBitsPerChannel is the channel depth used for background histogram
// bucketing throughout the pipeline.
const bgBitsPerChannel = 6

// quantizeChannel rounds a channel value to the center of its bin at the
// given bit depth: shift down, shift up, add the half-bin offset.
func quantizeChannel(v uint8, bits int) uint8 {
	shift := uint(8 - bits)
	return (v>>shift)<<shift + 1<<shift>>1
}

// quantizeColor reduces all three channels of a color to bits significant
// bits per channel.
func quantizeColor(c RGB, bits int) RGB {
	return RGB{
		quantizeChannel(c[0], bits),
		quantizeChannel(c[1], bits),
		quantizeChannel(c[2], bits),
	}
}

// packRGB packs a color into a single 24-bit key.
func packRGB(c RGB) uint32 {
	return uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// unpackRGB is the inverse of packRGB.
func unpackRGB(p uint32) RGB {
	return RGB{uint8(p >> 16), uint8(p >> 8), uint8(p)}
}

// BackgroundColor estimates the background (paper) color of a sample set:
// colors are quantized to bitsPerChannel significant bits, packed, counted
// in a histogram, and the modal color is returned. Ties break toward the
// key encountered first in iteration order; which key that is carries no
// numeric meaning.
func BackgroundColor(samples []RGB, bitsPerChannel int) (RGB, error) {
	if bitsPerChannel < 1 || bitsPerChannel > 8 {
		return RGB{}, fmt.Errorf("%w: bitsPerChannel %d not in [1,8]", ErrInvalidConfiguration, bitsPerChannel)
	}
	if len(samples) == 0 {
		return RGB{}, fmt.Errorf("background estimation: %w", ErrEmptyBuffer)
	}

	hist := make(map[uint32]int, 1024)
	for _, c := range samples {
		hist[packRGB(quantizeColor(c, bitsPerChannel))]++
	}

	// Second pass in input order so the tie break is stable.
	best := 0
	var bestKey uint32
	for _, c := range samples {
		key := packRGB(quantizeColor(c, bitsPerChannel))
		if n := hist[key]; n > best {
			best = n
			bestKey = key
		}
	}
	return unpackRGB(bestKey), nil
}
