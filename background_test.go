package noteshrink

import (
	"errors"
	"testing"
)

func TestQuantizeChannel(t *testing.T) {
	tests := []struct {
		v    uint8
		bits int
		want uint8
	}{
		{130, 6, 130}, // (130>>2<<2)+2, already at a bin center
		{128, 6, 130},
		{131, 6, 130},
		{0, 6, 2},
		{255, 6, 254},
		{200, 8, 200}, // full depth is the identity
		{200, 1, 192}, // single bit: 128 + half bin 64
	}
	for _, tt := range tests {
		if got := quantizeChannel(tt.v, tt.bits); got != tt.want {
			t.Errorf("quantizeChannel(%d, %d) = %d, want %d", tt.v, tt.bits, got, tt.want)
		}
	}
}

func TestPackUnpackRGB(t *testing.T) {
	colors := []RGB{{0, 0, 0}, {255, 255, 255}, {10, 20, 30}, {1, 2, 3}}
	for _, c := range colors {
		if got := unpackRGB(packRGB(c)); got != c {
			t.Errorf("unpack(pack(%v)) = %v", c, got)
		}
	}
}

func TestBackgroundColorMode(t *testing.T) {
	samples := make([]RGB, 0, 101)
	for i := 0; i < 100; i++ {
		samples = append(samples, RGB{10, 20, 30})
	}
	samples = append(samples, RGB{200, 200, 200})

	got, err := BackgroundColor(samples, 6)
	if err != nil {
		t.Fatal(err)
	}
	// The exact 6-bit bin center of (10,20,30).
	want := RGB{10, 22, 30}
	if got != want {
		t.Errorf("BackgroundColor = %v, want %v", got, want)
	}
}

func TestBackgroundColorTieBreak(t *testing.T) {
	// Two bins with equal counts: the key encountered first wins.
	samples := []RGB{{200, 200, 200}, {10, 20, 30}, {200, 200, 200}, {10, 20, 30}}
	got, err := BackgroundColor(samples, 6)
	if err != nil {
		t.Fatal(err)
	}
	if want := quantizeColor(RGB{200, 200, 200}, 6); got != want {
		t.Errorf("BackgroundColor = %v, want first-encountered bin %v", got, want)
	}
}

func TestBackgroundColorEmpty(t *testing.T) {
	if _, err := BackgroundColor(nil, 6); !errors.Is(err, ErrEmptyBuffer) {
		t.Errorf("empty input: got %v, want ErrEmptyBuffer", err)
	}
}

func TestBackgroundColorBadBits(t *testing.T) {
	for _, bits := range []int{0, 9, -1} {
		if _, err := BackgroundColor([]RGB{{1, 2, 3}}, bits); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("bits %d: got %v, want ErrInvalidConfiguration", bits, err)
		}
	}
}
