package noteshrink

import (
	"math/rand"
	"testing"
)

// scannedPage fabricates a plausible sample set: mostly near-white paper
// with a few distinct ink colors.
func scannedPage() []RGB {
	var samples []RGB
	for i := 0; i < 200; i++ {
		samples = append(samples, RGB{250, 250, 248})
	}
	inks := []RGB{{20, 20, 20}, {180, 30, 30}, {30, 30, 170}, {20, 120, 40}}
	for _, ink := range inks {
		for i := 0; i < 25; i++ {
			samples = append(samples, ink)
		}
	}
	return samples
}

func TestBuildPaletteSlotCount(t *testing.T) {
	samples := scannedPage()
	for _, n := range []int{1, 2, 4, 8} {
		opt := DefaultOptions()
		opt.NumColors = n
		opt.Saturate = false
		pal, err := BuildPalette(samples, opt, rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatalf("numColors=%d: %v", n, err)
		}
		if len(pal) != n {
			t.Errorf("numColors=%d: palette has %d slots", n, len(pal))
		}
	}
}

func TestBuildPaletteBackgroundSlot(t *testing.T) {
	samples := scannedPage()
	opt := DefaultOptions()
	opt.Saturate = false
	pal, err := BuildPalette(samples, opt, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	want, err := BackgroundColor(samples, bgBitsPerChannel)
	if err != nil {
		t.Fatal(err)
	}
	if pal[0] != want {
		t.Errorf("slot 0 = %v, want background %v", pal[0], want)
	}
}

func TestBuildPaletteSingleColor(t *testing.T) {
	// numColors == 1 skips clustering entirely.
	opt := DefaultOptions()
	opt.NumColors = 1
	opt.Saturate = false
	pal, err := BuildPalette(scannedPage(), opt, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) != 1 {
		t.Fatalf("palette has %d slots, want 1", len(pal))
	}
}

func TestBuildPaletteEmptyForeground(t *testing.T) {
	// A uniform page has no foreground; clustering is skipped and the
	// non-background slots default to mid-gray.
	samples := make([]RGB, 50)
	for i := range samples {
		samples[i] = RGB{240, 240, 240}
	}
	opt := DefaultOptions()
	opt.NumColors = 4
	opt.Saturate = false
	pal, err := BuildPalette(samples, opt, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(pal); i++ {
		if pal[i] != midGray {
			t.Errorf("slot %d = %v, want mid-gray", i, pal[i])
		}
	}
}

func TestSaturatePaletteStretch(t *testing.T) {
	pal := Palette{{50, 100, 150}, {200, 60, 80}}
	saturatePalette(pal)
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
	if minV != 0 || maxV != 255 {
		t.Errorf("stretched range [%d,%d], want [0,255]", minV, maxV)
	}
}

func TestSaturatePaletteFlat(t *testing.T) {
	pal := Palette{{90, 90, 90}, {90, 90, 90}}
	saturatePalette(pal)
	for _, c := range pal {
		if c != (RGB{90, 90, 90}) {
			t.Errorf("flat palette changed: %v", pal)
		}
	}
}

func TestBuildPaletteWhiteBackground(t *testing.T) {
	opt := DefaultOptions()
	opt.WhiteBG = true
	pal, err := BuildPalette(scannedPage(), opt, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if pal[0] != (RGB{255, 255, 255}) {
		t.Errorf("slot 0 = %v, want forced white", pal[0])
	}
}

func TestAssemblePalettePadding(t *testing.T) {
	opt := DefaultOptions()
	opt.NumColors = 5
	opt.Saturate = false
	pal := AssemblePalette(RGB{240, 240, 240}, []RGB{{10, 10, 10}, {200, 0, 0}}, opt)
	if len(pal) != 5 {
		t.Fatalf("palette has %d slots, want 5", len(pal))
	}
	if pal[1] != (RGB{10, 10, 10}) || pal[2] != (RGB{200, 0, 0}) {
		t.Errorf("extracted colors misplaced: %v", pal)
	}
	for i := 3; i < 5; i++ {
		if pal[i] != midGray {
			t.Errorf("slot %d = %v, want mid-gray padding", i, pal[i])
		}
	}
}
