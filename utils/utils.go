// Package utils provides the image-file collaborators around the core
// pipeline: decoding raster files into pixel buffers, expanding index
// buffers back to RGB, and writing indexed PNG output.
package utils

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	noteshrink "github.com/lokchonmou/pdf-noteshrink"
)

// ReadImage decodes a PNG, JPEG, TIFF or BMP file.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// ToPixelBuffer flattens an image into the row-major RGB layout the core
// pipeline consumes. Alpha is dropped.
func ToPixelBuffer(img image.Image) noteshrink.PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := noteshrink.PixelBuffer{W: w, H: h, Pix: make([]byte, w*h*3)}
	off := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf.Pix[off] = uint8(r >> 8)
			buf.Pix[off+1] = uint8(g >> 8)
			buf.Pix[off+2] = uint8(b >> 8)
			off += 3
		}
	}
	return buf
}

// FromPixelBuffer expands a pixel buffer back into an opaque RGBA image.
func FromPixelBuffer(buf noteshrink.PixelBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, buf.W, buf.H))
	for i := 0; i < buf.NumPixels(); i++ {
		off := i * 3
		img.Pix[i*4] = buf.Pix[off]
		img.Pix[i*4+1] = buf.Pix[off+1]
		img.Pix[i*4+2] = buf.Pix[off+2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// RenderLabels expands an index buffer through its palette into an opaque
// RGBA image. The mapping index -> palette[index] is exact and lossless.
func RenderLabels(res *noteshrink.Result) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, res.W, res.H))
	for i, l := range res.Labels {
		c := res.Palette[l]
		img.Pix[i*4] = c[0]
		img.Pix[i*4+1] = c[1]
		img.Pix[i*4+2] = c[2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// ColorModel converts a palette to the standard library's color.Palette.
func ColorModel(pal noteshrink.Palette) color.Palette {
	out := make(color.Palette, len(pal))
	for i, c := range pal {
		out[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
	}
	return out
}

// SaveIndexedPNG writes the result as a paletted PNG, preserving the index
// buffer directly as the image's pixel data.
func SaveIndexedPNG(path string, res *noteshrink.Result) error {
	img := image.NewPaletted(image.Rect(0, 0, res.W, res.H), ColorModel(res.Palette))
	copy(img.Pix, res.Labels)
	return SaveImage(img, path)
}

// SaveImage writes any image as PNG.
func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// SavePalette writes a horizontal swatch strip of the palette, one square
// tile per color.
func SavePalette(pal noteshrink.Palette, tileSize int, filename string) error {
	if len(pal) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * len(pal)
	h := tileSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range pal {
		x0 := i * tileSize
		for y := 0; y < h; y++ {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
			}
		}
	}
	return SaveImage(img, filename)
}
