// Package interp provides grayscale raster images with sub-pixel bicubic
// interpolation and analytic intensity gradients. Pixel (i, j) covers the
// unit cell centered at (i+0.5, j+0.5); the valid interpolation domain is
// [0, width] x [0, height].
package interp

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

// Raster is a grayscale image with float64 pixel intensities.
type Raster struct {
	width, height int
	pix           []float64 // row-major, pix[y*width+x]
}

// NewRaster creates an empty raster of the given size.
func NewRaster(width, height int) *Raster {
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]float64, width*height),
	}
}

// FromImage converts any image to a grayscale raster using the standard
// luminance weights, with intensities on the 0-255 scale.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	r := NewRaster(bounds.Dx(), bounds.Dy())
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			cr, cg, cb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(cr) + 0.587*float64(cg) + 0.114*float64(cb)
			r.pix[y*r.width+x] = lum / 257.0
		}
	}
	return r
}

// Load reads an image file (PNG, JPEG, or TIFF) and converts it to a
// grayscale raster.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// Width returns the image width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the image height in pixels.
func (r *Raster) Height() int { return r.height }

// Set assigns the intensity of pixel (x, y).
func (r *Raster) Set(x, y int, v float64) {
	r.pix[y*r.width+x] = v
}

// at reads pixel (x, y) with indices clamped to the image frame, so the
// bicubic stencil stays valid up to the domain boundary.
func (r *Raster) at(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= r.width {
		x = r.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= r.height {
		y = r.height - 1
	}
	return r.pix[y*r.width+x]
}
