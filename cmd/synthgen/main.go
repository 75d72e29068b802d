// Command synthgen renders synthetic disk images with a known contour for
// correlation experiments: a bright disk on a dark background, with a hard
// step edge or a linear ramp of configurable width.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

func main() {
	out := flag.String("out", "disk.png", "Output PNG path")
	size := flag.Int("size", 256, "Image size in pixels (square)")
	cx := flag.Float64("cx", 0, "Disk center x (default: image center)")
	cy := flag.Float64("cy", 0, "Disk center y (default: image center)")
	radius := flag.Float64("radius", 80, "Disk radius in pixels")
	bg := flag.Float64("bg", 10, "Background gray level")
	fg := flag.Float64("fg", 210, "Foreground gray level")
	ramp := flag.Float64("ramp", 0, "Edge transition width in pixels (0 = hard step)")
	flag.Parse()

	if *cx == 0 {
		*cx = float64(*size) / 2
	}
	if *cy == 0 {
		*cy = float64(*size) / 2
	}

	bgv, fgv, rw := *bg, *fg, *ramp
	img := image.NewGray(image.Rect(0, 0, *size, *size))
	for y := 0; y < *size; y++ {
		for x := 0; x < *size; x++ {
			// Signed distance from the edge, positive inside.
			px, py := float64(x)+0.5, float64(y)+0.5
			d := *radius - math.Hypot(px-*cx, py-*cy)

			var v float64
			switch {
			case rw <= 0:
				v = bgv
				if d >= 0 {
					v = fgv
				}
			case d <= -rw/2:
				v = bgv
			case d >= rw/2:
				v = fgv
			default:
				v = bgv + (d/rw+0.5)*(fgv-bgv)
			}
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(v))})
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d disk (radius %.1f, edge %s) to %s\n",
		*size, *size, *radius, edgeDesc(*ramp), *out)
}

func edgeDesc(ramp float64) string {
	if ramp <= 0 {
		return "hard step"
	}
	return fmt.Sprintf("%.1fpx ramp", ramp)
}
