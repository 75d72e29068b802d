// Command vicfit registers a closed B-spline curve against an image using
// virtual image correlation and reports the fitted contour.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"vic-fitter/internal/bspline"
	"vic-fitter/internal/config"
	"vic-fitter/internal/interp"
	"vic-fitter/internal/version"
	"vic-fitter/internal/vic"
	"vic-fitter/pkg/geometry"
)

func main() {
	configPath := flag.String("config", "", "Path to run configuration (INI)")
	example := flag.Bool("example", false, "Print an example configuration and exit")
	verbose := flag.Bool("v", false, "Print progress every iteration instead of every 5th")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *example {
		fmt.Println(config.ExampleFile)
		return
	}
	if *configPath == "" {
		fmt.Println("Usage: vicfit -config <run.cfg> [-v]")
		fmt.Println("       vicfit -example")
		os.Exit(1)
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	img, err := interp.Load(cfg.Fit.Image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Width(), img.Height())

	center := geometry.NewPoint2D(cfg.Curve.CenterX, cfg.Curve.CenterY)
	basis, ctrl, err := bspline.ClosedCircle(cfg.Curve.Degree, cfg.Curve.NumCtrl, center, cfg.Curve.Radius)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid initial curve: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Initial curve: degree %d, %d control points, radius %.1f around (%.1f, %.1f)\n",
		cfg.Curve.Degree, cfg.Curve.NumCtrl, cfg.Curve.Radius, center.X, center.Y)

	solver := vic.NewSolver(basis, ctrl, img, cfg.Profile(), cfg.Params())
	solver.Progress = func(iteration int, cost, relStep float64) {
		if *verbose || iteration%5 == 0 {
			fmt.Printf("  iter %3d  cost %.6g  step %.3g\n", iteration, cost, relStep)
		}
	}

	result, err := solver.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Solve failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Finished after %d iterations: %s (step %.3g)\n",
		result.Iterations, result.Status, result.RelStep)

	pts, err := solver.FittedCurve(result.U, 4*cfg.Fit.NumParam)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to evaluate fitted curve: %v\n", err)
		os.Exit(1)
	}
	c := geometry.Centroid(pts)
	fmt.Printf("Fitted contour: centroid (%.2f, %.2f), mean radius %.2f\n",
		c.X, c.Y, geometry.MeanRadius(pts))

	if cfg.Fit.Output != "" {
		if err := writeCSV(cfg.Fit.Output, pts); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", cfg.Fit.Output, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d fitted points to %s\n", len(pts), cfg.Fit.Output)
	}
}

func writeCSV(path string, pts []geometry.Point2D) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{
			strconv.FormatFloat(p.X, 'f', 4, 64),
			strconv.FormatFloat(p.Y, 'f', 4, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
