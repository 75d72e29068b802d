// Package config reads correlation run configurations from gcfg INI
// files.
package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"vic-fitter/internal/vic"
)

// ExampleFile documents the configuration format.
const ExampleFile = `[Fit]

# Path to the image to fit against (PNG, JPEG, or TIFF).
Image = disk.png

# Half-width of the normal search band, in pixels.
HalfWidth = 20

# Sampling grid: samples along the curve and across the band.
NumParam = 200
NumOffset = 30

# Regularization weight of the thin-beam stiffness term.
Rho = 10000

# Relative-step convergence tolerance and iteration cap.
Tol = 0.005
MaxIter = 100

# Virtual image: background and foreground gray levels (0-255).
Background = 10
Foreground = 210

# Optional CSV file for the fitted curve points.
# Output = fitted.csv

[Curve]

# Initial curve: a closed circle approximated by a clamped B-spline.
Degree = 3
NumCtrl = 16
CenterX = 128
CenterY = 128
Radius = 90`

// Config is the on-disk run configuration.
type Config struct {
	Fit struct {
		Image      string
		HalfWidth  float64
		NumParam   int
		NumOffset  int
		Rho        float64
		Tol        float64
		MaxIter    int
		Background float64
		Foreground float64
		Output     string
	}
	Curve struct {
		Degree  int
		NumCtrl int
		CenterX float64
		CenterY float64
		Radius  float64
	}
}

// Read loads and validates a configuration file.
func Read(path string) (*Config, error) {
	cfg := defaults()
	if err := gcfg.ReadFileInto(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

// ReadString parses a configuration from a string, mainly for tests.
func ReadString(s string) (*Config, error) {
	cfg := defaults()
	if err := gcfg.ReadStringInto(cfg, s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func defaults() *Config {
	cfg := &Config{}
	p := vic.DefaultParams()
	cfg.Fit.HalfWidth = p.HalfWidth
	cfg.Fit.NumParam = p.NumParam
	cfg.Fit.NumOffset = p.NumOffset
	cfg.Fit.Rho = p.Rho
	cfg.Fit.Tol = p.Tol
	cfg.Fit.MaxIter = p.MaxIter
	cfg.Fit.Background = 10
	cfg.Fit.Foreground = 210
	cfg.Curve.Degree = 3
	cfg.Curve.NumCtrl = 16
	return cfg
}

func (c *Config) validate() error {
	if c.Fit.Image == "" {
		return fmt.Errorf("Fit.Image is required")
	}
	if c.Fit.HalfWidth <= 0 {
		return fmt.Errorf("Fit.HalfWidth must be positive, got %g", c.Fit.HalfWidth)
	}
	if c.Fit.NumParam < 2 || c.Fit.NumOffset < 2 {
		return fmt.Errorf("sampling grid too small: %dx%d", c.Fit.NumParam, c.Fit.NumOffset)
	}
	if c.Curve.Radius <= 0 {
		return fmt.Errorf("Curve.Radius must be positive, got %g", c.Curve.Radius)
	}
	if c.Curve.NumCtrl < c.Curve.Degree+2 {
		return fmt.Errorf("Curve.NumCtrl must be at least Degree+2, got %d", c.Curve.NumCtrl)
	}
	return nil
}

// Params converts the configuration to solver parameters.
func (c *Config) Params() vic.Params {
	return vic.DefaultParams().
		WithBand(c.Fit.HalfWidth).
		WithGrid(c.Fit.NumParam, c.Fit.NumOffset).
		WithRegularization(c.Fit.Rho).
		WithStopping(c.Fit.Tol, c.Fit.MaxIter)
}

// Profile builds the virtual image profile from the configured gray
// levels.
func (c *Config) Profile() vic.Profile {
	return vic.StepProfile{Background: c.Fit.Background, Foreground: c.Fit.Foreground}
}
