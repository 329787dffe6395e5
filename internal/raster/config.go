package raster

import (
	"fmt"
	"strings"
)

// Projection selects which two point axes form the raster plane. The third
// axis becomes the depth value used for ground-height comparisons.
type Projection int

const (
	// ProjectionXY maps (x,y) to the raster plane; z is depth.
	ProjectionXY Projection = iota
	// ProjectionXZ maps (x,z) to the raster plane; y is depth.
	ProjectionXZ
	// ProjectionYZ maps (y,z) to the raster plane; x is depth.
	ProjectionYZ
)

// ParseProjection accepts "xy", "xz" or "yz".
func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(s) {
	case "xy":
		return ProjectionXY, nil
	case "xz":
		return ProjectionXZ, nil
	case "yz":
		return ProjectionYZ, nil
	}
	return 0, fmt.Errorf("unknown projection %q (want xy, xz or yz)", s)
}

func (p Projection) String() string {
	switch p {
	case ProjectionXY:
		return "xy"
	case ProjectionXZ:
		return "xz"
	case ProjectionYZ:
		return "yz"
	}
	return fmt.Sprintf("projection(%d)", int(p))
}

// Algorithm selects how the points collected for a pixel are reduced to
// the set that represents ground.
type Algorithm int

const (
	// BottomPercentile keeps roughly the lowest 40% of collected points by
	// depth, discarding the rest as canopy or foliage.
	BottomPercentile Algorithm = iota
	// SimpleAverage keeps every collected point; a plain average.
	SimpleAverage
)

// ParseAlgorithm accepts "bottom_percentile"/"bottom" or
// "simple_average"/"average".
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "bottom_percentile", "bottom":
		return BottomPercentile, nil
	case "simple_average", "average":
		return SimpleAverage, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q (want bottom_percentile or simple_average)", s)
}

func (a Algorithm) String() string {
	switch a {
	case BottomPercentile:
		return "bottom_percentile"
	case SimpleAverage:
		return "simple_average"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Coloring selects how the valid points of a pixel become an RGB value.
type Coloring int

const (
	// TrueColor averages the RGB of the valid points.
	TrueColor Coloring = iota
	// HeightColor maps a depth statistic through a fixed color ramp.
	HeightColor
	// PathColor is a debug channel: green for mostly-ground pixels, red for
	// mixed ground/canopy pixels.
	PathColor
)

// ParseColoring accepts "true_color"/"truecolor"/"true", "height" or "path".
func ParseColoring(s string) (Coloring, error) {
	switch strings.ToLower(s) {
	case "true_color", "truecolor", "true":
		return TrueColor, nil
	case "height":
		return HeightColor, nil
	case "path":
		return PathColor, nil
	}
	return 0, fmt.Errorf("unknown coloring %q (want true_color, height or path)", s)
}

func (c Coloring) String() string {
	switch c {
	case TrueColor:
		return "true_color"
	case HeightColor:
		return "height"
	case PathColor:
		return "path"
	}
	return fmt.Sprintf("coloring(%d)", int(c))
}

// Bounds is a caller-supplied world-space view window on the projected plane.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Config are the caller parameters for one render request.
type Config struct {
	// Projection picks the raster plane; see Projection.
	Projection Projection

	// RotationDegrees rotates the projected points about their centroid
	// before bounds are computed. Zero skips the rotation entirely.
	RotationDegrees float64

	// Bounds, when non-nil, is used verbatim as the view window. Points
	// outside it stay in the dataset and the grid; they are only outside the
	// displayed frame. Nil selects 1st/99th percentile bounds per axis.
	Bounds *Bounds

	// Width and Height are the output raster dimensions in pixels.
	Width, Height int

	// GridResolution is informational only; the actual pixel size is derived
	// from the bounds and output dimensions.
	GridResolution float64

	// HeightWindow is reserved for a host-driven ground-selection variant.
	// Neither in-kernel algorithm reads it.
	HeightWindow float64

	Coloring  Coloring
	Algorithm Algorithm

	// MaxPoints caps the cloud by uniform decimation before rendering.
	// Zero means no cap.
	MaxPoints int
}

// DefaultConfig returns a config with the default output size and modes.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Coloring:  TrueColor,
		Algorithm: BottomPercentile,
	}
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("output size %dx%d: %w", c.Width, c.Height, ErrInvalidBounds)
	}
	if b := c.Bounds; b != nil {
		if b.XMax <= b.XMin || b.YMax <= b.YMin {
			return fmt.Errorf("custom bounds [%g,%g]x[%g,%g]: %w",
				b.XMin, b.XMax, b.YMin, b.YMax, ErrInvalidBounds)
		}
	}
	return nil
}
