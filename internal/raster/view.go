package raster

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/andbeder/yardmap/internal/points"
)

// Default percentile window that clips extreme photogrammetry outliers from
// the default view without discarding any data.
const (
	lowerBoundQuantile = 0.01
	upperBoundQuantile = 0.99
)

// ViewWindow is the world-space rectangle mapped onto the output raster.
// PixelSize is uniform on both axes; the window exactly covers
// width x height pixels of that size.
type ViewWindow struct {
	XMin, XMax float64
	YMin, YMax float64
	PixelSize  float64

	RotationDegrees float64
	Projection      Projection
}

// projected holds the 2D projection of a cloud plus per-point depth, the
// working representation every later stage consumes. u/v/depth are aligned
// with the source cloud (and its colors).
type projected struct {
	u, v  []float32
	depth []float32

	// Global depth range, used to normalize height coloring.
	depthMin, depthMax float64
}

// project selects the two raster-plane axes and the depth axis per the
// projection. Depth min/max are collected in the same pass.
func project(cloud *points.Cloud, axis Projection) *projected {
	n := len(cloud.Points)
	p := &projected{
		u:        make([]float32, n),
		v:        make([]float32, n),
		depth:    make([]float32, n),
		depthMin: math.Inf(1),
		depthMax: math.Inf(-1),
	}
	for i, pt := range cloud.Points {
		var u, v, d float32
		switch axis {
		case ProjectionXZ:
			u, v, d = pt.X, pt.Z, pt.Y
		case ProjectionYZ:
			u, v, d = pt.Y, pt.Z, pt.X
		default: // ProjectionXY
			u, v, d = pt.X, pt.Y, pt.Z
		}
		p.u[i], p.v[i], p.depth[i] = u, v, d
		if fd := float64(d); fd < p.depthMin {
			p.depthMin = fd
		}
		if fd := float64(d); fd > p.depthMax {
			p.depthMax = fd
		}
	}
	return p
}

// rotate turns every projected coordinate about the centroid of all points by
// the given angle. Callers skip the call entirely for zero degrees so that a
// zero rotation stays bit-identical to no rotation.
func (p *projected) rotate(degrees float64) {
	var cx, cy float64
	n := float64(len(p.u))
	for i := range p.u {
		cx += float64(p.u[i])
		cy += float64(p.v[i])
	}
	cx /= n
	cy /= n

	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	for i := range p.u {
		du := float64(p.u[i]) - cx
		dv := float64(p.v[i]) - cy
		p.u[i] = float32(cx + du*cos - dv*sin)
		p.v[i] = float32(cy + du*sin + dv*cos)
	}
}

// percentileBounds computes the default view window from the 1st/99th
// percentile of each projected axis.
func percentileBounds(p *projected) Bounds {
	return Bounds{
		XMin: quantile(p.u, lowerBoundQuantile),
		XMax: quantile(p.u, upperBoundQuantile),
		YMin: quantile(p.v, lowerBoundQuantile),
		YMax: quantile(p.v, upperBoundQuantile),
	}
}

func quantile(vals []float32, q float64) float64 {
	sorted := make([]float64, len(vals))
	for i, v := range vals {
		sorted[i] = float64(v)
	}
	slices.Sort(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// resolveView turns bounds plus the requested raster size into a concrete
// window with square pixels. The shorter world dimension is padded
// symmetrically to match the requested aspect ratio; the longer dimension is
// never cropped.
func resolveView(b Bounds, cfg *Config) (ViewWindow, error) {
	worldW := b.XMax - b.XMin
	worldH := b.YMax - b.YMin
	if worldW <= 0 || worldH <= 0 {
		return ViewWindow{}, fmt.Errorf("view window %gx%g: %w", worldW, worldH, ErrInvalidBounds)
	}

	target := float64(cfg.Width) / float64(cfg.Height)
	if worldW/worldH > target {
		// World is wider than the raster: pad the vertical dimension.
		newH := worldW / target
		pad := (newH - worldH) / 2
		b.YMin -= pad
		b.YMax += pad
	} else {
		newW := worldH * target
		pad := (newW - worldW) / 2
		b.XMin -= pad
		b.XMax += pad
	}

	return ViewWindow{
		XMin:            b.XMin,
		XMax:            b.XMax,
		YMin:            b.YMin,
		YMax:            b.YMax,
		PixelSize:       (b.XMax - b.XMin) / float64(cfg.Width),
		RotationDegrees: cfg.RotationDegrees,
		Projection:      cfg.Projection,
	}, nil
}
