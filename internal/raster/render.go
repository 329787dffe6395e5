// Package raster renders a reconstructed 3D point cloud into a fixed
// resolution top-down "yard map" image: points are projected onto a plane,
// scattered into a spatial hash grid, and aggregated per output pixel by a
// data-parallel kernel, with a ground-selection step separating terrain from
// canopy.
package raster

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/andbeder/yardmap/internal/device"
	"github.com/andbeder/yardmap/internal/points"
)

// Logf is the package diagnostic logger, log.Printf by default. Tests mute
// it through SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger; nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Stats are the per-request render counters. Overflow counters record the
// accepted data loss of the fixed-capacity kernel arrays; they never fail a
// render.
type Stats struct {
	Points     int `json:"points"`
	GridWidth  int `json:"grid_width"`
	GridHeight int `json:"grid_height"`

	BucketOverflow    uint64 `json:"bucket_overflow"`
	CandidateOverflow uint64 `json:"candidate_overflow"`
	EmptyPixels       uint64 `json:"empty_pixels"`
	ExpandedPixels    uint64 `json:"expanded_pixels"`

	ProjectDuration time.Duration `json:"project_ns"`
	GridDuration    time.Duration `json:"grid_ns"`
	RasterDuration  time.Duration `json:"raster_ns"`
}

// Frame is one completed raster: a row-major height x width x 3 RGB buffer.
// Row 0 corresponds to the view window's maximum Y. The buffer is never
// mutated after the render returns.
type Frame struct {
	Width, Height int
	Pix           []uint8

	View  ViewWindow
	Stats Stats
}

// At returns the RGB value of the pixel at (row, col).
func (f *Frame) At(row, col int) (r, g, b uint8) {
	off := (row*f.Width + col) * 3
	return f.Pix[off], f.Pix[off+1], f.Pix[off+2]
}

// RGBA copies the frame into an image.RGBA for the caller's encoder. The
// engine itself never encodes image files.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i := 0; i < f.Width*f.Height; i++ {
		img.Pix[i*4] = f.Pix[i*3]
		img.Pix[i*4+1] = f.Pix[i*3+1]
		img.Pix[i*4+2] = f.Pix[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// Renderer runs render requests on a compute device. It holds no per-request
// state; every request builds and discards its own view, grid and frame.
type Renderer struct {
	dev *device.Device
}

// New returns a renderer bound to the given device.
func New(dev *device.Device) (*Renderer, error) {
	if dev == nil {
		return nil, device.ErrDeviceUnavailable
	}
	return &Renderer{dev: dev}, nil
}

// Render produces a yard map frame from the cloud under the given config.
// A failed call produces no image; there is no partial output. The call
// blocks until the last kernel unit has completed.
func (r *Renderer) Render(cloud *points.Cloud, cfg Config) (*Frame, error) {
	if r == nil || r.dev == nil {
		return nil, device.ErrDeviceUnavailable
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cloud.Size() == 0 {
		return nil, ErrEmptyDataset
	}
	if cfg.Coloring == TrueColor && !cloud.HasColor() {
		return nil, fmt.Errorf("true_color coloring requires per-point colors")
	}

	cloud = cloud.Decimate(cfg.MaxPoints)

	// Stage 1: project onto the raster plane, rotate about the centroid if
	// requested, and resolve the view window. Rotation by zero is skipped
	// entirely so it stays bit-identical to no rotation.
	start := time.Now()
	p := project(cloud, cfg.Projection)
	if cfg.RotationDegrees != 0 {
		p.rotate(cfg.RotationDegrees)
	}
	bounds := percentileBounds(p)
	if cfg.Bounds != nil {
		bounds = *cfg.Bounds
	}
	view, err := resolveView(bounds, &cfg)
	if err != nil {
		return nil, err
	}
	projectDur := time.Since(start)

	// Stage 2: grid build, one kernel unit per point. Launch returns only
	// after every unit finished, the barrier the raster pass depends on.
	start = time.Now()
	g := newGrid(view)
	if err := g.build(r.dev, p); err != nil {
		return nil, fmt.Errorf("grid build: %w", err)
	}
	gridDur := time.Since(start)

	// Stage 3: raster pass, one kernel unit per output pixel. The grid is
	// read-only from here on.
	start = time.Now()
	pass := newRasterPass(view, g, p, cloud.Colors, &cfg)
	if err := r.dev.Launch(cfg.Width*cfg.Height, pass.kernel); err != nil {
		return nil, fmt.Errorf("raster pass: %w", err)
	}
	rasterDur := time.Since(start)

	frame := &Frame{
		Width:  cfg.Width,
		Height: cfg.Height,
		Pix:    pass.pix,
		View:   view,
		Stats: Stats{
			Points:            cloud.Size(),
			GridWidth:         g.w,
			GridHeight:        g.h,
			BucketOverflow:    g.overflow.Load(),
			CandidateOverflow: pass.candidateOverflow.Load(),
			EmptyPixels:       pass.emptyPixels.Load(),
			ExpandedPixels:    pass.expandedPixels.Load(),
			ProjectDuration:   projectDur,
			GridDuration:      gridDur,
			RasterDuration:    rasterDur,
		},
	}

	Logf("rendered %dx%d map from %d points (grid %dx%d, %d empty px, %d expanded px, %d bucket overflows) in %v",
		cfg.Width, cfg.Height, cloud.Size(), g.w, g.h,
		frame.Stats.EmptyPixels, frame.Stats.ExpandedPixels, frame.Stats.BucketOverflow,
		projectDur+gridDur+rasterDur)

	return frame, nil
}
