package raster

import (
	"math"
	"sync/atomic"

	"github.com/andbeder/yardmap/internal/device"
)

// bucketCap is the fixed slot capacity of one grid bucket. The parallel
// execution model disallows per-unit allocation, so the slot array is fixed
// size; indices past the capacity are counted but not stored. Which points
// win the slots of an overflowing bucket depends on scheduling order — the
// one non-deterministic aspect of the pipeline.
const bucketCap = 100

// bucket is one cell of the spatial hash grid. count is only ever touched
// with atomics during the build; it may exceed bucketCap.
type bucket struct {
	count uint32
	slots [bucketCap]uint32
}

// grid is a uniform 2D hash of point indices. Cell side length equals one
// output pixel's world footprint, so the raster kernel can enumerate a small,
// bounded set of cells per pixel.
type grid struct {
	w, h       int
	cell       float64
	xMin, yMin float64
	buckets    []bucket

	// overflow counts slot writes lost to full buckets.
	overflow atomic.Uint64
}

func newGrid(view ViewWindow) *grid {
	w := int(math.Ceil((view.XMax-view.XMin)/view.PixelSize)) + 1
	h := int(math.Ceil((view.YMax-view.YMin)/view.PixelSize)) + 1
	return &grid{
		w:       w,
		h:       h,
		cell:    view.PixelSize,
		xMin:    view.XMin,
		yMin:    view.YMin,
		buckets: make([]bucket, w*h),
	}
}

// cellIndex maps a world coordinate pair to bucket coordinates, clamped to
// the grid so points slightly outside the view window bin at the edge rather
// than being dropped.
func (g *grid) cellIndex(u, v float64) (int, int) {
	gx := int(math.Floor((u - g.xMin) / g.cell))
	gy := int(math.Floor((v - g.yMin) / g.cell))
	if gx < 0 {
		gx = 0
	} else if gx >= g.w {
		gx = g.w - 1
	}
	if gy < 0 {
		gy = 0
	} else if gy >= g.h {
		gy = g.h - 1
	}
	return gx, gy
}

func (g *grid) at(gx, gy int) *bucket {
	return &g.buckets[gy*g.w+gx]
}

// build scatters every point into its bucket, one unit of work per point.
// The atomic increment is the only cross-point synchronization; a slot is
// written only when the pre-increment count is still under capacity.
func (g *grid) build(dev *device.Device, p *projected) error {
	return dev.Launch(len(p.u), func(i int) {
		gx, gy := g.cellIndex(float64(p.u[i]), float64(p.v[i]))
		b := g.at(gx, gy)
		pre := atomic.AddUint32(&b.count, 1) - 1
		if pre < bucketCap {
			b.slots[pre] = uint32(i)
		} else {
			g.overflow.Add(1)
		}
	})
}
