package raster

import (
	"testing"

	"github.com/andbeder/yardmap/internal/device"
	"github.com/andbeder/yardmap/internal/points"
)

func testView() ViewWindow {
	return ViewWindow{XMin: 0, XMax: 10, YMin: 0, YMax: 10, PixelSize: 1}
}

func buildTestGrid(t *testing.T, pts []points.Point) *grid {
	t.Helper()
	dev, err := device.Open(4)
	if err != nil {
		t.Fatalf("device.Open: %v", err)
	}
	t.Cleanup(dev.Close)

	p := project(&points.Cloud{Points: pts}, ProjectionXY)
	g := newGrid(testView())
	if err := g.build(dev, p); err != nil {
		t.Fatalf("grid build: %v", err)
	}
	return g
}

func TestGridDimensions(t *testing.T) {
	g := newGrid(testView())
	if g.w != 11 || g.h != 11 {
		t.Errorf("grid %dx%d, want 11x11", g.w, g.h)
	}
}

func TestGridBinsPoints(t *testing.T) {
	g := buildTestGrid(t, []points.Point{
		{X: 0.5, Y: 0.5}, {X: 0.7, Y: 0.3}, {X: 5.5, Y: 8.5},
	})
	if n := g.at(0, 0).count; n != 2 {
		t.Errorf("bucket (0,0) count = %d, want 2", n)
	}
	if n := g.at(5, 8).count; n != 1 {
		t.Errorf("bucket (5,8) count = %d, want 1", n)
	}
}

func TestGridClampsOutOfWindowPoints(t *testing.T) {
	// Points outside the view window are retained, binned at the edge
	// buckets rather than dropped.
	g := buildTestGrid(t, []points.Point{
		{X: 15, Y: 15}, {X: -3, Y: 2.5},
	})
	if n := g.at(g.w-1, g.h-1).count; n != 1 {
		t.Errorf("far corner bucket count = %d, want 1", n)
	}
	if n := g.at(0, 2).count; n != 1 {
		t.Errorf("left edge bucket count = %d, want 1", n)
	}
}

func TestBucketOverflowCountsPastCapacity(t *testing.T) {
	pts := make([]points.Point, 150)
	for i := range pts {
		pts[i] = points.Point{X: 4.5, Y: 4.5}
	}
	g := buildTestGrid(t, pts)

	b := g.at(4, 4)
	if b.count != 150 {
		t.Errorf("bucket count = %d, want 150 (count keeps rising past capacity)", b.count)
	}
	if got := g.overflow.Load(); got != 50 {
		t.Errorf("overflow = %d, want 50", got)
	}
	// Every stored slot refers to a real point index.
	for s := 0; s < bucketCap; s++ {
		if b.slots[s] >= 150 {
			t.Fatalf("slot %d holds invalid point index %d", s, b.slots[s])
		}
	}
}
