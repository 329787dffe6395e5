package raster

import (
	"slices"
	"sync/atomic"

	"github.com/andbeder/yardmap/internal/points"
)

const (
	// maxCandidates bounds the per-pixel candidate list. Like the bucket
	// slots, this is a fixed-size kernel array; excess candidates are
	// silently dropped.
	maxCandidates = 500

	// maxExpand is the furthest a pixel's search rectangle grows, in pixel
	// widths, before the pixel is declared empty.
	maxExpand = 5

	// groundFraction is the share of collected points kept as ground by the
	// bottom-percentile algorithm.
	groundFraction = 0.4

	// pathGroundRatio is the valid/collected ratio at or above which the path
	// channel paints a pixel as ground.
	pathGroundRatio = 0.7
)

// rasterPass is the read-only state shared by every pixel unit of one raster
// kernel launch, plus the output buffer. Each unit writes only its own three
// bytes of pix; the counters are atomics.
type rasterPass struct {
	view   ViewWindow
	grid   *grid
	pts    *projected
	colors []points.Color

	alg Algorithm
	col Coloring

	width, height int
	pix           []uint8

	depthMin, depthRange float64

	emptyPixels       atomic.Uint64
	expandedPixels    atomic.Uint64
	candidateOverflow atomic.Uint64
}

func newRasterPass(view ViewWindow, g *grid, p *projected, colors []points.Color, cfg *Config) *rasterPass {
	depthRange := p.depthMax - p.depthMin
	if depthRange <= 0 {
		depthRange = 1
	}
	return &rasterPass{
		view:       view,
		grid:       g,
		pts:        p,
		colors:     colors,
		alg:        cfg.Algorithm,
		col:        cfg.Coloring,
		width:      cfg.Width,
		height:     cfg.Height,
		pix:        make([]uint8, cfg.Width*cfg.Height*3),
		depthMin:   p.depthMin,
		depthRange: depthRange,
	}
}

// collect gathers point indices from every grid bucket overlapping the given
// world rectangle, keeping only points whose exact projected position lies
// inside it. The exact re-check matters because bucket membership was
// computed from clamped coordinates. Returns the number of candidates stored
// in cand, capped at maxCandidates.
func (rp *rasterPass) collect(rx0, rx1, ry0, ry1 float64, cand *[maxCandidates]uint32) int {
	g := rp.grid
	gx0, gy0 := g.cellIndex(rx0, ry0)
	gx1, gy1 := g.cellIndex(rx1, ry1)

	n := 0
	for gy := gy0; gy <= gy1; gy++ {
		for gx := gx0; gx <= gx1; gx++ {
			b := g.at(gx, gy)
			stored := b.count
			if stored > bucketCap {
				stored = bucketCap
			}
			for s := uint32(0); s < stored; s++ {
				pi := b.slots[s]
				u := float64(rp.pts.u[pi])
				v := float64(rp.pts.v[pi])
				if u < rx0 || u >= rx1 || v < ry0 || v >= ry1 {
					continue
				}
				if n == maxCandidates {
					rp.candidateOverflow.Add(1)
					return n
				}
				cand[n] = pi
				n++
			}
		}
	}
	return n
}

// kernel renders one output pixel. Image row 0 maps to the view's maximum Y
// (vertical flip relative to world coordinates).
func (rp *rasterPass) kernel(idx int) {
	row := idx / rp.width
	col := idx % rp.width
	ps := rp.view.PixelSize

	px0 := rp.view.XMin + float64(col)*ps
	px1 := px0 + ps
	py1 := rp.view.YMax - float64(row)*ps
	py0 := py1 - ps

	// Progressive neighbor expansion: an empty pixel re-searches a rectangle
	// symmetrically enlarged by 1..maxExpand pixel widths, trading locality
	// for hole-free output in sparse regions.
	var cand [maxCandidates]uint32
	n := 0
	for e := 0; e <= maxExpand; e++ {
		grow := float64(e) * ps
		n = rp.collect(px0-grow, px1+grow, py0-grow, py1+grow, &cand)
		if n > 0 {
			if e > 0 {
				rp.expandedPixels.Add(1)
			}
			break
		}
	}
	if n == 0 {
		rp.emptyPixels.Add(1)
		if rp.alg == SimpleAverage {
			rp.write(idx, noDataSimpleAverage)
		} else {
			rp.write(idx, noDataBottomPercentile)
		}
		return
	}

	// Ground selection. Under bottom_percentile the threshold is the k-th
	// smallest collected depth with k = max(1, floor(0.4*n)); under
	// simple_average every collected point is valid.
	var depths [maxCandidates]float32
	for i := 0; i < n; i++ {
		depths[i] = rp.pts.depth[cand[i]]
	}

	threshold := float32(0)
	if rp.alg == BottomPercentile {
		var sorted [maxCandidates]float32
		copy(sorted[:n], depths[:n])
		slices.Sort(sorted[:n])
		k := int(groundFraction * float64(n))
		if k < 1 {
			k = 1
		}
		threshold = sorted[k-1]
	}

	var (
		kept     int
		sumR     float64
		sumG     float64
		sumB     float64
		sumDepth float64
		maxDepth float32
		haveMax  bool
	)
	for i := 0; i < n; i++ {
		if rp.alg == BottomPercentile && depths[i] > threshold {
			continue
		}
		kept++
		sumDepth += float64(depths[i])
		if !haveMax || depths[i] > maxDepth {
			maxDepth = depths[i]
			haveMax = true
		}
		if rp.colors != nil {
			c := rp.colors[cand[i]]
			sumR += normalizeChannel(c.R)
			sumG += normalizeChannel(c.G)
			sumB += normalizeChannel(c.B)
		}
	}

	rp.write(idx, rp.shade(n, kept, sumR, sumG, sumB, sumDepth, maxDepth))
}

// shade turns the aggregates of a pixel's valid points into its color.
func (rp *rasterPass) shade(collected, kept int, sumR, sumG, sumB, sumDepth float64, maxDepth float32) rgb {
	switch rp.col {
	case HeightColor:
		if rp.alg == SimpleAverage {
			mean := sumDepth / float64(kept)
			return heightRamp3((mean - rp.depthMin) / rp.depthRange)
		}
		return heightRamp4((float64(maxDepth) - rp.depthMin) / rp.depthRange)

	case PathColor:
		if rp.alg == SimpleAverage {
			return pathGround
		}
		if float64(kept)/float64(collected) >= pathGroundRatio {
			return pathGround
		}
		return pathMixed

	default: // TrueColor
		inv := 1 / float64(kept)
		return rgb{
			r: clampByte(sumR * inv),
			g: clampByte(sumG * inv),
			b: clampByte(sumB * inv),
		}
	}
}

func (rp *rasterPass) write(idx int, c rgb) {
	off := idx * 3
	rp.pix[off] = c.r
	rp.pix[off+1] = c.g
	rp.pix[off+2] = c.b
}

// normalizeChannel lifts a 0-1 scale color value onto the 0-255 scale. Source
// clouds can mix both scales, so the test is per value, never per cloud.
func normalizeChannel(v float32) float64 {
	if v <= 1.0 {
		return float64(v) * 255
	}
	return float64(v)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
