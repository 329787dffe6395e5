// Package points holds the in-memory point cloud model consumed by the
// rasterizer, plus ASC file I/O and decimation helpers.
package points

// Point is a single reconstructed position. Positions are float32 because
// photogrammetry clouds run to tens of millions of points and the extra
// precision of float64 buys nothing at yard scale.
type Point struct {
	X, Y, Z float32
}

// Color carries per-point RGB. Values may be on a 0-255 or 0-1 scale and the
// two scales can be mixed within one cloud; consumers must normalize
// value-by-value, not per cloud.
type Color struct {
	R, G, B float32
}

// Cloud is an immutable set of points with optional aligned colors.
// Colors is either nil or exactly len(Points).
type Cloud struct {
	Points []Point
	Colors []Color
}

// Size returns the number of points.
func (c *Cloud) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Points)
}

// HasColor reports whether the cloud carries a color per point.
func (c *Cloud) HasColor() bool {
	return c != nil && c.Colors != nil && len(c.Colors) == len(c.Points)
}

// Decimate returns a cloud capped at max points by uniform stride selection,
// preserving point order. A max of zero or a cloud already under the cap
// returns the receiver unchanged (no copy).
func (c *Cloud) Decimate(max int) *Cloud {
	if c == nil || max <= 0 || len(c.Points) <= max {
		return c
	}
	stride := float64(len(c.Points)) / float64(max)
	out := &Cloud{Points: make([]Point, 0, max)}
	if c.HasColor() {
		out.Colors = make([]Color, 0, max)
	}
	for i := 0; i < max; i++ {
		src := int(float64(i) * stride)
		if src >= len(c.Points) {
			src = len(c.Points) - 1
		}
		out.Points = append(out.Points, c.Points[src])
		if out.Colors != nil {
			out.Colors = append(out.Colors, c.Colors[src])
		}
	}
	return out
}
