package raster

// The two height ramps are deliberately different per algorithm and are
// reproduced exactly for visual parity with existing yard maps: the
// bottom-percentile path maps the max valid depth through a 4-segment
// blue-cyan-green-yellow-red gradient, the simple-average path maps the mean
// depth through a 3-segment blue-green-brown-white gradient.

type rgb struct{ r, g, b uint8 }

// Fixed pixel colors.
var (
	noDataBottomPercentile = rgb{50, 50, 50}
	noDataSimpleAverage    = rgb{128, 128, 128}
	pathGround             = rgb{0, 255, 0}
	pathMixed              = rgb{255, 0, 0}
)

func lerpRGB(a, b rgb, t float64) rgb {
	return rgb{
		r: uint8(float64(a.r) + (float64(b.r)-float64(a.r))*t),
		g: uint8(float64(a.g) + (float64(b.g)-float64(a.g))*t),
		b: uint8(float64(a.b) + (float64(b.b)-float64(a.b))*t),
	}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// heightRamp4 is the bottom-percentile height gradient:
// blue -> cyan -> green -> yellow -> red over four equal segments.
func heightRamp4(t float64) rgb {
	t = clamp01(t)
	switch {
	case t < 0.25:
		return lerpRGB(rgb{0, 0, 255}, rgb{0, 255, 255}, t/0.25)
	case t < 0.5:
		return lerpRGB(rgb{0, 255, 255}, rgb{0, 255, 0}, (t-0.25)/0.25)
	case t < 0.75:
		return lerpRGB(rgb{0, 255, 0}, rgb{255, 255, 0}, (t-0.5)/0.25)
	default:
		return lerpRGB(rgb{255, 255, 0}, rgb{255, 0, 0}, (t-0.75)/0.25)
	}
}

// heightRamp3 is the simple-average height gradient:
// blue -> green -> brown -> white over three equal segments.
func heightRamp3(t float64) rgb {
	t = clamp01(t)
	const third = 1.0 / 3.0
	switch {
	case t < third:
		return lerpRGB(rgb{0, 0, 255}, rgb{0, 255, 0}, t/third)
	case t < 2*third:
		return lerpRGB(rgb{0, 255, 0}, rgb{139, 69, 19}, (t-third)/third)
	default:
		return lerpRGB(rgb{139, 69, 19}, rgb{255, 255, 255}, (t-2*third)/third)
	}
}
