package raster

import "errors"

// Fatal conditions for a render request. A failed call produces no image;
// there is no partial output or retry mode. Capacity overflows inside the
// kernels (bucket slots, per-pixel candidate lists) are deliberately NOT
// errors: they are accepted data loss under extreme local density and are
// reported only through Stats.
var (
	// ErrEmptyDataset means the caller supplied zero points.
	ErrEmptyDataset = errors.New("empty point dataset")

	// ErrInvalidBounds means the view window is degenerate (max <= min on
	// either axis), whether caller-supplied or computed.
	ErrInvalidBounds = errors.New("invalid view bounds")
)
