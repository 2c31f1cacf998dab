package chart

import "math"

// DefaultMaxWidth caps the drawing surface when the container reports no
// width of its own.
const DefaultMaxWidth = 520

const minFallbackWidth = 320

// Size carries the layout measurements the browser reports, in CSS pixels.
// Zero means "not measured".
type Size struct {
	Container int
	Parent    int
	Viewport  int
}

// SurfaceWidth picks the drawing surface width. The container's own width
// wins; a collapsed container falls back to its parent capped at maxWidth,
// and then to 40% of the viewport clamped to [320, maxWidth].
func SurfaceWidth(s Size, maxWidth int) int {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if s.Container > 0 {
		return s.Container
	}
	if s.Parent > 0 {
		return min(maxWidth, s.Parent)
	}
	guess := int(math.Round(0.4 * float64(s.Viewport)))
	return min(maxWidth, max(minFallbackWidth, guess))
}
