// Package reader holds the reading-view logic: progress through the content
// region, frame-coalesced recomputation, heading anchor reconciliation and
// click-to-scroll.
package reader

// HeaderOffset is the header clearance, in pixels, above the content region.
const HeaderOffset = 96

// Geometry is a snapshot of the viewport and the content element.
// ContentTop is relative to the viewport, as a bounding rect reports it.
type Geometry struct {
	ScrollY        float64
	ContentTop     float64
	ContentHeight  float64
	ViewportHeight float64
}

// Progress returns how far the reader has scrolled through the content, in [0,1].
// Content shorter than the viewport snaps to 1 once scrolled past its start.
func Progress(g Geometry) float64 {
	top := g.ScrollY + g.ContentTop
	start := top - HeaderOffset
	end := top + g.ContentHeight - g.ViewportHeight

	if end <= start {
		if g.ScrollY > start {
			return 1
		}
		return 0
	}

	p := (g.ScrollY - start) / max(1, end-start)
	return min(1, max(0, p))
}
