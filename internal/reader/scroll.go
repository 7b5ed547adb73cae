package reader

// Page is the document surface a click-to-scroll acts on.
type Page interface {
	// ElementTop returns the viewport-relative top of the element with id.
	ElementTop(id string) (float64, bool)
	ScrollY() float64
	SmoothScrollTo(y float64)
	// ReplaceFragment updates the URL fragment without navigating.
	ReplaceFragment(id string)
}

// Scroller handles TOC entry clicks.
type Scroller struct {
	page   Page
	frames FrameScheduler
}

func NewScroller(page Page, frames FrameScheduler) *Scroller {
	return &Scroller{page: page, frames: frames}
}

// ScrollToAnchor scrolls to the heading with id, clearing the header.
// A missing target is retried once on the next frame, then dropped.
func (s *Scroller) ScrollToAnchor(id string) {
	if s.scroll(id) {
		return
	}
	s.frames.RequestFrame(func() {
		s.scroll(id)
	})
}

func (s *Scroller) scroll(id string) bool {
	top, ok := s.page.ElementTop(id)
	if !ok {
		return false
	}
	s.page.SmoothScrollTo(top + s.page.ScrollY() - HeaderOffset)
	s.page.ReplaceFragment(id)
	return true
}
