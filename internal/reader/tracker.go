package reader

import "sync"

// FrameScheduler runs a callback before the next paint.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Viewport reports the current layout.
type Viewport interface {
	Geometry() Geometry
}

// Tracker keeps the progress value current while content is mounted.
// Scroll and resize notifications are coalesced into at most one
// recomputation per frame.
type Tracker struct {
	frames   FrameScheduler
	viewport Viewport
	onChange func(float64)

	mu       sync.Mutex
	mounted  bool
	ticking  bool
	cancel   func()
	progress float64
}

func NewTracker(frames FrameScheduler, viewport Viewport, onChange func(float64)) *Tracker {
	return &Tracker{frames: frames, viewport: viewport, onChange: onChange}
}

// Mount starts tracking and computes the initial value immediately.
func (t *Tracker) Mount() {
	t.mu.Lock()
	t.mounted = true
	t.mu.Unlock()
	t.recompute()
}

// Unmount stops tracking and drops any scheduled frame.
func (t *Tracker) Unmount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mounted = false
	t.ticking = false
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Tracker) OnScroll() { t.schedule() }
func (t *Tracker) OnResize() { t.schedule() }

// Progress returns the last computed value.
func (t *Tracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *Tracker) schedule() {
	t.mu.Lock()
	if !t.mounted || t.ticking {
		t.mu.Unlock()
		return
	}
	t.ticking = true
	t.mu.Unlock()

	cancel := t.frames.RequestFrame(func() {
		t.mu.Lock()
		t.ticking = false
		t.cancel = nil
		t.mu.Unlock()
		t.recompute()
	})

	t.mu.Lock()
	if t.ticking {
		t.cancel = cancel
	}
	t.mu.Unlock()
}

func (t *Tracker) recompute() {
	t.mu.Lock()
	if !t.mounted {
		t.mu.Unlock()
		return
	}
	p := Progress(t.viewport.Geometry())
	changed := p != t.progress
	t.progress = p
	t.mu.Unlock()

	if changed && t.onChange != nil {
		t.onChange(p)
	}
}

// MenuTrack mirrors the rendered height of the TOC list so the progress
// indicator's track matches it.
type MenuTrack struct {
	measure func() float64

	mu     sync.Mutex
	height float64
}

func NewMenuTrack(measure func() float64) *MenuTrack {
	m := &MenuTrack{measure: measure}
	m.OnResize()
	return m
}

// OnResize is the resize observation callback for the list element.
func (m *MenuTrack) OnResize() {
	h := m.measure()
	m.mu.Lock()
	m.height = h
	m.mu.Unlock()
}

func (m *MenuTrack) Height() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height
}

// IndicatorHeight is the filled part of the track for a progress value.
func (m *MenuTrack) IndicatorHeight(progress float64) float64 {
	return m.Height() * min(1, max(0, progress))
}
