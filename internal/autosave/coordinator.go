// Package autosave debounces field edits into persistence calls.
//
// Every field has its own timer. An edit replaces the buffered value at once,
// cancels the field's pending flush and schedules a new one after the field's
// quiescence window. A flush sends the value held when it fires, so only the
// latest edit is ever persisted.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Field string

const (
	FieldContent    Field = "content"
	FieldTitle      Field = "title"
	FieldCategory   Field = "category"
	FieldVisibility Field = "is_public"
)

// DefaultWindows are the quiescence windows per field. Visibility is a
// discrete toggle and flushes immediately.
var DefaultWindows = map[Field]time.Duration{
	FieldContent:    1000 * time.Millisecond,
	FieldTitle:      1000 * time.Millisecond,
	FieldCategory:   800 * time.Millisecond,
	FieldVisibility: 0,
}

var ErrUnknownField = errors.New("unknown autosave field")

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := DefaultWindows[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// FlushFunc persists one field of one document.
type FlushFunc func(ctx context.Context, docID string, field Field, value any) error

// Status backs the saving and last-saved indicators.
type Status struct {
	Saving      bool       `json:"saving"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
}

type Option func(*Coordinator)

func WithClock(c Clock) Option { return func(co *Coordinator) { co.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(co *Coordinator) { co.log = l } }

// WithWindows overrides the windows of the given fields.
func WithWindows(w map[Field]time.Duration) Option {
	return func(co *Coordinator) {
		for f, d := range w {
			co.windows[f] = d
		}
	}
}

// WithObserver is called after every flush attempt.
func WithObserver(fn func(field Field, err error)) Option {
	return func(co *Coordinator) { co.observe = fn }
}

// WithContext sets the context flushes run under. Cancelling it does not
// abort a flush already in flight.
func WithContext(ctx context.Context) Option {
	return func(co *Coordinator) { co.ctx = context.WithoutCancel(ctx) }
}

type Coordinator struct {
	flush   FlushFunc
	clock   Clock
	log     *slog.Logger
	observe func(Field, error)
	ctx     context.Context
	windows map[Field]time.Duration

	mu        sync.Mutex
	docID     string
	values    map[Field]any
	timers    map[Field]Timer
	gens      map[Field]uint64
	inFlight  int
	lastSaved *time.Time
	closed    bool

	// immediate holds zero-window edits in arrival order; one drain
	// goroutine runs at a time.
	immediate []pendingFlush
	draining  bool
}

type pendingFlush struct {
	docID string
	field Field
	value any
}

func New(flush FlushFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		flush:   flush,
		clock:   realClock{},
		log:     slog.Default(),
		ctx:     context.Background(),
		windows: make(map[Field]time.Duration, len(DefaultWindows)),
		values:  make(map[Field]any),
		timers:  make(map[Field]Timer),
		gens:    make(map[Field]uint64),
	}
	for f, d := range DefaultWindows {
		c.windows[f] = d
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve sets the document id. Until it is set every flush is skipped.
func (c *Coordinator) Resolve(docID string) {
	c.mu.Lock()
	c.docID = docID
	c.mu.Unlock()
}

func (c *Coordinator) DocumentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docID
}

// Edit buffers value for field and (re)schedules its flush.
func (c *Coordinator) Edit(field Field, value any) error {
	window, ok := c.windows[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	c.values[field] = value
	if t := c.timers[field]; t != nil {
		t.Stop()
		delete(c.timers, field)
	}
	c.gens[field]++
	gen := c.gens[field]

	if window <= 0 {
		c.enqueueImmediate(field, value)
		return nil
	}
	c.timers[field] = c.clock.AfterFunc(window, func() { c.flushField(field, gen) })
	return nil
}

// Value returns the buffered value of field.
func (c *Coordinator) Value(field Field) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[field]
	return v, ok
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{Saving: c.inFlight > 0}
	if c.lastSaved != nil {
		t := *c.lastSaved
		s.LastSavedAt = &t
	}
	return s
}

// Close cancels pending flushes. Flushes already running complete.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for f, t := range c.timers {
		t.Stop()
		delete(c.timers, f)
	}
}

// enqueueImmediate records one flush per call. Called with c.mu held.
func (c *Coordinator) enqueueImmediate(field Field, value any) {
	if c.docID == "" {
		c.log.Debug("autosave skipped, document not resolved", "field", field)
		return
	}
	c.immediate = append(c.immediate, pendingFlush{docID: c.docID, field: field, value: value})
	c.inFlight++
	if !c.draining {
		c.draining = true
		go c.drainImmediate()
	}
}

func (c *Coordinator) drainImmediate() {
	for {
		c.mu.Lock()
		if len(c.immediate) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		p := c.immediate[0]
		c.immediate = c.immediate[1:]
		c.mu.Unlock()

		c.run(p.docID, p.field, p.value)
	}
}

func (c *Coordinator) flushField(field Field, gen uint64) {
	c.mu.Lock()
	if c.closed || c.gens[field] != gen {
		c.mu.Unlock()
		return
	}
	delete(c.timers, field)
	if c.docID == "" {
		c.mu.Unlock()
		c.log.Debug("autosave skipped, document not resolved", "field", field)
		return
	}
	docID, value := c.docID, c.values[field]
	c.inFlight++
	c.mu.Unlock()

	c.run(docID, field, value)
}

// run performs one flush. The caller has already counted it in inFlight.
func (c *Coordinator) run(docID string, field Field, value any) {
	err := c.flush(c.ctx, docID, field, value)

	c.mu.Lock()
	c.inFlight--
	if err == nil {
		now := c.clock.Now()
		c.lastSaved = &now
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("autosave failed", "doc_id", docID, "field", field, "error", err)
	}
	if c.observe != nil {
		c.observe(field, err)
	}
}
