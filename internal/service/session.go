package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"docpress/internal/autosave"
)

// SessionOptions tune editor sessions. Zero values use the defaults.
type SessionOptions struct {
	Windows     map[autosave.Field]time.Duration
	IdleTimeout time.Duration
	Clock       autosave.Clock
}

// SessionInfo is the client's view of an editor session.
type SessionInfo struct {
	ID         string          `json:"id"`
	Slug       string          `json:"slug"`
	DocumentID string          `json:"doc_id,omitempty"`
	Status     autosave.Status `json:"status"`
}

type editorSession struct {
	id       string
	ownerID  string
	slug     string
	co       *autosave.Coordinator
	lastUsed time.Time
}

func (s *editorSession) info() *SessionInfo {
	return &SessionInfo{ID: s.id, Slug: s.slug, DocumentID: s.co.DocumentID(), Status: s.co.Status()}
}

// EditorSessions keeps one autosave coordinator per open editor.
// A session resolves its slug in the background; edits that fire before
// the document id is known are not persisted.
type EditorSessions struct {
	docs    DocumentService
	log     *slog.Logger
	opts    SessionOptions
	ctx     context.Context
	flushes *prometheus.CounterVec

	mu       sync.Mutex
	sessions map[string]*editorSession
}

// NewEditorSessions registers the flush counter on reg. Flushes run under
// ctx without its cancellation.
func NewEditorSessions(ctx context.Context, docs DocumentService, reg prometheus.Registerer, log *slog.Logger, opts SessionOptions) (*EditorSessions, error) {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = autosave.SystemClock()
	}
	flushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosave_flushes_total",
		Help: "Autosave flushes by field and result.",
	}, []string{"field", "result"})
	if err := reg.Register(flushes); err != nil {
		return nil, err
	}
	return &EditorSessions{
		docs:     docs,
		log:      log,
		opts:     opts,
		ctx:      context.WithoutCancel(ctx),
		flushes:  flushes,
		sessions: make(map[string]*editorSession),
	}, nil
}

// Open starts a session for the owner's document at slug.
func (r *EditorSessions) Open(ownerID, slug string) (*SessionInfo, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrValidation)
	}

	sess := &editorSession{
		id:       uuid.NewString(),
		ownerID:  ownerID,
		slug:     slug,
		lastUsed: r.opts.Clock.Now(),
	}
	sess.co = autosave.New(r.flushFunc(ownerID),
		autosave.WithClock(r.opts.Clock),
		autosave.WithLogger(r.log.With("session_id", sess.id)),
		autosave.WithWindows(r.opts.Windows),
		autosave.WithContext(r.ctx),
		autosave.WithObserver(r.observe),
	)

	r.mu.Lock()
	r.sessions[sess.id] = sess
	r.mu.Unlock()

	go r.resolve(sess)
	return sess.info(), nil
}

func (r *EditorSessions) resolve(sess *editorSession) {
	doc, err := r.docs.GetForEditor(r.ctx, sess.ownerID, sess.slug)
	if err != nil {
		r.log.Warn("editor session could not resolve document", "session_id", sess.id, "slug", sess.slug, "error", err)
		if errors.Is(err, ErrNotFound) {
			r.drop(sess.id)
		}
		return
	}
	sess.co.Resolve(doc.ID)
}

func (r *EditorSessions) flushFunc(ownerID string) autosave.FlushFunc {
	return func(ctx context.Context, docID string, field autosave.Field, value any) error {
		raw, _ := value.(json.RawMessage)
		return r.docs.UpdateField(ctx, ownerID, docID, field, raw)
	}
}

func (r *EditorSessions) observe(field autosave.Field, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.flushes.WithLabelValues(string(field), result).Inc()
}

// Edit buffers a field value. Invalid values are rejected at once rather
// than at flush time.
func (r *EditorSessions) Edit(ownerID, id, field string, value json.RawMessage) (*SessionInfo, error) {
	f, err := autosave.ParseField(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := FieldInput(f, value); err != nil {
		return nil, err
	}

	sess, err := r.get(ownerID, id, true)
	if err != nil {
		return nil, err
	}
	if err := sess.co.Edit(f, value); err != nil {
		return nil, err
	}
	return sess.info(), nil
}

// Get reports the save status of a session.
func (r *EditorSessions) Get(ownerID, id string) (*SessionInfo, error) {
	sess, err := r.get(ownerID, id, false)
	if err != nil {
		return nil, err
	}
	return sess.info(), nil
}

// Close cancels pending flushes of a session and forgets it.
func (r *EditorSessions) Close(ownerID, id string) error {
	sess, err := r.get(ownerID, id, false)
	if err != nil {
		return err
	}
	r.drop(sess.id)
	return nil
}

func (r *EditorSessions) get(ownerID, id string, touch bool) (*editorSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok || sess.ownerID != ownerID {
		return nil, ErrNotFound
	}
	if touch {
		sess.lastUsed = r.opts.Clock.Now()
	}
	return sess, nil
}

func (r *EditorSessions) drop(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		sess.co.Close()
	}
}

// Len returns the number of open sessions.
func (r *EditorSessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns
// how many it closed.
func (r *EditorSessions) Sweep() int {
	cutoff := r.opts.Clock.Now().Add(-r.opts.IdleTimeout)
	var idle []string
	r.mu.Lock()
	for id, sess := range r.sessions {
		if sess.lastUsed.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	for _, id := range idle {
		r.drop(id)
	}
	if len(idle) > 0 {
		r.log.Info("editor_sessions_expired", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is done, then closes all of them.
func (r *EditorSessions) Run(ctx context.Context) {
	interval := r.opts.IdleTimeout / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll cancels every pending flush.
func (r *EditorSessions) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*editorSession)
	r.mu.Unlock()
	for _, sess := range all {
		sess.co.Close()
	}
}
