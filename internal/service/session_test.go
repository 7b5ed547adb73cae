package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docpress/internal/autosave"
	"docpress/internal/model"
)

type stepTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *stepTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// stepClock only fires timers from Advance.
type stepClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*stepTimer
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) AfterFunc(d time.Duration, f func()) autosave.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &stepTimer{at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*stepTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

// stubDocs implements the two DocumentService methods sessions use.
type stubDocs struct {
	DocumentService
	mock.Mock
}

func (s *stubDocs) GetForEditor(ctx context.Context, ownerID, slug string) (*EditorDocument, error) {
	args := s.Called(ownerID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EditorDocument), args.Error(1)
}

func (s *stubDocs) UpdateField(ctx context.Context, ownerID, id string, field autosave.Field, value json.RawMessage) error {
	return s.Called(ownerID, id, field, string(value)).Error(0)
}

func newSessions(t *testing.T, docs *stubDocs, clock *stepClock) (*EditorSessions, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	r, err := NewEditorSessions(context.Background(), docs, reg, discardLogger(), SessionOptions{
		IdleTimeout: 10 * time.Minute,
		Clock:       clock,
	})
	require.NoError(t, err)
	return r, reg
}

func openResolved(t *testing.T, r *EditorSessions, docs *stubDocs) *SessionInfo {
	t.Helper()
	docs.On("GetForEditor", "user-1", "intro").
		Return(&EditorDocument{Document: &model.Document{ID: "doc-1", Slug: "intro"}}, nil)
	info, err := r.Open("user-1", "intro")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		got, err := r.Get("user-1", info.ID)
		return err == nil && got.DocumentID == "doc-1"
	}, time.Second, 5*time.Millisecond)
	return info
}

func TestEditorSessions_DebouncedFlush(t *testing.T) {
	docs := new(stubDocs)
	clock := &stepClock{now: fixedNow}
	r, _ := newSessions(t, docs, clock)
	info := openResolved(t, r, docs)

	docs.On("UpdateField", "user-1", "doc-1", autosave.FieldTitle, `"Third"`).Return(nil).Once()

	for _, v := range []string{`"First"`, `"Second"`, `"Third"`} {
		_, err := r.Edit("user-1", info.ID, "title", json.RawMessage(v))
		require.NoError(t, err)
		clock.Advance(200 * time.Millisecond)
	}
	docs.AssertNotCalled(t, "UpdateField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	clock.Advance(800 * time.Millisecond)
	docs.AssertNumberOfCalls(t, "UpdateField", 1)

	got, err := r.Get("user-1", info.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Status.LastSavedAt)
	assert.False(t, got.Status.Saving)
}

func TestEditorSessions_ClearedTitleIsSaved(t *testing.T) {
	docs := new(stubDocs)
	clock := &stepClock{now: fixedNow}
	r, _ := newSessions(t, docs, clock)
	info := openResolved(t, r, docs)

	docs.On("UpdateField", "user-1", "doc-1", autosave.FieldTitle, `""`).Return(nil).Once()

	_, err := r.Edit("user-1", info.ID, "title", json.RawMessage(`""`))
	require.NoError(t, err)
	clock.Advance(time.Second)
	docs.AssertNumberOfCalls(t, "UpdateField", 1)

	got, err := r.Get("user-1", info.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Status.LastSavedAt)
	assert.False(t, got.Status.Saving)
}

func TestEditorSessions_VisibilityImmediate(t *testing.T) {
	docs := new(stubDocs)
	r, _ := newSessions(t, docs, &stepClock{now: fixedNow})
	info := openResolved(t, r, docs)

	docs.On("UpdateField", "user-1", "doc-1", autosave.FieldVisibility, "true").Return(nil).Once()

	_, err := r.Edit("user-1", info.ID, "is_public", json.RawMessage(`true`))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(r.flushes.WithLabelValues("is_public", "ok")) == 1
	}, time.Second, 5*time.Millisecond)
	docs.AssertNumberOfCalls(t, "UpdateField", 1)
}

func TestEditorSessions_FailedFlushCounted(t *testing.T) {
	docs := new(stubDocs)
	clock := &stepClock{now: fixedNow}
	r, _ := newSessions(t, docs, clock)
	info := openResolved(t, r, docs)

	docs.On("UpdateField", "user-1", "doc-1", autosave.FieldCategory, `"Helper"`).Return(errors.New("db down"))

	_, err := r.Edit("user-1", info.ID, "category", json.RawMessage(`"Helper"`))
	require.NoError(t, err)
	clock.Advance(800 * time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.flushes.WithLabelValues("category", "error")))
	got, _ := r.Get("user-1", info.ID)
	assert.Nil(t, got.Status.LastSavedAt)
}

func TestEditorSessions_EditValidation(t *testing.T) {
	docs := new(stubDocs)
	r, _ := newSessions(t, docs, &stepClock{now: fixedNow})
	info := openResolved(t, r, docs)

	_, err := r.Edit("user-1", info.ID, "slug", json.RawMessage(`"x"`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.Edit("user-1", info.ID, "category", json.RawMessage(`"Recipes"`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.Edit("user-2", info.ID, "title", json.RawMessage(`"x"`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditorSessions_CloseCancelsPending(t *testing.T) {
	docs := new(stubDocs)
	clock := &stepClock{now: fixedNow}
	r, _ := newSessions(t, docs, clock)
	info := openResolved(t, r, docs)

	_, err := r.Edit("user-1", info.ID, "content", json.RawMessage(`[]`))
	require.NoError(t, err)

	require.NoError(t, r.Close("user-1", info.ID))
	clock.Advance(2 * time.Second)

	docs.AssertNotCalled(t, "UpdateField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	_, err = r.Get("user-1", info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditorSessions_UnknownSlugDropped(t *testing.T) {
	docs := new(stubDocs)
	r, _ := newSessions(t, docs, &stepClock{now: fixedNow})
	docs.On("GetForEditor", "user-1", "missing").Return(nil, ErrNotFound)

	info, err := r.Open("user-1", "missing")
	require.NoError(t, err)
	assert.Empty(t, info.DocumentID)

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestEditorSessions_OpenRequiresSlug(t *testing.T) {
	r, _ := newSessions(t, new(stubDocs), &stepClock{now: fixedNow})
	_, err := r.Open("user-1", " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditorSessions_Sweep(t *testing.T) {
	docs := new(stubDocs)
	clock := &stepClock{now: fixedNow}
	r, _ := newSessions(t, docs, clock)
	stale := openResolved(t, r, docs)

	clock.Advance(6 * time.Minute)
	fresh, err := r.Open("user-1", "intro")
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, err = r.Get("user-1", stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get("user-1", fresh.ID)
	assert.NoError(t, err)

	r.CloseAll()
	assert.Equal(t, 0, r.Len())
}
