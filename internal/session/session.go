// Package session tracks which capture session is current, so results from
// a retaken session never replace what the user is looking at.
package session

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token identifies one capture session. Tokens increase with every Begin;
// the zero Token is never current.
type Token uint64

// Tracker issues session tokens. It is safe for concurrent use.
type Tracker struct {
	current atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Begin starts a new session, cancelling the context handed out by the
// previous Begin. The returned context is done when the session is
// superseded or parent is done.
func (t *Tracker) Begin(parent context.Context) (Token, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = cancel
	tok := Token(t.current.Add(1))
	t.mu.Unlock()

	return tok, ctx
}

// Current returns the token of the latest session.
func (t *Tracker) Current() Token { return Token(t.current.Load()) }

// IsCurrent reports whether tok belongs to the latest session.
func (t *Tracker) IsCurrent(tok Token) bool { return tok != 0 && tok == t.Current() }

// Stop cancels the current session without starting a new one.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Tokened is anything produced for a session.
type Tokened interface {
	SessionToken() Token
}

// Display holds the single result currently shown. Offers from stale
// sessions are dropped.
type Display[T Tokened] struct {
	tracker *Tracker

	mu    sync.Mutex
	shown T
	has   bool
}

// NewDisplay creates a display gated by tracker.
func NewDisplay[T Tokened](tracker *Tracker) *Display[T] {
	return &Display[T]{tracker: tracker}
}

// Offer replaces the shown result if v was produced for the current
// session and reports whether it did.
func (d *Display[T]) Offer(v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.tracker.IsCurrent(v.SessionToken()) {
		return false
	}
	d.shown, d.has = v, true
	return true
}

// Shown returns the displayed result, if any. A result whose session has
// since been superseded is not returned.
func (d *Display[T]) Shown() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	if !d.has || !d.tracker.IsCurrent(d.shown.SessionToken()) {
		return zero, false
	}
	return d.shown, true
}
