// Package docbridge syncs the board with a free-text document through the
// generative-text collaborator.
//
// Sync is lossy and runs one direction at a time. Summarize turns the whole
// graph into an opaque document. Import asks the collaborator for a typed
// item list, then lays the items out in fixed rows. Import replaces every
// node and drops every link.
//
// A Bridge allows one call in flight. A second call while one is pending
// fails fast with ErrBusy. Calls never mutate anything themselves; callers
// apply the returned document or nodes only on success.
package docbridge

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/vanderheijden86/casefile/pkg/genai"
)

// ErrBusy is returned when a bridge call is already outstanding.
var ErrBusy = errors.New("docbridge: a sync is already in progress")

// Bridge wraps a Generator with the single-flight guard.
type Bridge struct {
	gen     genai.Generator
	sem     *semaphore.Weighted
	pending atomic.Bool
}

// New returns a Bridge over gen.
func New(gen genai.Generator) *Bridge {
	return &Bridge{gen: gen, sem: semaphore.NewWeighted(1)}
}

// Provider names the backing generator.
func (b *Bridge) Provider() genai.Provider { return b.gen.Provider() }

// Pending reports whether a call is outstanding.
func (b *Bridge) Pending() bool { return b.pending.Load() }

// acquire claims the single slot or reports ErrBusy. The returned func
// releases it.
func (b *Bridge) acquire() (func(), error) {
	if !b.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	b.pending.Store(true)
	return func() {
		b.pending.Store(false)
		b.sem.Release(1)
	}, nil
}

// guard runs fn holding the slot.
func guard[T any](ctx context.Context, b *Bridge, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	release, err := b.acquire()
	if err != nil {
		return zero, err
	}
	defer release()
	return fn(ctx)
}
