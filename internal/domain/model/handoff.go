package model

import (
	"context"
	"fmt"
	"sync/atomic"
)

// State is the population status observed by the frame loop.
type State int

// Population states.
const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is a point-in-time view of the hand-off. Model is set only when
// State is StateReady; Err only when State is StateFailed.
type Outcome struct {
	State State
	Model *Model
	Err   error
}

// Handoff transfers the model from the population pass to the frame loop.
// It resolves exactly once, either with a fully built model or with an
// error. The outcome is stored through an atomic pointer after the model is
// complete, so a reader that observes StateReady also observes every cell.
type Handoff struct {
	outcome atomic.Pointer[Outcome]
	done    chan struct{}
}

// NewHandoff returns an unresolved hand-off.
func NewHandoff() *Handoff {
	return &Handoff{done: make(chan struct{})}
}

// Publish resolves the hand-off with m. m must not be touched by the caller
// afterwards.
func (h *Handoff) Publish(m *Model) error {
	if m == nil {
		return ErrNilModel
	}
	return h.resolve(&Outcome{State: StateReady, Model: m})
}

// Fail resolves the hand-off with err.
func (h *Handoff) Fail(err error) error {
	if err == nil {
		err = ErrUnknownFailure
	}
	return h.resolve(&Outcome{State: StateFailed, Err: err})
}

func (h *Handoff) resolve(o *Outcome) error {
	if !h.outcome.CompareAndSwap(nil, o) {
		return ErrAlreadyResolved
	}
	close(h.done)
	return nil
}

// Poll returns the current outcome without blocking.
func (h *Handoff) Poll() Outcome {
	if o := h.outcome.Load(); o != nil {
		return *o
	}
	return Outcome{State: StateLoading}
}

// Done is closed once the hand-off resolves.
func (h *Handoff) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the hand-off resolves or ctx ends. The frame loop never
// calls it; it exists for callers outside the loop such as tests and tools.
func (h *Handoff) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
		return h.Poll(), nil
	case <-ctx.Done():
		return Outcome{State: StateLoading}, fmt.Errorf("wait for hand-off: %w", ctx.Err())
	}
}
