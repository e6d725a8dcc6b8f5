package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreClosed is returned by calls made after Close.
var ErrStoreClosed = errors.New("cart store closed")

type request struct {
	action Action // nil reads the current state
	reply  chan result
}

type result struct {
	state State
	err   error
}

// Store serialises actions for one session through a single goroutine.
// States handed out are copies and never alias the store's own state.
type Store struct {
	requests  chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewStore starts a store seeded with initial.
func NewStore(initial State) *Store {
	s := &Store{
		requests: make(chan request),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.run(initial.Clone())
	return s
}

func (s *Store) run(state State) {
	defer close(s.stopped)

	for {
		select {
		case req := <-s.requests:
			if req.action == nil {
				req.reply <- result{state: state.Clone()}
				continue
			}
			next, err := Reduce(state, req.action)
			state = next
			req.reply <- result{state: state.Clone(), err: err}
		case <-s.done:
			return
		}
	}
}

// Dispatch applies action and returns the resulting state. If ctx ends after
// the action was accepted, the action still takes effect.
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	if action == nil {
		return s.Snapshot(ctx)
	}
	return s.send(ctx, request{action: action, reply: make(chan result, 1)})
}

// Snapshot returns the current state.
func (s *Store) Snapshot(ctx context.Context) (State, error) {
	return s.send(ctx, request{reply: make(chan result, 1)})
}

func (s *Store) send(ctx context.Context, req request) (State, error) {
	select {
	case s.requests <- req:
	case <-s.done:
		return State{}, ErrStoreClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.state, res.err
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Close stops the store goroutine and waits for it to exit. It is safe to call twice.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped
}
