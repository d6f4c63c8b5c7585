package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/coregx/fsmindex/automaton"
	"github.com/coregx/fsmindex/vocab"
)

// sharedState is the mutable, concurrently-accessed state a Builder
// publishes into and a LazyIndex reads from. It coalesces every state's
// wait condition behind a single mutex/condvar pair rather than
// allocating one sync.Cond per DFA state up front — a pattern grounded on
// an RWMutex-guarded cache map (dfa/lazy/cache.go), adapted from a
// read/write cache to a write-once-then-broadcast publish.
//
// Every broadcast is a "recheck your condition" nudge, never a promise
// that the particular state a waiter cares about just finished — readers
// always re-test finished/completed/cancelled after waking, which is what
// makes the single shared condvar safe despite the many distinct logical
// conditions (one per state) multiplexed onto it.
type sharedState struct {
	mu   sync.Mutex
	cond *sync.Cond

	automaton *automaton.Automaton

	tokens   map[automaton.StateID]map[vocab.TokenID]StateID
	finished map[automaton.StateID]struct{}

	completed bool
	cancelled bool
	err       error // the context or worker error that cancelled the build; nil after an explicit Cancel
}

func newSharedState(a *automaton.Automaton) *sharedState {
	s := &sharedState{
		automaton: a,
		tokens:    make(map[automaton.StateID]map[vocab.TokenID]StateID),
		finished:  make(map[automaton.StateID]struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// publish atomically installs q's token map and marks q finished. Readers
// either see the whole map or nothing — there is no intermediate state.
func (s *sharedState) publish(q automaton.StateID, tokenMap map[vocab.TokenID]StateID) {
	s.mu.Lock()
	s.tokens[q] = tokenMap
	s.finished[q] = struct{}{}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// complete marks the build finished. A no-op if already cancelled.
func (s *sharedState) complete() {
	s.mu.Lock()
	if !s.cancelled {
		s.completed = true
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// cancel marks the build cancelled, attaching err as the cause if this is
// the first terminal transition. cancel after the build already completed
// or was already cancelled is a no-op — both terminal states stick.
func (s *sharedState) cancel(err error) {
	s.mu.Lock()
	if !s.cancelled && !s.completed {
		s.cancelled = true
		s.err = err
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

// readErrLocked builds the error a blocked or future read observes once
// cancelled. Callers must hold s.mu.
func (s *sharedState) readErrLocked() error {
	if s.err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, s.err)
	}
	return ErrCancelled
}

// awaitState blocks until q is finished, the build completes (in which
// case an unfinished q is simply unreachable — not an error), or the
// build is cancelled, or ctx is done.
func (s *sharedState) awaitState(ctx context.Context, q automaton.StateID) error {
	if done := ctx.Done(); done != nil {
		stop := context.AfterFunc(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.cond.Broadcast()
		})
		defer stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if _, ok := s.finished[q]; ok {
			return nil
		}
		if s.cancelled {
			return s.readErrLocked()
		}
		if s.completed {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
}

// awaitFinished blocks until the build completes or is cancelled, or ctx
// is done.
func (s *sharedState) awaitFinished(ctx context.Context) error {
	if done := ctx.Done(); done != nil {
		stop := context.AfterFunc(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.cond.Broadcast()
		})
		defer stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.completed {
			return nil
		}
		if s.cancelled {
			return s.readErrLocked()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
}

func (s *sharedState) tokenMap(q automaton.StateID) map[vocab.TokenID]StateID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[q]
}
