package index

import (
	"context"
	"sort"

	"github.com/coregx/fsmindex/automaton"
	"github.com/coregx/fsmindex/vocab"
)

// LazyIndex is the user-facing handle onto an in-progress or finished
// index build. It is safe for concurrent use by any number of readers;
// the builder's worker goroutines are the only writers of its token maps.
//
// Lifecycle: Created (via Builder.Start) -> Building -> Completed, or
// Building -> Cancelled on explicit Cancel or an internal build error.
// Completed and Cancelled are both terminal; every blocked reader is
// released at the transition.
type LazyIndex struct {
	state     *sharedState
	automaton *automaton.Automaton
	eos       vocab.TokenID
}

// GetNextState looks up the state reached by emitting token from state.
//
// state == Reject always yields Reject (there is no state past
// rejection). Emitting the EOS token always yields Reject too — EOS is a
// terminal instruction, never a transition into another DFA state,
// regardless of whether state happens to be final. Otherwise the call
// blocks, if necessary, until state finishes, then returns the looked-up
// next state or Reject if token has no recorded transition from state.
func (h *LazyIndex) GetNextState(state StateID, token vocab.TokenID) (StateID, error) {
	if state == Reject || token == h.eos {
		return Reject, nil
	}
	aState := toAutomatonState(state)
	if err := h.state.awaitState(context.Background(), aState); err != nil {
		return Reject, err
	}
	m := h.state.tokenMap(aState)
	next, ok := m[token]
	if !ok {
		return Reject, nil
	}
	return next, nil
}

// GetNextInstruction reports what the caller may or must emit from
// state.
//
// Write is returned when EOS is the only legal continuation — state ==
// Reject, or state's finished token map contains nothing but EOS (this
// covers both "regex matches only the empty string" and any other state
// whose sole forward edge is ending generation). Otherwise Generate is
// returned with every token the state's map permits, EOS included
// whenever state is final and other continuations also survive.
func (h *LazyIndex) GetNextInstruction(state StateID) (Instruction, error) {
	if state == Reject {
		return Instruction{Kind: Write, Tokens: []vocab.TokenID{h.eos}}, nil
	}
	aState := toAutomatonState(state)
	if err := h.state.awaitState(context.Background(), aState); err != nil {
		return Instruction{}, err
	}

	m := h.state.tokenMap(aState)
	tokens := make([]vocab.TokenID, 0, len(m))
	for t := range m {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })

	if len(tokens) == 1 && tokens[0] == h.eos {
		return Instruction{Kind: Write, Tokens: tokens}, nil
	}
	return Instruction{Kind: Generate, Tokens: tokens}, nil
}

// AwaitState blocks until state is finished, the build completes without
// ever reaching state (state is simply unreachable), the build is
// cancelled, or ctx is done.
func (h *LazyIndex) AwaitState(ctx context.Context, state StateID) error {
	if state == Reject {
		return nil
	}
	return h.state.awaitState(ctx, toAutomatonState(state))
}

// AwaitFinished blocks until the build completes or is cancelled, or ctx
// is done.
func (h *LazyIndex) AwaitFinished(ctx context.Context) error {
	return h.state.awaitFinished(ctx)
}

// Cancel terminates the build. A no-op if the handle already reached a
// terminal state (Completed or Cancelled).
func (h *LazyIndex) Cancel() {
	h.state.cancel(nil)
}
