// Package walk implements the pure token-DFA walker: given a compiled
// automaton and a decoded token string, it reports the state the automaton
// reaches after consuming every rune of the string, or rejection.
//
// Walk holds no state of its own and performs no allocation beyond the
// automaton's own lookups, so a single *automaton.Automaton can be walked
// concurrently from as many goroutines as the caller likes — this is the
// property the index builder's worker pool relies on.
package walk

import "github.com/coregx/fsmindex/automaton"

// Result is the outcome of walking a decoded string through an automaton
// from a given starting state.
type Result struct {
	// State is the automaton state reached after the walk, valid only
	// when Accepted is true.
	State automaton.StateID
	// Accepted reports whether every rune of the string was consumed
	// without the automaton rejecting.
	Accepted bool
}

// Walk consumes s rune by rune from start, resolving each rune's symbol
// class via a.SymbolOf and stepping the automaton via a.Step. It stops and
// reports rejection on the first unresolved transition; otherwise it
// returns the state reached after the last rune.
//
// s must be non-empty — callers are expected to have already filtered out
// tokens that decode to the empty string (vocab.Vocabulary.EmptyTokenIDs).
func Walk(a *automaton.Automaton, start automaton.StateID, s string) Result {
	state := start
	for _, r := range s {
		next, ok := a.Step(state, a.SymbolOf(r))
		if !ok {
			return Result{Accepted: false}
		}
		state = next
	}
	return Result{State: state, Accepted: true}
}
