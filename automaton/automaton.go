// Package automaton compiles a regular expression into the character-level
// DFA descriptor that the rest of fsmindex treats as a fixed, immutable
// input — "component B" of the design: initial state, final states, a flat
// (state, symbol) -> state transition table, a symbol-class mapping, and a
// distinguished "anything else" symbol.
//
// fsmindex's core (the token index builder and the lazy handle) does not
// care how the descriptor was produced; Compile is this module's own
// regex-to-DFA compiler, standing in for an external
// Thompson/Glushkov-plus-subset-construction-and-minimisation library.
package automaton

import "github.com/coregx/fsmindex/internal/runeclass"

// StateID identifies a DFA state. The initial state is always 0.
type StateID uint32

// SymbolID identifies a rune equivalence class, as produced by
// internal/runeclass.
type SymbolID = runeclass.SymbolID

// Edge is a transition key: from state, on symbol.
type Edge struct {
	From   StateID
	Symbol SymbolID
}

// Automaton is an immutable character-level DFA descriptor.
//
// Transitions is flat and total-by-absence: a missing (From, Symbol) entry
// means rejection, never a zero-value transition to state 0.
type Automaton struct {
	Initial      StateID
	Finals       map[StateID]struct{}
	Transitions  map[Edge]StateID
	classes      *runeclass.Table
	AnythingElse SymbolID
}

// IsFinal reports whether state is an accepting state.
func (a *Automaton) IsFinal(state StateID) bool {
	_, ok := a.Finals[state]
	return ok
}

// SymbolOf resolves the equivalence class for a rune. Runes above the
// highest class boundary map to AnythingElse; runes below or between the
// pattern's ranges map to their own gap classes instead.
func (a *Automaton) SymbolOf(r rune) SymbolID {
	return a.classes.Of(r)
}

// Step looks up the transition from state on symbol. ok is false if the
// automaton rejects on that symbol from that state.
func (a *Automaton) Step(state StateID, symbol SymbolID) (next StateID, ok bool) {
	next, ok = a.Transitions[Edge{From: state, Symbol: symbol}]
	return next, ok
}

// NumStates returns the number of distinct states the automaton
// references, via Finals, Initial, and transition endpoints.
func (a *Automaton) NumStates() int {
	seen := make(map[StateID]struct{})
	seen[a.Initial] = struct{}{}
	for f := range a.Finals {
		seen[f] = struct{}{}
	}
	for e, to := range a.Transitions {
		seen[e.From] = struct{}{}
		seen[to] = struct{}{}
	}
	return len(seen)
}
