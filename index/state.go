package index

import "github.com/coregx/fsmindex/automaton"

// StateID is the externally-visible state identifier: every non-negative
// value names a real automaton.StateID, and Reject (-1) is the synthetic
// sentinel meaning "terminal / no transition available" — it is never a
// real DFA state. automaton.StateID itself stays an unsigned, dense array
// index internally; StateID is the signed, -1-sentinel-bearing view the
// rest of this package's public surface deals in.
type StateID int64

// Reject is the synthetic terminal state id.
const Reject StateID = -1

func toAutomatonState(s StateID) automaton.StateID {
	return automaton.StateID(s)
}

func fromAutomatonState(s automaton.StateID) StateID {
	return StateID(s)
}
