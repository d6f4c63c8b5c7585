package automaton

import "github.com/coregx/fsmindex/internal/runeclass"

// nfaStateKind mirrors nfa.StateKind from a byte-level Thompson NFA,
// reduced to what a character-level automaton needs: no byte ranges,
// no captures, no look-around. Just enough to express concatenation,
// alternation, and the three quantifier shapes.
type nfaStateKind uint8

const (
	nfaMatch nfaStateKind = iota
	nfaRuneRange
	nfaSplit
	nfaEpsilon
)

// nfaStateID indexes into nfaBuilder.states. nfaInvalid marks an
// as-yet-unpatched forward reference, exactly like nfa.InvalidState.
type nfaStateID uint32

const nfaInvalid nfaStateID = 0xFFFFFFFF

type nfaState struct {
	kind        nfaStateKind
	lo, hi      rune   // nfaRuneRange
	next        nfaStateID // nfaRuneRange / nfaEpsilon
	left, right nfaStateID // nfaSplit
}

// nfaBuilder constructs a Thompson NFA incrementally, in the
// "allocate a state, patch its forward reference later" style
// (nfa/builder.go's Builder + Patch), generalized from bytes to runes and
// stripped of everything (captures, look-around, priority-preserving
// quantifier splits) this domain doesn't need — subset construction only
// cares about the *language*, not about leftmost-first match priority.
type nfaBuilder struct {
	states     []nfaState
	boundaries *runeclass.BoundarySet
}

func newNFABuilder() *nfaBuilder {
	return &nfaBuilder{
		states:     make([]nfaState, 0, 16),
		boundaries: runeclass.NewBoundarySet(),
	}
}

func (b *nfaBuilder) addMatch() nfaStateID {
	id := nfaStateID(len(b.states))
	b.states = append(b.states, nfaState{kind: nfaMatch})
	return id
}

func (b *nfaBuilder) addRuneRange(lo, hi rune, next nfaStateID) nfaStateID {
	b.boundaries.SetRange(lo, hi)
	id := nfaStateID(len(b.states))
	b.states = append(b.states, nfaState{kind: nfaRuneRange, lo: lo, hi: hi, next: next})
	return id
}

func (b *nfaBuilder) addSplit(left, right nfaStateID) nfaStateID {
	id := nfaStateID(len(b.states))
	b.states = append(b.states, nfaState{kind: nfaSplit, left: left, right: right})
	return id
}

func (b *nfaBuilder) addEpsilon(next nfaStateID) nfaStateID {
	id := nfaStateID(len(b.states))
	b.states = append(b.states, nfaState{kind: nfaEpsilon, next: next})
	return id
}

// patch resolves a dangling forward reference on a RuneRange or Epsilon
// state, mirroring Builder.Patch.
func (b *nfaBuilder) patch(id nfaStateID, target nfaStateID) {
	s := &b.states[id]
	switch s.kind {
	case nfaRuneRange, nfaEpsilon:
		s.next = target
	default:
		panic("automaton: cannot patch state of this kind")
	}
}
