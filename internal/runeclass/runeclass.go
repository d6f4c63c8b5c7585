// Package runeclass computes rune equivalence classes for the automaton
// compiler.
//
// Two runes belong to the same equivalence class if no transition in the
// compiled automaton distinguishes between them. This is the rune-level
// generalization of alphabet reduction: instead of grouping bytes into ~256
// classes, boundaries are tracked over the full Unicode range and classes
// are assigned densely, keeping symbol counts proportional to the number of
// distinct rune ranges a pattern actually mentions rather than to the size
// of the alphabet.
package runeclass

import "sort"

// SymbolID is a dense identifier for a rune equivalence class.
type SymbolID uint32

// MaxRune is the largest valid Unicode code point, mirroring utf8.MaxRune
// without importing unicode/utf8 just for a constant.
const MaxRune = 0x10FFFF

// BoundarySet accumulates class boundaries from rune ranges seen during NFA
// construction. A boundary at rune r means the class changes between r and
// r+1.
//
// This is the rune-range analogue of nfa.ByteClassSet: instead of a fixed
// 256-bit array, boundaries are stored as a sorted set of runes since the
// domain spans [0, MaxRune].
type BoundarySet struct {
	bounds map[rune]struct{}
}

// NewBoundarySet creates an empty boundary set.
func NewBoundarySet() *BoundarySet {
	return &BoundarySet{bounds: make(map[rune]struct{})}
}

// SetRange marks [lo, hi] as a distinct range: boundaries are placed at
// lo-1 (if it exists) and at hi.
func (b *BoundarySet) SetRange(lo, hi rune) {
	if lo > 0 {
		b.bounds[lo-1] = struct{}{}
	}
	b.bounds[hi] = struct{}{}
}

// Classes converts the accumulated boundaries into a Table.
//
// Algorithm: walk the sorted boundaries; each boundary closes the current
// class and opens the next one. A rune falls into the classes of reps[i]
// where reps[i] is the smallest boundary >= the target rune (or the final
// "anything else" class beyond the lastboundary).
func (b *BoundarySet) Classes() *Table {
	bounds := make([]rune, 0, len(b.bounds))
	for r := range b.bounds {
		bounds = append(bounds, r)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	t := &Table{bounds: bounds}
	return t
}

// Table maps runes to dense SymbolIDs given a sorted list of class-ending
// boundaries. Class i covers runes in (bounds[i-1], bounds[i]] (with
// bounds[-1] treated as -1). The class beyond the last boundary is the
// "anything else" class.
type Table struct {
	bounds []rune
}

// Of returns the SymbolID for the given rune.
func (t *Table) Of(r rune) SymbolID {
	// First boundary >= r identifies the class.
	lo, hi := 0, len(t.bounds)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.bounds[mid] < r {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return SymbolID(lo)
}

// AnythingElse returns the SymbolID assigned to runes beyond every explicit
// boundary. Unclassified runes below or between boundaries fall into the
// ordinary classes that end at the next boundary, not into this one.
func (t *Table) AnythingElse() SymbolID {
	return SymbolID(len(t.bounds))
}

// Len returns the number of distinct symbol classes, including the
// "anything else" class.
func (t *Table) Len() int {
	return len(t.bounds) + 1
}

// Representative returns a rune guaranteed to belong to class id — used by
// the automaton compiler to probe "does this NFA rune-range state accept
// class id" without iterating every rune in the class.
func (t *Table) Representative(id SymbolID) rune {
	i := int(id)
	if i < len(t.bounds) {
		return t.bounds[i]
	}
	// The "anything else" class: any rune past the last boundary.
	if len(t.bounds) == 0 {
		return 0
	}
	last := t.bounds[len(t.bounds)-1]
	if last >= MaxRune {
		return last // degenerate: class is empty, Of never selects it
	}
	return last + 1
}
