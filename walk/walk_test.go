package walk

import (
	"testing"

	"github.com/coregx/fsmindex/automaton"
)

func compile(t *testing.T, pattern string) *automaton.Automaton {
	t.Helper()
	a, err := automaton.Compile(pattern)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return a
}

func TestWalkAcceptsMatchingString(t *testing.T) {
	a := compile(t, "ab")
	res := Walk(a, a.Initial, "ab")
	if !res.Accepted || !a.IsFinal(res.State) {
		t.Fatalf("expected \"ab\" to be accepted into a final state, got %+v", res)
	}
}

func TestWalkRejectsOnFirstBadRune(t *testing.T) {
	a := compile(t, "ab")
	res := Walk(a, a.Initial, "ac")
	if res.Accepted {
		t.Fatalf("expected \"ac\" to be rejected")
	}
}

func TestWalkIsResumable(t *testing.T) {
	// Walking "a" then "bc" from the resulting state must match walking
	// "abc" in one call — this is what lets the index builder feed
	// per-token decoded strings through a state one hop at a time.
	a := compile(t, "abc")
	mid := Walk(a, a.Initial, "a")
	if !mid.Accepted {
		t.Fatalf("expected \"a\" to be accepted as a prefix")
	}
	end := Walk(a, mid.State, "bc")
	if !end.Accepted || !a.IsFinal(end.State) {
		t.Fatalf("expected \"bc\" from the post-\"a\" state to reach a final state")
	}

	whole := Walk(a, a.Initial, "abc")
	if !whole.Accepted || whole.State != end.State {
		t.Fatalf("expected resumed walk to agree with a single walk of \"abc\"")
	}
}

func TestWalkDeterministic(t *testing.T) {
	a := compile(t, "a|b")
	r1 := Walk(a, a.Initial, "a")
	r2 := Walk(a, a.Initial, "a")
	if r1 != r2 {
		t.Fatalf("expected identical walks to produce identical results, got %+v and %+v", r1, r2)
	}
}

func TestWalkUnmentionedRune(t *testing.T) {
	// "." compiles to explicit rune ranges covering every rune except
	// '\n', so a rune the pattern never names is accepted through one of
	// those range classes (not through the anything-else symbol).
	a := compile(t, ".")
	res := Walk(a, a.Initial, "Z")
	if !res.Accepted || !a.IsFinal(res.State) {
		t.Fatalf("expected a rune the pattern never names to be accepted by \".\"")
	}
}
