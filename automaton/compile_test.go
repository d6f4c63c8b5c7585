package automaton

import "testing"

// walk feeds a string through the compiled automaton, one rune at a time,
// and reports the final state plus whether every rune was accepted.
func walk(a *Automaton, s string) (state StateID, accepted bool) {
	state = a.Initial
	for _, r := range s {
		next, ok := a.Step(state, a.SymbolOf(r))
		if !ok {
			return state, false
		}
		state = next
	}
	return state, true
}

func TestCompileLiteral(t *testing.T) {
	a, err := Compile("a")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	final, ok := walk(a, "a")
	if !ok || !a.IsFinal(final) {
		t.Fatalf("expected \"a\" to reach a final state, got state=%v ok=%v", final, ok)
	}
	if _, ok := walk(a, "ab"); ok {
		t.Fatalf("\"ab\" should be rejected by pattern \"a\"")
	}
	if _, ok := walk(a, "b"); ok {
		t.Fatalf("\"b\" should be rejected by pattern \"a\"")
	}
}

func TestCompileStar(t *testing.T) {
	a, err := Compile("a*")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !a.IsFinal(a.Initial) {
		t.Fatalf("initial state of a* must be final (matches empty string)")
	}
	for _, s := range []string{"", "a", "aa", "aaaa"} {
		final, ok := walk(a, s)
		if !ok || !a.IsFinal(final) {
			t.Errorf("%q: expected accept, got state=%v ok=%v", s, final, ok)
		}
	}
	if _, ok := walk(a, "b"); ok {
		t.Fatalf("\"b\" should be rejected by pattern \"a*\"")
	}
}

func TestCompileConcat(t *testing.T) {
	a, err := Compile("ab")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	afterA, ok := a.Step(a.Initial, a.SymbolOf('a'))
	if !ok {
		t.Fatalf("expected transition on 'a' from initial state")
	}
	if a.IsFinal(afterA) {
		t.Fatalf("state after \"a\" must not be final for pattern \"ab\"")
	}
	final, ok := walk(a, "ab")
	if !ok || !a.IsFinal(final) {
		t.Fatalf("expected \"ab\" to be accepted")
	}
	if a.IsFinal(afterA) {
		t.Fatalf("\"a\" alone must not be final for pattern \"ab\"")
	}
}

func TestCompileCapturedLiteral(t *testing.T) {
	a, err := Compile("(foo)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// "foo" itself is accepted; runes outside {f,o} are rejected from the
	// start since there is only one path through the pattern.
	final, ok := walk(a, "foo")
	if !ok || !a.IsFinal(final) {
		t.Fatalf("expected \"foo\" to be accepted")
	}
	if _, ok := walk(a, "bar"); ok {
		t.Fatalf("\"bar\" must be rejected by pattern \"(foo)\"")
	}
}

func TestCompileAlternate(t *testing.T) {
	a, err := Compile("a|b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, s := range []string{"a", "b"} {
		final, ok := walk(a, s)
		if !ok || !a.IsFinal(final) {
			t.Errorf("%q: expected accept", s)
		}
	}
	if _, ok := walk(a, "ab"); ok {
		t.Fatalf("\"ab\" must be rejected by pattern \"a|b\"")
	}
}

func TestCompileAnyCharPlus(t *testing.T) {
	a, err := Compile(".+")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if a.IsFinal(a.Initial) {
		t.Fatalf("initial state of .+ must not be final (requires at least one char)")
	}
	final, ok := walk(a, "x")
	if !ok || !a.IsFinal(final) {
		t.Fatalf("expected single char to be accepted by .+")
	}
	// The state after any non-empty match must loop back to itself (still
	// final, still accepts everything).
	final2, ok := walk(a, "xy")
	if !ok || !a.IsFinal(final2) {
		t.Fatalf("expected \"xy\" to be accepted by .+")
	}
	if final != final2 {
		t.Fatalf("expected .+ to converge on a single looping final state, got %v and %v", final, final2)
	}
	// '\n' is excluded only by OpAnyCharNotNL, not OpAnyChar — '.' without
	// (?s) defaults to "any char except newline" in syntax.Perl, so this
	// exercises compileNotNL's split-around-\n path.
	if _, ok := walk(a, "\n"); ok {
		t.Fatalf("\\n should be rejected by '.' without the (?s) flag")
	}
}

func TestCompileRepeatExact(t *testing.T) {
	a, err := Compile("a{3}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, tc := range []struct {
		s      string
		accept bool
	}{
		{"aa", false},
		{"aaa", true},
		{"aaaa", false},
	} {
		final, ok := walk(a, tc.s)
		got := ok && a.IsFinal(final)
		if got != tc.accept {
			t.Errorf("%q: expected accept=%v, got %v", tc.s, tc.accept, got)
		}
	}
}

func TestCompileRepeatRange(t *testing.T) {
	a, err := Compile("a{2,4}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, tc := range []struct {
		s      string
		accept bool
	}{
		{"a", false},
		{"aa", true},
		{"aaa", true},
		{"aaaa", true},
		{"aaaaa", false},
	} {
		final, ok := walk(a, tc.s)
		got := ok && a.IsFinal(final)
		if got != tc.accept {
			t.Errorf("%q: expected accept=%v, got %v", tc.s, tc.accept, got)
		}
	}
}

func TestCompileRepeatAtLeast(t *testing.T) {
	a, err := Compile("a{2,}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, tc := range []struct {
		s      string
		accept bool
	}{
		{"a", false},
		{"aa", true},
		{"aaaaaa", true},
	} {
		final, ok := walk(a, tc.s)
		got := ok && a.IsFinal(final)
		if got != tc.accept {
			t.Errorf("%q: expected accept=%v, got %v", tc.s, tc.accept, got)
		}
	}
}

func TestCompileRepeatUpToN(t *testing.T) {
	a, err := Compile("a{0,2}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !a.IsFinal(a.Initial) {
		t.Fatalf("a{0,2} must accept the empty string")
	}
	for _, tc := range []struct {
		s      string
		accept bool
	}{
		{"", true},
		{"a", true},
		{"aa", true},
		{"aaa", false},
	} {
		final, ok := walk(a, tc.s)
		got := ok && a.IsFinal(final)
		if got != tc.accept {
			t.Errorf("%q: expected accept=%v, got %v", tc.s, tc.accept, got)
		}
	}
}

func TestCompileCharClass(t *testing.T) {
	a, err := Compile("[a-c]")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, r := range []string{"a", "b", "c"} {
		final, ok := walk(a, r)
		if !ok || !a.IsFinal(final) {
			t.Errorf("%q: expected accept", r)
		}
	}
	if _, ok := walk(a, "d"); ok {
		t.Fatalf("\"d\" must be rejected by [a-c]")
	}
}

func TestCompileWordBoundaryUnsupported(t *testing.T) {
	if _, err := Compile(`\bfoo\b`); err == nil {
		t.Fatalf("expected ErrUnsupportedConstruct for word boundary assertions")
	}
}

func TestCompileAnchorsAreNoOps(t *testing.T) {
	a, err := Compile("^a$")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	final, ok := walk(a, "a")
	if !ok || !a.IsFinal(final) {
		t.Fatalf("expected \"a\" to be accepted under ^a$")
	}
}

func TestCompileUnicodeClasses(t *testing.T) {
	a, err := Compile(`\p{L}+`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	final, ok := walk(a, "héllo")
	if !ok || !a.IsFinal(final) {
		t.Fatalf("expected unicode letters to be accepted by \\p{L}+")
	}
	if _, ok := walk(a, "5"); ok {
		t.Fatalf("digit should be rejected by \\p{L}+")
	}
}

func TestCompileTooComplex(t *testing.T) {
	// regexp/syntax itself rejects repeat counts above 1000 as an invalid
	// repeat size, so this pattern fails at parse time with a CompileError
	// before maxRepeatCount or the state budget are consulted.
	if _, err := CompileWithLimit("a{0,5000}", DefaultMaxStates); err == nil {
		t.Fatalf("expected an error for a repeat count above 1000")
	}
}

func TestNumStates(t *testing.T) {
	a, err := Compile("a|b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n := a.NumStates(); n < 2 {
		t.Fatalf("expected at least 2 distinct states for \"a|b\", got %d", n)
	}
}
