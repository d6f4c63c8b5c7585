package vocab

import "testing"

func sampleRaw() map[TokenID][]byte {
	return map[TokenID][]byte{
		0: []byte(""),    // eos
		1: []byte("a"),
		2: []byte("b"),
		3: []byte("ab"),
		4: []byte("a"),   // shares a bucket with id 1
		5: []byte(""),    // empty, non-eos
		6: []byte("<sp>"), // special
	}
}

func TestFromRawBucketsAndFilters(t *testing.T) {
	v, err := FromRaw(sampleRaw(), 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	if v.EOSTokenID() != 0 {
		t.Fatalf("expected eos id 0, got %v", v.EOSTokenID())
	}
	if !v.IsSpecial(0) || !v.IsSpecial(6) {
		t.Fatalf("expected eos and declared special ids to be marked special")
	}
	if v.IsSpecial(1) {
		t.Fatalf("id 1 must not be marked special")
	}

	var aBucket *Bucket
	for i := range v.IterDecoded() {
		if v.IterDecoded()[i].Decoded == "a" {
			aBucket = &v.IterDecoded()[i]
		}
	}
	if aBucket == nil {
		t.Fatalf("expected a bucket for decoded string \"a\"")
	}
	if len(aBucket.IDs) != 2 || aBucket.IDs[0] != 1 || aBucket.IDs[1] != 4 {
		t.Fatalf("expected ids 1 and 4 bucketed under \"a\", got %v", aBucket.IDs)
	}

	if got := v.Len(); got != 4 {
		// ids 1,2,3,4 are indexed; 0 (eos) and 6 (special) are excluded,
		// 5 (empty) is excluded from the bucket count.
		t.Fatalf("expected Len()=4, got %d", got)
	}

	empty := v.EmptyTokenIDs()
	if len(empty) != 1 || empty[0] != 5 {
		t.Fatalf("expected EmptyTokenIDs={5}, got %v", empty)
	}
}

func TestFromRawRequiresEOSInRaw(t *testing.T) {
	raw := map[TokenID][]byte{1: []byte("a")}
	if _, err := FromRaw(raw, 99, nil, nil); err == nil {
		t.Fatalf("expected error when eos id is absent from the raw vocabulary")
	}
}

func TestFromRawAppliesDecoder(t *testing.T) {
	raw := map[TokenID][]byte{
		0: []byte(""),
		1: []byte("▁hello"), // sentencepiece-style leading marker
	}
	decode := func(b []byte) []byte {
		// Strip the marker, replacing it with a literal space.
		s := string(b)
		if len(s) > 0 && []rune(s)[0] == '▁' {
			return []byte(" " + s[len("▁"):])
		}
		return b
	}
	v, err := FromRaw(raw, 0, nil, decode)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	buckets := v.IterDecoded()
	if len(buckets) != 1 || buckets[0].Decoded != " hello" {
		t.Fatalf("expected decoder to be applied, got buckets=%v", buckets)
	}
}

func TestDigestStableAcrossEquivalentInputs(t *testing.T) {
	v1, err := FromRaw(sampleRaw(), 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	v2, err := FromRaw(sampleRaw(), 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	if v1.Digest() != v2.Digest() {
		t.Fatalf("expected identical digests for identical raw inputs")
	}
}

func TestDigestDiffersOnContentChange(t *testing.T) {
	v1, err := FromRaw(sampleRaw(), 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	raw2 := sampleRaw()
	raw2[7] = []byte("extra")
	v2, err := FromRaw(raw2, 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	if v1.Digest() == v2.Digest() {
		t.Fatalf("expected different digests for different vocabularies")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	v, err := FromRaw(sampleRaw(), 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	blob, err := v.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	v2, err := UnmarshalVocabulary(blob)
	if err != nil {
		t.Fatalf("UnmarshalVocabulary: %v", err)
	}

	if v2.Len() != v.Len() {
		t.Fatalf("Len mismatch after round-trip: %d != %d", v2.Len(), v.Len())
	}
	if v2.EOSTokenID() != v.EOSTokenID() {
		t.Fatalf("EOSTokenID mismatch after round-trip")
	}
	if v2.Digest() != v.Digest() {
		t.Fatalf("Digest must be preserved by a round-trip")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalVocabulary([]byte("not a vocabulary blob")); err == nil {
		t.Fatalf("expected an error unmarshalling garbage input")
	}
}

func TestUnmarshalRejectsTruncated(t *testing.T) {
	v, err := FromRaw(sampleRaw(), 0, map[TokenID]struct{}{6: {}}, nil)
	if err != nil {
		t.Fatalf("FromRaw: %v", err)
	}
	blob, err := v.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if _, err := UnmarshalVocabulary(blob[:len(blob)-3]); err == nil {
		t.Fatalf("expected an error unmarshalling a truncated blob")
	}
}
