// Package vocab models a tokenizer's vocabulary: the immutable mapping
// from decoded token strings to the token ids that produce them, plus the
// EOS id and the special-token ids excluded from the regular language.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidVocab indicates the raw inputs to FromRaw are inconsistent.
var ErrInvalidVocab = errors.New("fsmindex: invalid vocabulary")

// TokenID identifies a single vocabulary entry.
type TokenID int64

// Bucket groups the token ids that all decode to the same string — the
// walker's result is identical for every id in a bucket, so the index
// builder only has to walk Decoded once per bucket, not once per id.
type Bucket struct {
	Decoded string
	IDs     []TokenID
}

// Vocabulary is an immutable, decoded-string-bucketed view of a
// tokenizer's vocabulary, built once via FromRaw.
type Vocabulary struct {
	buckets       []Bucket
	eos           TokenID
	specialIDs    map[TokenID]struct{}
	emptyTokenIDs []TokenID
}

// FromRaw builds a Vocabulary from a raw id->bytes mapping.
//
// Construction: special ids (special, plus eos itself — eos is always
// excluded from the regular language even if the caller forgot to list
// it) are filtered out first; decode is applied to every remaining
// token's bytes to produce its human-visible string; tokens are then
// bucketed by that decoded string, and tokens whose decoded string is
// empty are recorded separately in EmptyTokenIDs rather than bucketed,
// since the walker cannot consume zero characters.
//
// decode is the caller's supplied decoder (e.g. the sub-word-prefix
// convention of a specific tokenizer); a nil decode is treated as the
// identity function.
func FromRaw(raw map[TokenID][]byte, eos TokenID, special map[TokenID]struct{}, decode func([]byte) []byte) (*Vocabulary, error) {
	if _, ok := raw[eos]; !ok {
		return nil, fmt.Errorf("%w: eos token id %d is not present in the raw vocabulary", ErrInvalidVocab, eos)
	}
	if decode == nil {
		decode = func(b []byte) []byte { return b }
	}

	specialIDs := make(map[TokenID]struct{}, len(special)+1)
	for id := range special {
		specialIDs[id] = struct{}{}
	}
	specialIDs[eos] = struct{}{}

	byDecoded := make(map[string][]TokenID)
	var emptyTokenIDs []TokenID
	for id, tokenBytes := range raw {
		if _, excluded := specialIDs[id]; excluded {
			continue
		}
		decoded := decode(tokenBytes)
		if len(decoded) == 0 {
			emptyTokenIDs = append(emptyTokenIDs, id)
			continue
		}
		s := string(decoded)
		byDecoded[s] = append(byDecoded[s], id)
	}

	buckets := make([]Bucket, 0, len(byDecoded))
	for s, ids := range byDecoded {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		buckets = append(buckets, Bucket{Decoded: s, IDs: ids})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Decoded < buckets[j].Decoded })
	sort.Slice(emptyTokenIDs, func(i, j int) bool { return emptyTokenIDs[i] < emptyTokenIDs[j] })

	return &Vocabulary{
		buckets:       buckets,
		eos:           eos,
		specialIDs:    specialIDs,
		emptyTokenIDs: emptyTokenIDs,
	}, nil
}

// Len returns the number of token ids this vocabulary indexes — every id
// that decodes to a non-empty string and is not a special token. It does
// not count special tokens or tokens that decode to the empty string.
func (v *Vocabulary) Len() int {
	n := 0
	for _, b := range v.buckets {
		n += len(b.IDs)
	}
	return n
}

// EOSTokenID returns the end-of-sequence token id.
func (v *Vocabulary) EOSTokenID() TokenID {
	return v.eos
}

// IsSpecial reports whether id was excluded from indexing as a special
// token (this always includes EOSTokenID).
func (v *Vocabulary) IsSpecial(id TokenID) bool {
	_, ok := v.specialIDs[id]
	return ok
}

// EmptyTokenIDs returns the ids of tokens that decode to the empty
// string, in ascending order. These are excluded from IterDecoded since
// the walker has no characters to consume for them.
func (v *Vocabulary) EmptyTokenIDs() []TokenID {
	return v.emptyTokenIDs
}

// IterDecoded returns the decoded-string buckets in a stable,
// digest-compatible order (sorted by decoded string). The returned slice
// must not be mutated by the caller.
func (v *Vocabulary) IterDecoded() []Bucket {
	return v.buckets
}
