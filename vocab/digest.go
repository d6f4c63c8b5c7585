package vocab

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// Digest returns a collision-resistant fingerprint of the vocabulary's
// observable content: the EOS id, the special-token ids, and every
// decoded-string bucket with its token ids. Two vocabularies built from
// identical raw inputs (in any map-iteration order) produce identical
// digests, since buckets are already sorted by decoded string and every
// id list is sorted — this is what makes Digest safe to use as a process
// cache fingerprint across separate build calls or processes.
//
// sha256 is used rather than a faster non-cryptographic hash because a
// digest collision here would silently merge two different vocabularies'
// cache entries — this is the one hash in the module where
// collision-resistance, not raw speed, is the requirement.
func (v *Vocabulary) Digest() [32]byte {
	h := sha256.New()
	writeUint64(h, uint64(v.eos))

	specials := make([]TokenID, 0, len(v.specialIDs))
	for id := range v.specialIDs {
		specials = append(specials, id)
	}
	sort.Slice(specials, func(i, j int) bool { return specials[i] < specials[j] })
	writeUint64(h, uint64(len(specials)))
	for _, id := range specials {
		writeUint64(h, uint64(id))
	}

	writeUint64(h, uint64(len(v.buckets)))
	for _, b := range v.buckets {
		writeUint64(h, uint64(len(b.Decoded)))
		h.Write([]byte(b.Decoded))
		writeUint64(h, uint64(len(b.IDs)))
		for _, id := range b.IDs {
			writeUint64(h, uint64(id))
		}
	}

	writeUint64(h, uint64(len(v.emptyTokenIDs)))
	for _, id := range v.emptyTokenIDs {
		writeUint64(h, uint64(id))
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeUint64(h interface{ Write([]byte) (int, error) }, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
}
