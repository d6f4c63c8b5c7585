package vocab

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coregx/fsmindex/internal/conv"
)

// Self-describing binary format, private to this module. No external
// codec is pulled in for this: the only contract is round-trip fidelity,
// which a small length-prefixed record format satisfies without
// protobuf/gob/json overhead.
const (
	vocabMagic   uint32 = 0x564f4331 // "VOC1"
	vocabVersion uint16 = 1
)

// MarshalBinary encodes the vocabulary into the module's private binary
// format. The encoding preserves Len, EOSTokenID, every decoded-string
// bucket, and EmptyTokenIDs exactly.
func (v *Vocabulary) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	writeUint32(&buf, vocabMagic)
	writeUint16(&buf, vocabVersion)
	writeInt64(&buf, int64(v.eos))

	specials := make([]TokenID, 0, len(v.specialIDs))
	for id := range v.specialIDs {
		specials = append(specials, id)
	}
	writeUint32(&buf, conv.IntToUint32(len(specials)))
	for _, id := range specials {
		writeInt64(&buf, int64(id))
	}

	writeUint32(&buf, conv.IntToUint32(len(v.buckets)))
	for _, b := range v.buckets {
		decoded := []byte(b.Decoded)
		writeUint32(&buf, conv.IntToUint32(len(decoded)))
		buf.Write(decoded)
		writeUint32(&buf, conv.IntToUint32(len(b.IDs)))
		for _, id := range b.IDs {
			writeInt64(&buf, int64(id))
		}
	}

	writeUint32(&buf, conv.IntToUint32(len(v.emptyTokenIDs)))
	for _, id := range v.emptyTokenIDs {
		writeInt64(&buf, int64(id))
	}

	return buf.Bytes(), nil
}

// UnmarshalVocabulary decodes a blob produced by MarshalBinary. The
// result does not depend on any tokenizer being available in the
// deserializing process — the blob is fully self-contained.
func UnmarshalVocabulary(b []byte) (*Vocabulary, error) {
	r := bytes.NewReader(b)

	magic, err := readUint32(r)
	if err != nil || magic != vocabMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidVocab)
	}
	version, err := readUint16(r)
	if err != nil || version != vocabVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidVocab, version)
	}

	eosRaw, err := readInt64(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated eos id: %v", ErrInvalidVocab, err)
	}
	eos := TokenID(eosRaw)

	numSpecial, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated special count: %v", ErrInvalidVocab, err)
	}
	specialIDs := make(map[TokenID]struct{}, numSpecial)
	for i := uint32(0); i < numSpecial; i++ {
		id, err := readInt64(r)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated special id: %v", ErrInvalidVocab, err)
		}
		specialIDs[TokenID(id)] = struct{}{}
	}

	numBuckets, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated bucket count: %v", ErrInvalidVocab, err)
	}
	buckets := make([]Bucket, 0, numBuckets)
	for i := uint32(0); i < numBuckets; i++ {
		decodedLen, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated decoded length: %v", ErrInvalidVocab, err)
		}
		decoded := make([]byte, decodedLen)
		if _, err := io.ReadFull(r, decoded); err != nil {
			return nil, fmt.Errorf("%w: truncated decoded bytes: %v", ErrInvalidVocab, err)
		}
		numIDs, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated id count: %v", ErrInvalidVocab, err)
		}
		ids := make([]TokenID, numIDs)
		for j := range ids {
			id, err := readInt64(r)
			if err != nil {
				return nil, fmt.Errorf("%w: truncated bucket id: %v", ErrInvalidVocab, err)
			}
			ids[j] = TokenID(id)
		}
		buckets = append(buckets, Bucket{Decoded: string(decoded), IDs: ids})
	}

	numEmpty, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated empty-id count: %v", ErrInvalidVocab, err)
	}
	emptyTokenIDs := make([]TokenID, numEmpty)
	for i := range emptyTokenIDs {
		id, err := readInt64(r)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated empty id: %v", ErrInvalidVocab, err)
		}
		emptyTokenIDs[i] = TokenID(id)
	}

	return &Vocabulary{
		buckets:       buckets,
		eos:           eos,
		specialIDs:    specialIDs,
		emptyTokenIDs: emptyTokenIDs,
	}, nil
}

func writeUint32(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, n uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], n)
	buf.Write(b[:])
}

func writeInt64(buf *bytes.Buffer, n int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readInt64(r *bytes.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}
