// Package inverted encodes and decodes the posting table of a gram index.
//
// The binary format is:
//
//	[entry_count:uvarint] entry*
//
// Entry:
//
//	[gram_len:uvarint][gram_bytes][posting_count:uvarint][delta:uvarint]*
//
// Postings are strictly increasing document ordinals. The first delta is
// the first ordinal, each following delta is the gap to the previous one.
// Entries are written in ascending gram order.
package inverted

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrTruncated = errors.New("posting table truncated")
	ErrUnsorted  = errors.New("posting table not sorted")
)

// Entry is one gram and the ordinals of the documents containing it.
type Entry struct {
	Gram     string
	Postings []uint64
}

// EncodePostings encodes entries. Entries are sorted by gram first; each
// posting list must already be strictly increasing.
func EncodePostings(entries []Entry) ([]byte, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int {
		switch {
		case a.Gram < b.Gram:
			return -1
		case a.Gram > b.Gram:
			return 1
		}
		return 0
	})

	size := binary.MaxVarintLen64
	for _, e := range sorted {
		size += 2*binary.MaxVarintLen64 + len(e.Gram) + len(e.Postings)*2
	}
	buf := make([]byte, 0, size)
	buf = binary.AppendUvarint(buf, uint64(len(sorted)))

	for i, e := range sorted {
		if i > 0 && sorted[i-1].Gram == e.Gram {
			return nil, fmt.Errorf("%w: duplicate gram %q", ErrUnsorted, e.Gram)
		}
		buf = binary.AppendUvarint(buf, uint64(len(e.Gram)))
		buf = append(buf, e.Gram...)
		buf = binary.AppendUvarint(buf, uint64(len(e.Postings)))
		var prev uint64
		for j, p := range e.Postings {
			if j > 0 && p <= prev {
				return nil, fmt.Errorf("%w: gram %q posting %d after %d", ErrUnsorted, e.Gram, p, prev)
			}
			buf = binary.AppendUvarint(buf, p-prev)
			prev = p
		}
	}
	return buf, nil
}

// DecodePostings decodes a table produced by EncodePostings.
func DecodePostings(data []byte) ([]Entry, error) {
	r := reader{data: data}
	count, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	// Every entry takes at least two bytes.
	if count > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", ErrTruncated, count, len(data))
	}

	entries := make([]Entry, 0, count)
	for range count {
		gramLen, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		gram, err := r.bytes(gramLen)
		if err != nil {
			return nil, err
		}
		n, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		if n > uint64(len(r.data)-r.pos) {
			return nil, fmt.Errorf("%w: %d postings for gram %q", ErrTruncated, n, gram)
		}
		postings := make([]uint64, n)
		var prev uint64
		for j := range postings {
			d, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			if j > 0 && d == 0 {
				return nil, fmt.Errorf("%w: repeated posting in gram %q", ErrUnsorted, gram)
			}
			prev += d
			postings[j] = prev
		}
		if len(entries) > 0 && entries[len(entries)-1].Gram >= string(gram) {
			return nil, fmt.Errorf("%w: gram %q after %q", ErrUnsorted, gram, entries[len(entries)-1].Gram)
		}
		entries = append(entries, Entry{Gram: string(gram), Postings: postings})
	}
	return entries, nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad varint at offset %d", ErrTruncated, r.pos)
	}
	r.pos += n
	return v, nil
}

func (r *reader) bytes(n uint64) ([]byte, error) {
	if n > uint64(len(r.data)-r.pos) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, n, r.pos)
	}
	b := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}
