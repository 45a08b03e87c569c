// Package huffman implements canonical Huffman decoding for entropy coded
// image data: table construction from code lengths, tree groups covering one
// meta-block, and a symbol decoder with trivial-code and packed-table
// shortcuts.
//
// Codes are read most significant bit first, matching bitio.Reader.
package huffman

import "fmt"

const (
	// MaxCodeLength is the longest code a table may contain
	MaxCodeLength = 32

	// RootBits is the width of the fast lookup table held by every Table
	RootBits = 8
)

// HuffmanCode is a single entry of a lookup table.
// BitLength 0 marks a slot no code of at most RootBits bits reaches.
type HuffmanCode struct {
	BitLength uint8
	Value     uint16
}

// Table is a canonical Huffman decoding table for one alphabet.
type Table struct {
	lengths []uint8
	codes   []uint32 // canonical code per symbol

	// Symbols ordered by (code length, symbol index)
	sorted []uint16

	// Per code length: number of codes, first canonical code and index of
	// the first symbol of that length in sorted
	count     [MaxCodeLength + 1]int
	firstCode [MaxCodeLength + 1]uint64
	offset    [MaxCodeLength + 1]int

	maxLen  int
	trivial bool

	// Fast lookup for codes up to RootBits long, indexed by the next RootBits bits
	root [1 << RootBits]HuffmanCode
}

// BuildTable builds a canonical table from per-symbol code lengths (0 = unused).
//
// Codes are assigned in (length, symbol index) order. The lengths must form a
// complete prefix code; the only tolerated incomplete code is a single used
// symbol, which decodes without consuming any bits.
func BuildTable(lengths []uint8) (*Table, error) {
	if len(lengths) == 0 {
		return nil, fmt.Errorf("%w: empty alphabet", ErrInvalidHuffmanTable)
	}
	if len(lengths) > 1<<16 {
		return nil, fmt.Errorf("%w: alphabet of %d symbols", ErrInvalidHuffmanTable, len(lengths))
	}

	t := &Table{
		lengths: append([]uint8(nil), lengths...),
		codes:   make([]uint32, len(lengths)),
	}

	used := 0
	for symbol, l := range lengths {
		if int(l) > MaxCodeLength {
			return nil, fmt.Errorf("%w: symbol %d has code length %d", ErrInvalidHuffmanTable, symbol, l)
		}
		if l == 0 {
			continue
		}
		t.count[l]++
		used++
		if int(l) > t.maxLen {
			t.maxLen = int(l)
		}
	}
	if used == 0 {
		return nil, fmt.Errorf("%w: all code lengths are zero", ErrInvalidHuffmanTable)
	}

	// Sort symbols by code length, ties kept in symbol order.
	// count[0] stays 0 so offset[1] is 0.
	for l := 1; l <= MaxCodeLength; l++ {
		t.offset[l] = t.offset[l-1] + t.count[l-1]
	}
	t.sorted = make([]uint16, used)
	next := t.offset
	for symbol, l := range lengths {
		if l > 0 {
			t.sorted[next[l]] = uint16(symbol)
			next[l]++
		}
	}

	if used == 1 {
		t.trivial = true
		t.maxLen = 0
		sym := t.sorted[0]
		for i := range t.root {
			t.root[i] = HuffmanCode{BitLength: 0, Value: sym}
		}
		return t, nil
	}

	// Kraft check: every length may use at most the code space left open
	left := int64(1)
	for l := 1; l <= MaxCodeLength; l++ {
		left <<= 1
		left -= int64(t.count[l])
		if left < 0 {
			return nil, fmt.Errorf("%w: over-subscribed at length %d", ErrInvalidHuffmanTable, l)
		}
	}
	if left > 0 {
		return nil, fmt.Errorf("%w: under-subscribed", ErrInvalidHuffmanTable)
	}

	// First code of each length
	code := uint64(0)
	for l := 1; l <= MaxCodeLength; l++ {
		code = (code + uint64(t.count[l-1])) << 1
		t.firstCode[l] = code
	}

	// Assign codes in sorted order
	for l := 1; l <= t.maxLen; l++ {
		for i := 0; i < t.count[l]; i++ {
			sym := t.sorted[t.offset[l]+i]
			t.codes[sym] = uint32(t.firstCode[l] + uint64(i))
		}
	}

	// Fill the root table by replicating every short code over the
	// RootBits-bit keys that start with it
	for l := 1; l <= RootBits && l <= t.maxLen; l++ {
		for i := 0; i < t.count[l]; i++ {
			sym := t.sorted[t.offset[l]+i]
			base := int(t.codes[sym]) << (RootBits - l)
			entry := HuffmanCode{BitLength: uint8(l), Value: sym}
			for j := 0; j < 1<<(RootBits-l); j++ {
				t.root[base+j] = entry
			}
		}
	}

	return t, nil
}

// Code returns the canonical code of symbol and its length.
// ok is false for unused symbols. A trivial table reports length 0.
func (t *Table) Code(symbol int) (code uint32, length uint8, ok bool) {
	if symbol < 0 || symbol >= len(t.lengths) || t.lengths[symbol] == 0 {
		return 0, 0, false
	}
	if t.trivial {
		return 0, 0, true
	}
	return t.codes[symbol], t.lengths[symbol], true
}

// AlphabetSize returns the number of symbols the table was built for.
func (t *Table) AlphabetSize() int {
	return len(t.lengths)
}

// Symbols returns the used symbols in canonical order.
func (t *Table) Symbols() []uint16 {
	return append([]uint16(nil), t.sorted...)
}

// MaxLength returns the number of bits the longest code consumes.
// It is 0 for a trivial table.
func (t *Table) MaxLength() int {
	return t.maxLen
}

// IsTrivial reports whether the table has a single symbol.
func (t *Table) IsTrivial() bool {
	return t.trivial
}

// TrivialSymbol returns the only symbol of a trivial table.
func (t *Table) TrivialSymbol() uint16 {
	return t.sorted[0]
}

// Lookup returns the root table entry for the next RootBits bits.
func (t *Table) Lookup(key uint32) HuffmanCode {
	return t.root[key&(1<<RootBits-1)]
}

// decodePattern runs the canonical walk over the top width bits of pattern.
// It reports the symbol and the bits used, or ok=false when no code of at
// most width bits matches.
func (t *Table) decodePattern(pattern uint32, width uint) (symbol uint16, n uint, ok bool) {
	if t.trivial {
		return t.sorted[0], 0, true
	}

	code := uint64(0)
	for l := 1; l <= t.maxLen && uint(l) <= width; l++ {
		bit := (pattern >> (width - uint(l))) & 1
		code = code<<1 | uint64(bit)
		if sym, found := t.match(l, code); found {
			return sym, uint(l), true
		}
	}
	return 0, 0, false
}

// match checks whether code is one of the codes of length l.
func (t *Table) match(l int, code uint64) (uint16, bool) {
	c := t.count[l]
	if c == 0 || code < t.firstCode[l] {
		return 0, false
	}
	idx := code - t.firstCode[l]
	if idx >= uint64(c) {
		return 0, false
	}
	return t.sorted[t.offset[l]+int(idx)], true
}
