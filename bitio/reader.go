// Package bitio reads and writes MSB-first packed sample data.
//
// A Reader holds a read-only view of one byte plane. Samples are packed
// most significant bit first, and image rows start on byte boundaries, so a
// decoder calls NextRow at the end of every row to drop the padding bits the
// row left in its last byte.
package bitio

import "fmt"

// Reader extracts unsigned integers of 0-32 bits from a byte plane.
type Reader struct {
	data       []byte
	byteOffset int
	bitOffset  uint // 0-7, bits of data[byteOffset] already consumed
	rowStart   int
}

// NewReader creates a reader over data. Rows are assumed to be byte aligned.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBits reads the next n bits as an unsigned integer, MSB first.
// Reading 0 bits returns 0 and leaves the cursor alone. When fewer than n bits
// remain the cursor is not moved and the error wraps ErrOutOfData.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n > 32 {
		return 0, ErrInvalidBitCount
	}
	if int(n) > r.BitsRemaining() {
		return 0, fmt.Errorf("read %d bits at byte %d bit %d: %w", n, r.byteOffset, r.bitOffset, ErrOutOfData)
	}

	v := r.peek(n)
	r.advance(n)
	return v, nil
}

// PeekBits returns the next n bits without consuming them. Bits beyond the
// end of the plane read as zero. n is clamped to 32.
func (r *Reader) PeekBits(n uint) uint32 {
	if n == 0 {
		return 0
	}
	if n > 32 {
		n = 32
	}
	return r.peek(n)
}

// SkipBits advances the cursor by n bits.
func (r *Reader) SkipBits(n uint) error {
	if int(n) > r.BitsRemaining() {
		return fmt.Errorf("skip %d bits at byte %d bit %d: %w", n, r.byteOffset, r.bitOffset, ErrOutOfData)
	}
	r.advance(n)
	return nil
}

// NextRow moves the cursor to the first byte boundary, discarding the unread
// bits of the current row's last byte. Leftover bits never carry over into
// the next row.
func (r *Reader) NextRow() {
	if r.bitOffset > 0 {
		r.byteOffset++
		r.bitOffset = 0
	}
	r.rowStart = r.byteOffset
}

// BitsRemaining returns the number of unread bits.
func (r *Reader) BitsRemaining() int {
	return (len(r.data)-r.byteOffset)*8 - int(r.bitOffset)
}

// Offset returns the cursor position.
func (r *Reader) Offset() (byteOffset int, bitOffset uint) {
	return r.byteOffset, r.bitOffset
}

// RowStart returns the byte offset of the current row.
func (r *Reader) RowStart() int {
	return r.rowStart
}

// peek assembles up to 5 bytes covering the next n bits. Bytes past the end
// of data count as zero.
func (r *Reader) peek(n uint) uint32 {
	need := r.bitOffset + n // bits counted from the start of the current byte
	nbytes := int((need + 7) / 8)

	var acc uint64
	for i := 0; i < nbytes; i++ {
		acc <<= 8
		if p := r.byteOffset + i; p < len(r.data) {
			acc |= uint64(r.data[p])
		}
	}

	acc >>= uint(nbytes*8) - need
	return uint32(acc & (1<<n - 1))
}

func (r *Reader) advance(n uint) {
	pos := r.bitOffset + n
	r.byteOffset += int(pos >> 3)
	r.bitOffset = pos & 7
}
