package bitio

// Writer packs unsigned integers MSB first. It is the inverse of Reader and
// is used to build packed sample planes.
type Writer struct {
	buf   []byte
	acc   uint64 // pending bits, right aligned
	nbits uint   // number of pending bits, always < 8 between calls
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteBits appends the low n bits of v.
func (w *Writer) WriteBits(v uint32, n uint) error {
	if n == 0 {
		return nil
	}
	if n > 32 {
		return ErrInvalidBitCount
	}
	if n < 32 && v>>n != 0 {
		return ErrValueOverflow
	}

	w.acc = w.acc<<n | uint64(v)
	w.nbits += n
	for w.nbits >= 8 {
		w.nbits -= 8
		w.buf = append(w.buf, byte(w.acc>>w.nbits))
	}
	w.acc &= 1<<w.nbits - 1
	return nil
}

// PadRow flushes pending bits, zero filling the rest of the byte.
func (w *Writer) PadRow() {
	if w.nbits == 0 {
		return
	}
	w.buf = append(w.buf, byte(w.acc<<(8-w.nbits)))
	w.acc = 0
	w.nbits = 0
}

// Bytes pads the final byte and returns the packed data.
func (w *Writer) Bytes() []byte {
	w.PadRow()
	return w.buf
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return len(w.buf)*8 + int(w.nbits)
}
