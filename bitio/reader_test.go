package bitio

import (
	"errors"
	"testing"
)

func TestReadBits(t *testing.T) {
	data := []byte{0xA5, 0x3C, 0xFF, 0x01}

	tests := []struct {
		name  string
		reads []uint
		want  []uint32
	}{
		{
			name:  "single bits",
			reads: []uint{1, 1, 1, 1, 1, 1, 1, 1},
			want:  []uint32{1, 0, 1, 0, 0, 1, 0, 1},
		},
		{
			name:  "nibbles",
			reads: []uint{4, 4, 4, 4},
			want:  []uint32{0xA, 0x5, 0x3, 0xC},
		},
		{
			name:  "across byte boundary",
			reads: []uint{3, 7, 6},
			want:  []uint32{0x5, 0x14, 0x3C},
		},
		{
			name:  "full word",
			reads: []uint{32},
			want:  []uint32{0xA53CFF01},
		},
		{
			name:  "unaligned word",
			reads: []uint{4, 28},
			want:  []uint32{0xA, 0x53CFF01},
		},
		{
			name:  "zero width is a no-op",
			reads: []uint{0, 8, 0, 8},
			want:  []uint32{0, 0xA5, 0, 0x3C},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(data)
			for i, n := range tt.reads {
				got, err := r.ReadBits(n)
				if err != nil {
					t.Fatalf("read %d: unexpected error: %v", i, err)
				}
				if got != tt.want[i] {
					t.Errorf("read %d (%d bits) = %#x, want %#x", i, n, got, tt.want[i])
				}
			}
		})
	}
}

func TestReadBitsZeroDoesNotMove(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	before, beforeBit := r.Offset()
	v, err := r.ReadBits(0)
	if err != nil || v != 0 {
		t.Fatalf("ReadBits(0) = %d, %v; want 0, nil", v, err)
	}
	after, afterBit := r.Offset()
	if before != after || beforeBit != afterBit {
		t.Errorf("cursor moved from (%d,%d) to (%d,%d)", before, beforeBit, after, afterBit)
	}
}

func TestReadBitsOutOfData(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		consume uint
		read    uint
	}{
		{"empty buffer", 0, 0, 1},
		{"one short", 2, 0, 17},
		{"after partial consume", 2, 9, 8},
		{"exactly exhausted", 4, 32, 1},
		{"word past end", 3, 0, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(make([]byte, tt.size))
			if tt.consume > 0 {
				if err := r.SkipBits(tt.consume); err != nil {
					t.Fatalf("SkipBits(%d): %v", tt.consume, err)
				}
			}
			remaining := r.BitsRemaining()

			_, err := r.ReadBits(tt.read)
			if !errors.Is(err, ErrOutOfData) {
				t.Fatalf("ReadBits(%d) error = %v, want ErrOutOfData", tt.read, err)
			}
			if r.BitsRemaining() != remaining {
				t.Errorf("failed read consumed bits: remaining %d, want %d", r.BitsRemaining(), remaining)
			}
		})
	}
}

func TestReadBitsInvalidCount(t *testing.T) {
	r := NewReader(make([]byte, 8))
	if _, err := r.ReadBits(33); !errors.Is(err, ErrInvalidBitCount) {
		t.Errorf("ReadBits(33) error = %v, want ErrInvalidBitCount", err)
	}
}

func TestNextRowRealigns(t *testing.T) {
	// Rows of 3 samples x 3 bits = 9 bits, padded to 2 bytes.
	// Row 0: 101 110 011 + 7 padding bits (all ones so leaks would show)
	// Row 1: 010 001 111 + padding
	data := []byte{0xB9, 0xFF, 0x47, 0xFF}
	want := [][]uint32{{5, 6, 3}, {2, 1, 7}}

	r := NewReader(data)
	for y, row := range want {
		for x, w := range row {
			got, err := r.ReadBits(3)
			if err != nil {
				t.Fatalf("row %d col %d: %v", y, x, err)
			}
			if got != w {
				t.Errorf("row %d col %d = %d, want %d", y, x, got, w)
			}
		}
		r.NextRow()
		if _, bit := r.Offset(); bit != 0 {
			t.Errorf("after NextRow bit offset = %d, want 0", bit)
		}
	}
	if r.RowStart() != 4 {
		t.Errorf("RowStart() = %d, want 4", r.RowStart())
	}
}

func TestNextRowAligned(t *testing.T) {
	// A row that ends on a byte boundary must not skip a byte.
	r := NewReader([]byte{0x12, 0x34})
	if _, err := r.ReadBits(8); err != nil {
		t.Fatal(err)
	}
	r.NextRow()
	got, err := r.ReadBits(8)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x34 {
		t.Errorf("got %#x, want 0x34", got)
	}
}

func TestPeekBits(t *testing.T) {
	r := NewReader([]byte{0xC3})
	if got := r.PeekBits(2); got != 3 {
		t.Errorf("PeekBits(2) = %d, want 3", got)
	}
	if got := r.PeekBits(12); got != 0xC30 {
		t.Errorf("PeekBits(12) past end = %#x, want 0xc30", got)
	}
	if r.BitsRemaining() != 8 {
		t.Errorf("peek consumed bits: remaining %d", r.BitsRemaining())
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	widths := []uint{1, 3, 4, 7, 8, 12, 16, 23, 32}
	w := NewWriter()
	var values []uint32
	for i, n := range widths {
		v := uint32(0x9E3779B9*uint32(i+1)) >> (32 - n)
		values = append(values, v)
		if err := w.WriteBits(v, n); err != nil {
			t.Fatalf("WriteBits(%#x, %d): %v", v, n, err)
		}
	}
	if w.Len() != 106 {
		t.Errorf("Len() = %d, want 106", w.Len())
	}

	r := NewReader(w.Bytes())
	for i, n := range widths {
		got, err := r.ReadBits(n)
		if err != nil {
			t.Fatalf("ReadBits(%d): %v", n, err)
		}
		if got != values[i] {
			t.Errorf("value %d = %#x, want %#x", i, got, values[i])
		}
	}
}

func TestWriterOverflow(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBits(8, 3); !errors.Is(err, ErrValueOverflow) {
		t.Errorf("WriteBits(8, 3) error = %v, want ErrValueOverflow", err)
	}
	if err := w.WriteBits(1, 33); !errors.Is(err, ErrInvalidBitCount) {
		t.Errorf("WriteBits(1, 33) error = %v, want ErrInvalidBitCount", err)
	}
}
