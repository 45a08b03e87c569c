package bitio

import "errors"

// Bit I/O errors
var (
	ErrOutOfData       = errors.New("bitio: out of data")
	ErrInvalidBitCount = errors.New("bitio: bit count must be 0-32")
	ErrValueOverflow   = errors.New("bitio: value does not fit in bit count")
)
