package huffman

import "errors"

// Huffman errors
var (
	// ErrInvalidHuffmanTable is returned when code lengths do not form a prefix code
	ErrInvalidHuffmanTable = errors.New("huffman: invalid Huffman table")

	// ErrCorruptStream is returned when the bitstream does not match any code
	ErrCorruptStream = errors.New("huffman: corrupt stream")
)
