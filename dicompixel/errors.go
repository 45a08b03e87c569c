package dicompixel

import "errors"

var (
	// ErrInvalidFrameInfo is returned when frame metadata is missing or inconsistent
	ErrInvalidFrameInfo = errors.New("dicompixel: invalid frame info")

	// ErrUnsupportedTransferSyntax is returned for encapsulated syntaxes other than RLE Lossless
	ErrUnsupportedTransferSyntax = errors.New("dicompixel: unsupported transfer syntax")

	// ErrUnsupportedPhotometric is returned for photometric interpretations without a decoder
	ErrUnsupportedPhotometric = errors.New("dicompixel: unsupported photometric interpretation")

	// ErrFrameTooShort is returned when a frame holds fewer bytes than its geometry needs
	ErrFrameTooShort = errors.New("dicompixel: frame too short")

	// ErrFrameNotFound is returned for a frame index past the end of the pixel data
	ErrFrameNotFound = errors.New("dicompixel: frame not found")

	// ErrCorruptRLE is returned for malformed RLE Lossless headers or segments
	ErrCorruptRLE = errors.New("dicompixel: corrupt RLE frame")
)
