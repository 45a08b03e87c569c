package photometric

import "errors"

// Photometric errors
var (
	// ErrInvalidConfiguration is returned for bit depths, tables or regions
	// a decoder cannot work with
	ErrInvalidConfiguration = errors.New("photometric: invalid configuration")

	// ErrPaletteIndex is returned when a sample indexes past the color map
	ErrPaletteIndex = errors.New("photometric: palette index out of range")

	// ErrUnsupported is returned when no decoder is registered for an interpretation
	ErrUnsupported = errors.New("photometric: unsupported interpretation")
)
