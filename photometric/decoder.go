// Package photometric turns raw packed samples into normalized colors.
//
// Every decoder is built once from the declared bit depths (plus a color
// map or luma weights where the interpretation needs one) and then fills
// any number of destination rectangles. Samples are normalized to [0, 1]
// by dividing by 2^bits - 1 before any color transform. Rows are filled
// top to bottom, and each plane is realigned to a byte boundary after every
// row.
//
// Decoders hold no mutable state, so Decode may run concurrently for
// disjoint regions backed by disjoint planes.
package photometric

import "fmt"

// Decoder fills region of dst from the sample planes.
type Decoder interface {
	Decode(planes [][]byte, dst Buffer, region Rect) error
}

var (
	_ Decoder = (*Planar)(nil)
	_ Decoder = (*Chunky)(nil)
	_ Decoder = (*Gray)(nil)
	_ Decoder = (*Palette)(nil)
)

// Interpretation is a photometric interpretation. Values follow the TIFF
// PhotometricInterpretation tag.
type Interpretation uint16

const (
	WhiteIsZero Interpretation = 0
	BlackIsZero Interpretation = 1
	RGB         Interpretation = 2
	Paletted    Interpretation = 3
	Separated   Interpretation = 5 // CMYK
	YCbCr       Interpretation = 6
)

func (pi Interpretation) String() string {
	switch pi {
	case WhiteIsZero:
		return "WhiteIsZero"
	case BlackIsZero:
		return "BlackIsZero"
	case RGB:
		return "RGB"
	case Paletted:
		return "Palette"
	case Separated:
		return "CMYK"
	case YCbCr:
		return "YCbCr"
	default:
		return fmt.Sprintf("Interpretation(%d)", uint16(pi))
	}
}

// Layout is the sample layout. Values follow the TIFF PlanarConfiguration tag.
type Layout uint16

const (
	LayoutChunky Layout = 1
	LayoutPlanar Layout = 2
)

func (l Layout) String() string {
	switch l {
	case LayoutChunky:
		return "chunky"
	case LayoutPlanar:
		return "planar"
	default:
		return fmt.Sprintf("Layout(%d)", uint16(l))
	}
}

// Config carries everything the container layer supplies to build a decoder.
type Config struct {
	// BitsPerSample lists the depth of every sample of a pixel
	BitsPerSample []uint16

	// Alpha describes a fourth RGB sample
	Alpha AlphaMode

	// ColorMap is required for Paletted
	ColorMap []Color

	// Coefficients for YCbCr, zero selects BT601
	Coefficients Coefficients
}

// New builds the decoder registered for pi and layout in the default registry.
func New(pi Interpretation, layout Layout, cfg Config) (Decoder, error) {
	v, err := Lookup(pi, layout)
	if err != nil {
		return nil, err
	}
	return v.New(cfg)
}

func singleSample(cfg Config) (uint16, error) {
	if len(cfg.BitsPerSample) != 1 {
		return 0, fmt.Errorf("%w: %d samples per pixel, want 1", ErrInvalidConfiguration, len(cfg.BitsPerSample))
	}
	return cfg.BitsPerSample[0], nil
}
