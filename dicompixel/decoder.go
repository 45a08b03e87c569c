package dicompixel

import (
	"fmt"
	"image"
	"strings"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-pixelcore/photometric"
)

// Options supplies what frame metadata does not carry.
type Options struct {
	// TransferSyntaxUID of the frame data, empty for native little endian
	TransferSyntaxUID string

	// ColorMap is the PALETTE COLOR lookup table, see ColorMapFromDataset
	ColorMap []photometric.Color

	// Coefficients for YBR_FULL, zero selects BT601
	Coefficients photometric.Coefficients
}

// Interpretation maps a DICOM Photometric Interpretation to its photometric
// counterpart.
func Interpretation(pi string) (photometric.Interpretation, error) {
	switch strings.TrimSpace(pi) {
	case "MONOCHROME1":
		return photometric.WhiteIsZero, nil
	case "MONOCHROME2":
		return photometric.BlackIsZero, nil
	case "RGB":
		return photometric.RGB, nil
	case "PALETTE COLOR":
		return photometric.Paletted, nil
	case "YBR_FULL":
		return photometric.YCbCr, nil
	case "CMYK":
		return photometric.Separated, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPhotometric, pi)
	}
}

// NewDecoder builds the photometric decoder for frames described by info.
func NewDecoder(info *imagetypes.FrameInfo, opts Options) (photometric.Decoder, error) {
	g, err := geometryOf(info, opts.TransferSyntaxUID)
	if err != nil {
		return nil, err
	}
	pi, err := Interpretation(info.PhotometricInterpretation)
	if err != nil {
		return nil, err
	}

	bits := make([]uint16, g.samples)
	for i := range bits {
		bits[i] = uint16(g.stored)
	}
	dec, err := photometric.New(pi, g.layout(), photometric.Config{
		BitsPerSample: bits,
		ColorMap:      opts.ColorMap,
		Coefficients:  opts.Coefficients,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.TrimSpace(info.PhotometricInterpretation), err)
	}
	return dec, nil
}

// DecodeFrame decodes frame index of src into dst.
func DecodeFrame(src FrameSource, index int, dst photometric.Buffer, opts Options) error {
	info := src.GetFrameInfo()
	data, err := src.GetFrame(index)
	if err != nil {
		return err
	}

	f, err := Unpack(info, opts.TransferSyntaxUID, data)
	if err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}
	dec, err := NewDecoder(info, opts)
	if err != nil {
		return err
	}
	if err := dec.Decode(f.Planes, dst, photometric.Rect{Width: f.Width, Height: f.Height}); err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}
	return nil
}

// DecodeImage decodes frame index of src into a new 16-bit image.
func DecodeImage(src FrameSource, index int, opts Options) (*image.NRGBA64, error) {
	info := src.GetFrameInfo()
	if info == nil {
		return nil, fmt.Errorf("%w: missing", ErrInvalidFrameInfo)
	}
	buf, img := photometric.NewNRGBA64Buffer(int(info.Width), int(info.Height))
	if err := DecodeFrame(src, index, buf, opts); err != nil {
		return nil, err
	}
	return img, nil
}

// ColorMapFromLUT builds a color map from the red, green and blue palette
// lookup tables whose entries are bits wide (8 or 16, the third value of the
// LUT descriptor). The first mapped index is assumed to be 0.
func ColorMapFromLUT(red, green, blue []uint16, bits int) ([]photometric.Color, error) {
	if len(red) == 0 || len(red) != len(green) || len(red) != len(blue) {
		return nil, fmt.Errorf("%w: LUT sizes %d/%d/%d", ErrInvalidFrameInfo, len(red), len(green), len(blue))
	}
	if bits != 8 && bits != 16 {
		return nil, fmt.Errorf("%w: %d bit LUT entries", ErrInvalidFrameInfo, bits)
	}

	factor := photometric.Factor(uint16(bits))
	colors := make([]photometric.Color, len(red))
	for i := range colors {
		colors[i] = photometric.Color{
			R: photometric.Normalize(uint32(red[i]), factor),
			G: photometric.Normalize(uint32(green[i]), factor),
			B: photometric.Normalize(uint32(blue[i]), factor),
			A: 1,
		}
	}
	return colors, nil
}
