package photometric

import (
	"fmt"

	"github.com/cocosip/go-pixelcore/bitio"
)

// Gray decodes single-sample grayscale pixels.
type Gray struct {
	ch          channel
	whiteIsZero bool
}

// NewBlackIsZero creates a decoder where sample 0 is black.
func NewBlackIsZero(bitsPerSample uint16) (*Gray, error) {
	ch, err := newChannel(bitsPerSample)
	if err != nil {
		return nil, err
	}
	return &Gray{ch: ch}, nil
}

// NewWhiteIsZero creates a decoder where sample 0 is white.
func NewWhiteIsZero(bitsPerSample uint16) (*Gray, error) {
	ch, err := newChannel(bitsPerSample)
	if err != nil {
		return nil, err
	}
	return &Gray{ch: ch, whiteIsZero: true}, nil
}

// Decode reads one sample per pixel from planes[0].
func (d *Gray) Decode(planes [][]byte, dst Buffer, region Rect) error {
	if err := checkRegion(region); err != nil {
		return err
	}
	if err := checkPlanes(planes, 1); err != nil {
		return err
	}

	r := bitio.NewReader(planes[0])
	row := make([]Color, region.Width)
	for y := region.Top; y < region.Top+region.Height; y++ {
		for i := range row {
			l, err := d.ch.read(r)
			if err != nil {
				return fmt.Errorf("gray at (%d, %d): %w", region.Left+i, y, err)
			}
			if d.whiteIsZero {
				l = 1 - l
			}
			row[i] = Color{R: l, G: l, B: l, A: 1}
		}
		flushRow(dst, region.Left, y, row)
		r.NextRow()
	}

	return nil
}

// Palette decodes indexed pixels through a color map.
type Palette struct {
	bits     uint
	colorMap []Color
}

// NewPalette creates a decoder for bitsPerSample-wide indexes into colorMap.
func NewPalette(bitsPerSample uint16, colorMap []Color) (*Palette, error) {
	if bitsPerSample == 0 || bitsPerSample > 16 {
		return nil, fmt.Errorf("%w: %d bits per palette index", ErrInvalidConfiguration, bitsPerSample)
	}
	if len(colorMap) == 0 {
		return nil, fmt.Errorf("%w: empty color map", ErrInvalidConfiguration)
	}
	return &Palette{bits: uint(bitsPerSample), colorMap: colorMap}, nil
}

// ColorMapFromTIFF converts a TIFF ColorMap (all reds, then all greens, then
// all blues, 16 bits each) into colors.
func ColorMapFromTIFF(values []uint16) ([]Color, error) {
	if len(values) == 0 || len(values)%3 != 0 {
		return nil, fmt.Errorf("%w: color map of %d values", ErrInvalidConfiguration, len(values))
	}
	n := len(values) / 3
	colors := make([]Color, n)
	for i := range colors {
		colors[i] = Color{
			R: float32(values[i]) / 0xffff,
			G: float32(values[n+i]) / 0xffff,
			B: float32(values[2*n+i]) / 0xffff,
			A: 1,
		}
	}
	return colors, nil
}

// Decode reads one index per pixel from planes[0].
func (d *Palette) Decode(planes [][]byte, dst Buffer, region Rect) error {
	if err := checkRegion(region); err != nil {
		return err
	}
	if err := checkPlanes(planes, 1); err != nil {
		return err
	}

	r := bitio.NewReader(planes[0])
	row := make([]Color, region.Width)
	for y := region.Top; y < region.Top+region.Height; y++ {
		for i := range row {
			idx, err := r.ReadBits(d.bits)
			if err != nil {
				return fmt.Errorf("index at (%d, %d): %w", region.Left+i, y, err)
			}
			if int(idx) >= len(d.colorMap) {
				return fmt.Errorf("%w: index %d at (%d, %d), map has %d entries",
					ErrPaletteIndex, idx, region.Left+i, y, len(d.colorMap))
			}
			row[i] = d.colorMap[idx]
		}
		flushRow(dst, region.Left, y, row)
		r.NextRow()
	}

	return nil
}
