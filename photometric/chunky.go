package photometric

import (
	"fmt"

	"github.com/cocosip/go-pixelcore/bitio"
)

// Chunky decodes pixels whose samples are interleaved in a single plane.
type Chunky struct {
	channels []channel
	model    model
}

// NewRGB creates a decoder for interleaved RGB, or RGBA when bitsPerSample
// has a fourth entry. A fourth sample without an alpha mode is treated as
// unassociated alpha.
func NewRGB(bitsPerSample []uint16, alpha AlphaMode) (*Chunky, error) {
	if len(bitsPerSample) == 4 && alpha == AlphaNone {
		alpha = AlphaUnassociated
	}
	if len(bitsPerSample) == 3 {
		alpha = AlphaNone
	}
	return newChunky(bitsPerSample, rgbModel(alpha))
}

// NewCMYK creates a decoder for interleaved CMYK (TIFF separated with the
// default ink set).
func NewCMYK(bitsPerSample []uint16) (*Chunky, error) {
	return newChunky(bitsPerSample, model{kind: modelCMYK})
}

// NewYCbCr creates a decoder for interleaved full range YCbCr without
// subsampling. A zero coeff selects BT601.
func NewYCbCr(bitsPerSample []uint16, coeff Coefficients) (*Chunky, error) {
	channels, err := newChannels(bitsPerSample, 3)
	if err != nil {
		return nil, err
	}
	m, err := yccModel(coeff, channels)
	if err != nil {
		return nil, err
	}
	return &Chunky{channels: channels, model: m}, nil
}

func newChunky(bitsPerSample []uint16, m model) (*Chunky, error) {
	channels, err := newChannels(bitsPerSample, m.samples())
	if err != nil {
		return nil, err
	}
	return &Chunky{channels: channels, model: m}, nil
}

// Decode reads interleaved samples from planes[0].
func (d *Chunky) Decode(planes [][]byte, dst Buffer, region Rect) error {
	if err := checkRegion(region); err != nil {
		return err
	}
	if err := checkPlanes(planes, 1); err != nil {
		return err
	}

	r := bitio.NewReader(planes[0])
	row := make([]Color, region.Width)
	var v [4]float32
	for y := region.Top; y < region.Top+region.Height; y++ {
		for i := range row {
			for c, ch := range d.channels {
				s, err := ch.read(r)
				if err != nil {
					return fmt.Errorf("sample %d at (%d, %d): %w", c, region.Left+i, y, err)
				}
				v[c] = s
			}
			row[i] = d.model.color(&v)
		}
		flushRow(dst, region.Left, y, row)
		r.NextRow()
	}

	return nil
}
