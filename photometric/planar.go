package photometric

import (
	"fmt"

	"github.com/cocosip/go-pixelcore/bitio"
)

// Planar decodes pixels whose samples are stored in separate planes, one
// per channel. Each plane may use its own bit depth and is realigned to a
// byte boundary independently at the end of every row.
type Planar struct {
	channels []channel
	model    model
}

// NewRGBPlanar creates a decoder for RGB stored as three planes.
func NewRGBPlanar(bitsPerSample []uint16) (*Planar, error) {
	return newPlanar(bitsPerSample, model{kind: modelRGB})
}

// NewRGBAPlanar creates a decoder for RGB plus an alpha plane.
func NewRGBAPlanar(bitsPerSample []uint16, alpha AlphaMode) (*Planar, error) {
	if alpha == AlphaNone {
		alpha = AlphaUnassociated
	}
	return newPlanar(bitsPerSample, rgbModel(alpha))
}

// NewCMYKPlanar creates a decoder for CMYK stored as four planes.
func NewCMYKPlanar(bitsPerSample []uint16) (*Planar, error) {
	return newPlanar(bitsPerSample, model{kind: modelCMYK})
}

// NewYCbCrPlanar creates a decoder for full range YCbCr stored as three
// planes. A zero coeff selects BT601.
func NewYCbCrPlanar(bitsPerSample []uint16, coeff Coefficients) (*Planar, error) {
	channels, err := newChannels(bitsPerSample, 3)
	if err != nil {
		return nil, err
	}
	m, err := yccModel(coeff, channels)
	if err != nil {
		return nil, err
	}
	return &Planar{channels: channels, model: m}, nil
}

func newPlanar(bitsPerSample []uint16, m model) (*Planar, error) {
	channels, err := newChannels(bitsPerSample, m.samples())
	if err != nil {
		return nil, err
	}
	return &Planar{channels: channels, model: m}, nil
}

// Planes returns the number of planes Decode expects.
func (d *Planar) Planes() int {
	return len(d.channels)
}

// Decode reads one sample per pixel from every plane and writes the
// combined colors into dst, row by row.
func (d *Planar) Decode(planes [][]byte, dst Buffer, region Rect) error {
	if err := checkRegion(region); err != nil {
		return err
	}
	if err := checkPlanes(planes, len(d.channels)); err != nil {
		return err
	}

	readers := make([]*bitio.Reader, len(d.channels))
	for i := range readers {
		readers[i] = bitio.NewReader(planes[i])
	}

	row := make([]Color, region.Width)
	var v [4]float32
	for y := region.Top; y < region.Top+region.Height; y++ {
		for i := range row {
			for c, ch := range d.channels {
				s, err := ch.read(readers[c])
				if err != nil {
					return fmt.Errorf("plane %d at (%d, %d): %w", c, region.Left+i, y, err)
				}
				v[c] = s
			}
			row[i] = d.model.color(&v)
		}
		flushRow(dst, region.Left, y, row)

		for _, r := range readers {
			r.NextRow()
		}
	}

	return nil
}
