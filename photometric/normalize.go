package photometric

import (
	"fmt"

	"github.com/cocosip/go-pixelcore/bitio"
)

// MaxBitsPerSample is the widest sample a decoder accepts
const MaxBitsPerSample = 32

// Factor returns 2^bits - 1, the divisor mapping a bits-wide sample to [0, 1].
func Factor(bits uint16) float64 {
	return float64(uint64(1)<<bits - 1)
}

// Normalize maps a raw sample to [0, 1] with a precomputed factor.
func Normalize(sample uint32, factor float64) float32 {
	return float32(float64(sample) / factor)
}

// channel is one sample of a pixel with its normalization factor.
type channel struct {
	bits   uint
	factor float64
}

func newChannel(bits uint16) (channel, error) {
	if bits == 0 || bits > MaxBitsPerSample {
		return channel{}, fmt.Errorf("%w: %d bits per sample", ErrInvalidConfiguration, bits)
	}
	return channel{bits: uint(bits), factor: Factor(bits)}, nil
}

func newChannels(bitsPerSample []uint16, want int) ([]channel, error) {
	if len(bitsPerSample) != want {
		return nil, fmt.Errorf("%w: %d samples per pixel, want %d", ErrInvalidConfiguration, len(bitsPerSample), want)
	}
	channels := make([]channel, want)
	for i, bits := range bitsPerSample {
		ch, err := newChannel(bits)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		channels[i] = ch
	}
	return channels, nil
}

// read reads and normalizes one sample.
func (c channel) read(r *bitio.Reader) (float32, error) {
	s, err := r.ReadBits(c.bits)
	if err != nil {
		return 0, err
	}
	return float32(float64(s) / c.factor), nil
}

func checkRegion(region Rect) error {
	if region.Width < 0 || region.Height < 0 {
		return fmt.Errorf("%w: region %dx%d", ErrInvalidConfiguration, region.Width, region.Height)
	}
	return nil
}

func checkPlanes(planes [][]byte, want int) error {
	if len(planes) < want {
		return fmt.Errorf("%w: %d planes, want %d", ErrInvalidConfiguration, len(planes), want)
	}
	return nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
