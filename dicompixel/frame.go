// Package dicompixel feeds DICOM pixel data to the photometric decoders.
//
// Native (uncompressed little endian) and RLE Lossless frames are unpacked
// into MSB-first sample planes whose rows start on byte boundaries, then
// decoded with the photometric variant matching the frame's Photometric
// Interpretation. Signed samples are rebased to unsigned by adding
// 2^(BitsStored-1) so the darkest value maps to 0.
package dicompixel

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-pixelcore/bitio"
	"github.com/cocosip/go-pixelcore/compression"
	"github.com/cocosip/go-pixelcore/photometric"
)

const implicitVRLittleEndian = "1.2.840.10008.1.2"

// RLE Lossless frames start with a header of 16 little endian uint32:
// the segment count followed by up to 15 segment offsets.
const (
	rleHeaderSize  = 64
	rleMaxSegments = 15
)

func isRLE(transferSyntaxUID string) bool {
	return transferSyntaxUID == transfer.RLELossless.UID().UID()
}

func checkTransferSyntax(uid string) error {
	switch uid {
	case "", implicitVRLittleEndian,
		transfer.ExplicitVRLittleEndian.UID().UID(),
		transfer.RLELossless.UID().UID():
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedTransferSyntax, uid)
}

// geometry is the validated sample layout of a frame.
type geometry struct {
	width, height int
	samples       int
	allocated     int
	stored        int
	shift         int // bits below the stored value, HighBit+1-BitsStored
	signed        bool
	planar        bool
}

func geometryOf(info *imagetypes.FrameInfo, transferSyntaxUID string) (geometry, error) {
	if info == nil {
		return geometry{}, fmt.Errorf("%w: missing", ErrInvalidFrameInfo)
	}

	g := geometry{
		width:     int(info.Width),
		height:    int(info.Height),
		samples:   int(info.SamplesPerPixel),
		allocated: int(info.BitsAllocated),
		stored:    int(info.BitsStored),
		signed:    info.PixelRepresentation == 1,
		planar:    info.PlanarConfiguration == 1 && info.SamplesPerPixel > 1,
	}
	if g.samples == 0 {
		g.samples = 1
	}
	if g.stored == 0 {
		g.stored = g.allocated
	}

	if g.width <= 0 || g.height <= 0 {
		return geometry{}, fmt.Errorf("%w: %dx%d", ErrInvalidFrameInfo, g.width, g.height)
	}
	switch g.samples {
	case 1, 3, 4:
	default:
		return geometry{}, fmt.Errorf("%w: %d samples per pixel", ErrInvalidFrameInfo, g.samples)
	}
	switch g.allocated {
	case 1, 8, 16, 32:
	default:
		return geometry{}, fmt.Errorf("%w: %d bits allocated", ErrInvalidFrameInfo, g.allocated)
	}
	if g.stored > g.allocated {
		return geometry{}, fmt.Errorf("%w: %d bits stored in %d allocated", ErrInvalidFrameInfo, g.stored, g.allocated)
	}

	highBit := int(info.HighBit)
	if highBit == 0 {
		highBit = g.stored - 1
	}
	if highBit < g.stored-1 || highBit >= g.allocated {
		return geometry{}, fmt.Errorf("%w: high bit %d for %d bits stored in %d allocated",
			ErrInvalidFrameInfo, highBit, g.stored, g.allocated)
	}
	g.shift = highBit + 1 - g.stored

	if isRLE(transferSyntaxUID) {
		if g.allocated == 1 {
			return geometry{}, fmt.Errorf("%w: RLE with 1 bit allocated", ErrInvalidFrameInfo)
		}
		// segments are decoded sample by sample
		g.planar = g.samples > 1
	}
	return g, nil
}

func (g geometry) pixels() int {
	return g.width * g.height
}

func (g geometry) layout() photometric.Layout {
	if g.planar {
		return photometric.LayoutPlanar
	}
	return photometric.LayoutChunky
}

// nativeSize is the byte size of an uncompressed frame. 1-bit frames are
// packed without row padding.
func (g geometry) nativeSize() int {
	n := g.pixels() * g.samples
	if g.allocated == 1 {
		return (n + 7) / 8
	}
	return n * g.allocated / 8
}

// raw returns the i-th allocated sample of a native frame.
func (g geometry) raw(data []byte, i int) uint32 {
	switch g.allocated {
	case 1:
		return uint32(data[i/8]>>(uint(i)%8)) & 1
	case 8:
		return uint32(data[i])
	case 16:
		return uint32(binary.LittleEndian.Uint16(data[2*i:]))
	default:
		return binary.LittleEndian.Uint32(data[4*i:])
	}
}

// Frame is a native frame repacked for a photometric decoder.
type Frame struct {
	Width, Height int
	Layout        photometric.Layout
	BitsPerSample []uint16
	Planes        [][]byte
}

// Unpack converts the data of one frame, encoded with the given transfer
// syntax, into packed sample planes. An empty transferSyntaxUID is read as
// native little endian.
func Unpack(info *imagetypes.FrameInfo, transferSyntaxUID string, data []byte) (*Frame, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: missing", ErrInvalidFrameInfo)
	}
	if err := checkTransferSyntax(transferSyntaxUID); err != nil {
		return nil, err
	}
	g, err := geometryOf(info, transferSyntaxUID)
	if err != nil {
		return nil, err
	}

	if isRLE(transferSyntaxUID) {
		data, err = decodeRLE(g, data)
		if err != nil {
			return nil, err
		}
	}
	if len(data) < g.nativeSize() {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrFrameTooShort, len(data), g.nativeSize())
	}

	bits := make([]uint16, g.samples)
	for i := range bits {
		bits[i] = uint16(g.stored)
	}
	return &Frame{
		Width:         g.width,
		Height:        g.height,
		Layout:        g.layout(),
		BitsPerSample: bits,
		Planes:        repack(g, data),
	}, nil
}

// repack writes the stored bits of every sample MSB first, one plane per
// sample when planar, padding every row to a byte.
func repack(g geometry, data []byte) [][]byte {
	n := g.pixels()
	mask := uint32(1)<<uint(g.stored) - 1
	sign := uint32(1) << uint(g.stored-1)
	sample := func(i int) uint32 {
		v := g.raw(data, i) >> uint(g.shift) & mask
		if g.signed {
			v ^= sign
		}
		return v
	}

	// values are masked to g.stored bits, so WriteBits cannot fail
	if g.planar {
		planes := make([][]byte, g.samples)
		for s := range planes {
			w := bitio.NewWriter()
			for y := 0; y < g.height; y++ {
				for x := 0; x < g.width; x++ {
					_ = w.WriteBits(sample(s*n+y*g.width+x), uint(g.stored))
				}
				w.PadRow()
			}
			planes[s] = w.Bytes()
		}
		return planes
	}

	w := bitio.NewWriter()
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			for s := 0; s < g.samples; s++ {
				_ = w.WriteBits(sample((y*g.width+x)*g.samples+s), uint(g.stored))
			}
		}
		w.PadRow()
	}
	return [][]byte{w.Bytes()}
}

// decodeRLE expands an RLE Lossless frame into a native little endian frame
// laid out sample by sample. Segment k of a sample holds its k-th most
// significant byte.
func decodeRLE(g geometry, data []byte) ([]byte, error) {
	if len(data) < rleHeaderSize {
		return nil, fmt.Errorf("%w: %d byte frame", ErrCorruptRLE, len(data))
	}

	bytesPer := g.allocated / 8
	want := g.samples * bytesPer
	count := int(binary.LittleEndian.Uint32(data))
	if count != want || count > rleMaxSegments {
		return nil, fmt.Errorf("%w: %d segments, want %d", ErrCorruptRLE, count, want)
	}

	offsets := make([]int, count+1)
	for i := 0; i < count; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(data[4+4*i:]))
	}
	offsets[count] = len(data)

	n := g.pixels()
	out := make([]byte, n*want)
	for seg := 0; seg < count; seg++ {
		start, end := offsets[seg], offsets[seg+1]
		if start < rleHeaderSize || start > end || end > len(data) {
			return nil, fmt.Errorf("%w: segment %d spans [%d, %d) of %d bytes", ErrCorruptRLE, seg, start, end, len(data))
		}
		b, err := compression.UnpackBits(data[start:end], n)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d: %v", ErrCorruptRLE, seg, err)
		}
		if len(b) < n {
			return nil, fmt.Errorf("%w: segment %d holds %d of %d bytes", ErrCorruptRLE, seg, len(b), n)
		}

		s, k := seg/bytesPer, seg%bytesPer
		for p := 0; p < n; p++ {
			out[(s*n+p)*bytesPer+bytesPer-1-k] = b[p]
		}
	}
	return out, nil
}
