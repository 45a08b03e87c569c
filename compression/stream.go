package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/ccitt"
	"golang.org/x/image/tiff/lzw"
)

// readBlock drains r into a block of p.Expected bytes, or all of r when
// p.Expected is zero.
func readBlock(r io.Reader, p Params) ([]byte, error) {
	if p.Expected == 0 {
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		return out, nil
	}

	out := make([]byte, p.Expected)
	n, err := io.ReadFull(r, out)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrShortOutput, n, p.Expected)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return out, nil
}

// Raw passes uncompressed data through.
type Raw struct{}

// Decompress implements Decompressor.
func (Raw) Decompress(src []byte, p Params) ([]byte, error) {
	return fit(src, p)
}

// ZlibDecompressor decodes Adobe Deflate (zlib wrapped) blocks.
type ZlibDecompressor struct{}

// Decompress implements Decompressor.
func (ZlibDecompressor) Decompress(src []byte, p Params) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	defer r.Close()

	return readBlock(r, p)
}

// LZWDecompressor decodes TIFF flavored LZW, MSB first with early code
// width change.
type LZWDecompressor struct{}

// Decompress implements Decompressor.
func (LZWDecompressor) Decompress(src []byte, p Params) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(src), lzw.MSB, 8)
	defer r.Close()

	return readBlock(r, p)
}

var zstdDecPool sync.Pool

// zstdDecoder takes a pooled decoder or builds a new one.
func zstdDecoder() (*zstd.Decoder, error) {
	if dec, ok := zstdDecPool.Get().(*zstd.Decoder); ok {
		return dec, nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// ZstdDecompressor decodes Zstandard frames.
type ZstdDecompressor struct{}

// Decompress implements Decompressor.
func (ZstdDecompressor) Decompress(src []byte, p Params) ([]byte, error) {
	dec, err := zstdDecoder()
	if err != nil {
		return nil, err
	}
	defer zstdDecPool.Put(dec)

	out, err := dec.DecodeAll(src, make([]byte, 0, p.Expected))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return fit(out, p)
}

// CCITT decodes bilevel fax data into rows of 1-bit samples, each row
// padded to a byte.
type CCITT struct {
	// Group4 selects T.6 instead of modified Huffman T.4
	Group4 bool
}

// Decompress implements Decompressor.
func (c CCITT) Decompress(src []byte, p Params) ([]byte, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: ccitt block %dx%d", ErrInvalidParams, p.Width, p.Height)
	}

	order := ccitt.MSB
	if p.LSBFirst {
		order = ccitt.LSB
	}
	format := ccitt.Group3
	if c.Group4 {
		format = ccitt.Group4
	}

	if p.Expected == 0 {
		p.Expected = (p.Width + 7) / 8 * p.Height
	}
	r := ccitt.NewReader(bytes.NewReader(src), order, format, p.Width, p.Height, &ccitt.Options{Invert: p.Invert})
	return readBlock(r, p)
}
