// Package compression restores the byte planes of a strip, tile or segment
// before they reach a photometric decoder.
//
// Decompressors are selected by TIFF compression tag value. All of them are
// safe for concurrent use.
package compression

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Compression errors
var (
	// ErrUnsupportedCompression is returned for a scheme nothing is registered for
	ErrUnsupportedCompression = errors.New("compression: unsupported scheme")

	// ErrCorruptData is returned when the compressed stream is malformed
	ErrCorruptData = errors.New("compression: corrupt data")

	// ErrShortOutput is returned when a stream decodes to fewer bytes than expected
	ErrShortOutput = errors.New("compression: short output")

	// ErrInvalidParams is returned when Params lack what a scheme needs
	ErrInvalidParams = errors.New("compression: invalid parameters")
)

// Scheme is a TIFF Compression tag value.
type Scheme uint16

const (
	None        Scheme = 1
	CCITTGroup3 Scheme = 3
	CCITTGroup4 Scheme = 4
	LZW         Scheme = 5
	Deflate     Scheme = 8
	PackBits    Scheme = 32773
	DeflateOld  Scheme = 32946
	Zstd        Scheme = 50000
)

func (s Scheme) String() string {
	switch s {
	case None:
		return "none"
	case CCITTGroup3:
		return "ccitt-g3"
	case CCITTGroup4:
		return "ccitt-g4"
	case LZW:
		return "lzw"
	case Deflate, DeflateOld:
		return "deflate"
	case PackBits:
		return "packbits"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Scheme(%d)", uint16(s))
	}
}

// Params describes the block being decompressed.
type Params struct {
	// Expected is the decoded size in bytes. Zero accepts any size.
	Expected int

	// Width and Height in pixels, required by the CCITT schemes
	Width, Height int

	// LSBFirst selects TIFF FillOrder 2 for the CCITT schemes
	LSBFirst bool

	// Invert swaps black and white in CCITT output
	Invert bool
}

// Decompressor restores one compressed block.
type Decompressor interface {
	Decompress(src []byte, p Params) ([]byte, error)
}

// fit enforces p.Expected on a decoded block.
func fit(out []byte, p Params) ([]byte, error) {
	if p.Expected == 0 {
		return out, nil
	}
	if len(out) < p.Expected {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrShortOutput, len(out), p.Expected)
	}
	return out[:p.Expected], nil
}

// Registry manages the available decompressors
type Registry struct {
	mu      sync.RWMutex
	schemes map[Scheme]Decompressor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemes: make(map[Scheme]Decompressor)}
}

var defaultRegistry = NewRegistry()

func init() {
	defaultRegistry.Register(None, Raw{})
	defaultRegistry.Register(CCITTGroup3, CCITT{Group4: false})
	defaultRegistry.Register(CCITTGroup4, CCITT{Group4: true})
	defaultRegistry.Register(LZW, LZWDecompressor{})
	defaultRegistry.Register(Deflate, ZlibDecompressor{})
	defaultRegistry.Register(DeflateOld, ZlibDecompressor{})
	defaultRegistry.Register(PackBits, PackBitsDecompressor{})
	defaultRegistry.Register(Zstd, ZstdDecompressor{})
}

// Register adds d to the default registry
func Register(s Scheme, d Decompressor) {
	defaultRegistry.Register(s, d)
}

// Get retrieves the decompressor for s from the default registry
func Get(s Scheme) (Decompressor, error) {
	return defaultRegistry.Get(s)
}

// Schemes lists the schemes of the default registry
func Schemes() []Scheme {
	return defaultRegistry.Schemes()
}

// Decompress decodes src with the decompressor registered for s.
func Decompress(s Scheme, src []byte, p Params) ([]byte, error) {
	d, err := Get(s)
	if err != nil {
		return nil, err
	}
	out, err := d.Decompress(src, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s, err)
	}
	return out, nil
}

// Register registers d for s, replacing any previous entry
func (r *Registry) Register(s Scheme, d Decompressor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemes[s] = d
}

// Get retrieves the decompressor for s
func (r *Registry) Get(s Scheme) (Decompressor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.schemes[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, s)
	}
	return d, nil
}

// Schemes returns the registered schemes in ascending order
func (r *Registry) Schemes() []Scheme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]Scheme, 0, len(r.schemes))
	for s := range r.schemes {
		schemes = append(schemes, s)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i] < schemes[j] })
	return schemes
}
