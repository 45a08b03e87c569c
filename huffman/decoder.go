package huffman

import "fmt"

// BitSource is the bit cursor a Decoder reads from. *bitio.Reader
// implements it.
type BitSource interface {
	ReadBits(n uint) (uint32, error)
	PeekBits(n uint) uint32
	SkipBits(n uint) error
	BitsRemaining() int
}

// TokenKind identifies what a green symbol stood for.
type TokenKind uint8

const (
	TokenLiteral    TokenKind = iota // ARGB holds a pixel
	TokenCopy                        // Length and DistanceCode describe a backward reference
	TokenCacheIndex                  // CacheIndex selects a color cache entry
)

// Token is one element of the decoded symbol stream handed to the LZ77
// reconstruction stage.
type Token struct {
	Kind         TokenKind
	ARGB         uint32
	Length       int
	DistanceCode int
	CacheIndex   int
}

// Decoder decodes symbols from a bit source.
type Decoder struct {
	src BitSource
}

// NewDecoder creates a decoder reading from src.
func NewDecoder(src BitSource) *Decoder {
	return &Decoder{src: src}
}

// ReadSymbol decodes the next symbol of t.
//
// A trivial table returns its symbol without reading. Otherwise the root
// table resolves codes up to RootBits long and longer codes are walked one
// bit at a time.
func (d *Decoder) ReadSymbol(t *Table) (uint16, error) {
	if t.trivial {
		return t.sorted[0], nil
	}

	// Fast path: padding past the end of the stream is harmless as long as
	// the matched code itself lies within the stream
	entry := t.root[d.src.PeekBits(RootBits)]
	if entry.BitLength > 0 && int(entry.BitLength) <= d.src.BitsRemaining() {
		if err := d.src.SkipBits(uint(entry.BitLength)); err != nil {
			return 0, err
		}
		return entry.Value, nil
	}

	return d.walk(t)
}

// walk decodes one bit at a time, narrowing to the codes of each length.
func (d *Decoder) walk(t *Table) (uint16, error) {
	code := uint64(0)
	for l := 1; l <= t.maxLen; l++ {
		bit, err := d.src.ReadBits(1)
		if err != nil {
			return 0, err
		}
		code = code<<1 | uint64(bit)
		if sym, ok := t.match(l, code); ok {
			return sym, nil
		}
	}
	// BuildTable only accepts complete codes, so every maxLen-bit pattern
	// matches some code and this needs a Table built some other way
	return 0, fmt.Errorf("%w: no code matches within %d bits", ErrCorruptStream, t.maxLen)
}

// ReadGroupSymbol decodes the next symbol of one category of g.
func (d *Decoder) ReadGroupSymbol(g *HTreeGroup, category int) (uint16, error) {
	if category < Green || category > Dist {
		return 0, fmt.Errorf("huffman: invalid category %d", category)
	}
	if category == Green && g.IsTrivialCode {
		return uint16(g.LiteralArb >> 8 & 0xff), nil
	}
	return d.ReadSymbol(g.HTrees[category])
}

// ReadPacked resolves the next pixel or green symbol through the packed
// table of g, which must have UsePackedTable set.
func (d *Decoder) ReadPacked(g *HTreeGroup) (PackedCode, error) {
	entry := g.PackedTable[d.src.PeekBits(HuffmanPackedBits)]
	n := entry.Bits
	if !entry.IsLiteral() {
		n -= BitsSpecialMarker
	}
	if err := d.src.SkipBits(uint(n)); err != nil {
		return PackedCode{}, err
	}
	return entry, nil
}

// ReadToken decodes the next pixel, backward reference or color cache
// index. colorCacheSize is the number of cache entries the green alphabet
// was built with.
//
// The shortcuts are tried in order: trivial code, packed table, then a
// canonical decode of the green symbol. A literal with a trivial literal
// group takes red, blue and alpha from LiteralArb.
func (d *Decoder) ReadToken(g *HTreeGroup, colorCacheSize int) (Token, error) {
	if g.IsTrivialCode {
		return Token{Kind: TokenLiteral, ARGB: g.LiteralArb}, nil
	}

	var code int
	if g.UsePackedTable {
		entry, err := d.ReadPacked(g)
		if err != nil {
			return Token{}, err
		}
		if entry.IsLiteral() {
			return Token{Kind: TokenLiteral, ARGB: entry.Value}, nil
		}
		code = int(entry.Value)
	} else {
		sym, err := d.ReadSymbol(g.HTrees[Green])
		if err != nil {
			return Token{}, err
		}
		code = int(sym)
	}

	switch {
	case code < NumLiteralCodes:
		return d.readLiteral(g, uint32(code))

	case code < NumLiteralCodes+NumLengthCodes:
		length, err := d.readPrefixValue(code - NumLiteralCodes)
		if err != nil {
			return Token{}, err
		}
		distSym, err := d.ReadSymbol(g.HTrees[Dist])
		if err != nil {
			return Token{}, err
		}
		dist, err := d.readPrefixValue(int(distSym))
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenCopy, Length: length, DistanceCode: dist}, nil

	default:
		idx := code - NumLiteralCodes - NumLengthCodes
		if idx >= colorCacheSize {
			return Token{}, fmt.Errorf("%w: color cache index %d with cache of %d", ErrCorruptStream, idx, colorCacheSize)
		}
		return Token{Kind: TokenCacheIndex, CacheIndex: idx}, nil
	}
}

func (d *Decoder) readLiteral(g *HTreeGroup, green uint32) (Token, error) {
	if g.IsTrivialLiteral {
		return Token{Kind: TokenLiteral, ARGB: g.LiteralArb | green<<8}, nil
	}

	red, err := d.ReadSymbol(g.HTrees[Red])
	if err != nil {
		return Token{}, err
	}
	blue, err := d.ReadSymbol(g.HTrees[Blue])
	if err != nil {
		return Token{}, err
	}
	alpha, err := d.ReadSymbol(g.HTrees[Alpha])
	if err != nil {
		return Token{}, err
	}

	argb := uint32(alpha)<<24 | uint32(red)<<16 | green<<8 | uint32(blue)
	return Token{Kind: TokenLiteral, ARGB: argb}, nil
}

// readPrefixValue reads the extra bits of a length or distance prefix code.
func (d *Decoder) readPrefixValue(prefix int) (int, error) {
	base, extra := PrefixRange(prefix)
	if extra == 0 {
		return base, nil
	}
	v, err := d.src.ReadBits(uint(extra))
	if err != nil {
		return 0, err
	}
	return base + int(v), nil
}

// PrefixRange returns the smallest value of a length or distance prefix
// code and the number of extra bits that follow it.
func PrefixRange(prefix int) (base, extraBits int) {
	if prefix < 4 {
		return prefix + 1, 0
	}
	extraBits = (prefix - 2) >> 1
	offset := (2 + prefix&1) << extraBits
	return offset + 1, extraBits
}
