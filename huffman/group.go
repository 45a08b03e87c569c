package huffman

import "fmt"

// Symbol categories of a tree group
const (
	Green = iota // green literal, backward reference length or color cache index
	Red
	Blue
	Alpha
	Dist
)

const (
	// HuffmanCodesPerMetaCode is the number of trees in a group
	HuffmanCodesPerMetaCode = 5

	NumLiteralCodes  = 256
	NumLengthCodes   = 24
	NumDistanceCodes = 40

	// HuffmanPackedBits is the key width of a group's packed table
	HuffmanPackedBits      = 6
	HuffmanPackedTableSize = 1 << HuffmanPackedBits

	// BitsSpecialMarker flags a packed entry that resolves only the green
	// symbol, which is not a literal
	BitsSpecialMarker = 0x100
)

// AlphabetSizes returns the alphabet size of each category for a given
// color cache size.
func AlphabetSizes(colorCacheSize int) [HuffmanCodesPerMetaCode]int {
	return [HuffmanCodesPerMetaCode]int{
		NumLiteralCodes + NumLengthCodes + colorCacheSize,
		NumLiteralCodes,
		NumLiteralCodes,
		NumLiteralCodes,
		NumDistanceCodes,
	}
}

// PackedCode is an entry of a group's packed table.
//
// For a literal, Bits is the total number of bits of the green, red, blue
// and alpha codes and Value the ARGB pixel. For anything else Bits is
// BitsSpecialMarker plus the green code length and Value the green symbol.
type PackedCode struct {
	Bits  int
	Value uint32
}

// IsLiteral reports whether the entry resolves a whole pixel.
func (p PackedCode) IsLiteral() bool {
	return p.Bits < BitsSpecialMarker
}

// HTreeGroup holds the trees used for one meta-block together with the
// decode shortcuts derived from them. It is read-only once built.
type HTreeGroup struct {
	// HTrees is indexed by Green, Red, Blue, Alpha and Dist
	HTrees [HuffmanCodesPerMetaCode]*Table

	// IsTrivialLiteral is true when the red, blue and alpha trees each hold
	// a single symbol
	IsTrivialLiteral bool

	// LiteralArb is the ARGB value of the trivial red, blue and alpha
	// symbols with green zero, or the whole pixel when IsTrivialCode is set
	LiteralArb uint32

	// IsTrivialCode is true when IsTrivialLiteral holds and the green tree
	// has a single literal symbol: every pixel decodes without reading bits
	IsTrivialCode bool

	// UsePackedTable is true when a literal's codes together are shorter
	// than HuffmanPackedBits, so PackedTable resolves any pixel at once
	UsePackedTable bool

	// PackedTable maps the next HuffmanPackedBits bits to a PackedCode
	PackedTable []PackedCode
}

// BuildHTreeGroup builds the five tables of a group from their code lengths.
func BuildHTreeGroup(lengths [HuffmanCodesPerMetaCode][]uint8) (*HTreeGroup, error) {
	var trees [HuffmanCodesPerMetaCode]*Table
	for i, l := range lengths {
		t, err := BuildTable(l)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = t
	}
	return NewHTreeGroup(trees)
}

// NewHTreeGroup bundles prebuilt tables and computes the decode shortcuts.
func NewHTreeGroup(trees [HuffmanCodesPerMetaCode]*Table) (*HTreeGroup, error) {
	for i, t := range trees {
		if t == nil {
			return nil, fmt.Errorf("%w: tree %d missing", ErrInvalidHuffmanTable, i)
		}
	}
	for _, c := range []int{Red, Blue, Alpha} {
		if n := trees[c].AlphabetSize(); n > NumLiteralCodes {
			return nil, fmt.Errorf("%w: tree %d has %d symbols", ErrInvalidHuffmanTable, c, n)
		}
	}

	g := &HTreeGroup{HTrees: trees}

	g.IsTrivialLiteral = trees[Red].IsTrivial() && trees[Blue].IsTrivial() && trees[Alpha].IsTrivial()
	if g.IsTrivialLiteral {
		red := uint32(trees[Red].TrivialSymbol())
		blue := uint32(trees[Blue].TrivialSymbol())
		alpha := uint32(trees[Alpha].TrivialSymbol())
		g.LiteralArb = alpha<<24 | red<<16 | blue

		if trees[Green].IsTrivial() && trees[Green].TrivialSymbol() < NumLiteralCodes {
			g.IsTrivialCode = true
			g.LiteralArb |= uint32(trees[Green].TrivialSymbol()) << 8
		}
	}

	maxBits := 0
	for _, c := range []int{Green, Red, Blue, Alpha} {
		maxBits += trees[c].MaxLength()
	}
	g.UsePackedTable = !g.IsTrivialCode && maxBits < HuffmanPackedBits
	if g.UsePackedTable {
		g.buildPackedTable()
	}

	return g, nil
}

// buildPackedTable resolves every HuffmanPackedBits-bit key by running the
// canonical walk of each tree over the bits the previous trees left.
func (g *HTreeGroup) buildPackedTable() {
	g.PackedTable = make([]PackedCode, HuffmanPackedTableSize)

	for key := uint32(0); key < HuffmanPackedTableSize; key++ {
		used := uint(0)
		next := func(c int) (uint16, uint) {
			// Remaining bits of the key, still MSB aligned
			width := HuffmanPackedBits - used
			sym, n, _ := g.HTrees[c].decodePattern(key&(1<<width-1), width)
			used += n
			return sym, n
		}

		green, n := next(Green)
		if green >= NumLiteralCodes {
			g.PackedTable[key] = PackedCode{Bits: int(n) + BitsSpecialMarker, Value: uint32(green)}
			continue
		}
		red, _ := next(Red)
		blue, _ := next(Blue)
		alpha, _ := next(Alpha)

		g.PackedTable[key] = PackedCode{
			Bits:  int(used),
			Value: uint32(alpha)<<24 | uint32(red)<<16 | uint32(green)<<8 | uint32(blue),
		}
	}
}
