package photometric

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/cocosip/go-pixelcore/bitio"
)

const tolerance = 1e-4

// packRows packs one plane; sample(x, y, c) returns channel c of pixel (x, y).
// Every row is padded to a byte boundary.
func packRows(t *testing.T, width, height int, bits []uint, sample func(x, y, c int) uint32) []byte {
	t.Helper()
	w := bitio.NewWriter()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c, n := range bits {
				if err := w.WriteBits(sample(x, y, c), n); err != nil {
					t.Fatalf("WriteBits(%d) failed: %v", n, err)
				}
			}
		}
		w.PadRow()
	}
	return w.Bytes()
}

func maxSample(bits uint) uint32 {
	return uint32(uint64(1)<<bits - 1)
}

// pattern produces samples covering 0 and the maximum of every depth.
func pattern(bits uint) func(x, y, c int) uint32 {
	top := uint64(maxSample(bits))
	return func(x, y, c int) uint32 {
		switch (x + y) % 4 {
		case 0:
			return 0
		case 1:
			return uint32(top)
		default:
			return uint32((uint64(x*131+y*17+c*7) * 2654435761) % (top + 1))
		}
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func colorNear(a, b Color) bool {
	return near(a.R, b.R) && near(a.G, b.G) && near(a.B, b.B) && near(a.A, b.A)
}

func TestNormalizeBounds(t *testing.T) {
	for bits := uint16(1); bits <= MaxBitsPerSample; bits++ {
		f := Factor(bits)
		if got := Normalize(0, f); got != 0 {
			t.Errorf("bits %d: Normalize(0) = %v, want 0", bits, got)
		}
		if got := Normalize(maxSample(uint(bits)), f); got != 1 {
			t.Errorf("bits %d: Normalize(max) = %v, want 1", bits, got)
		}
	}
}

func TestRGBPlanarRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		bits []uint16
	}{
		{"1 bit", []uint16{1, 1, 1}},
		{"4 bit", []uint16{4, 4, 4}},
		{"8 bit", []uint16{8, 8, 8}},
		{"12 bit", []uint16{12, 12, 12}},
		{"16 bit", []uint16{16, 16, 16}},
		{"mixed depths", []uint16{1, 5, 12}},
	}

	const width, height = 7, 5

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewRGBPlanar(tt.bits)
			if err != nil {
				t.Fatalf("NewRGBPlanar failed: %v", err)
			}
			if dec.Planes() != 3 {
				t.Fatalf("Planes() = %d, want 3", dec.Planes())
			}

			planes := make([][]byte, 3)
			samples := make([]func(x, y, c int) uint32, 3)
			for c := range planes {
				n := uint(tt.bits[c])
				samples[c] = pattern(n)
				ch := c
				planes[c] = packRows(t, width, height, []uint{n}, func(x, y, _ int) uint32 {
					return samples[ch](x, y, ch)
				})
			}

			frame := NewFrame(width, height)
			if err := dec.Decode(planes, frame, Rect{Width: width, Height: height}); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					want := Color{A: 1}
					comp := []*float32{&want.R, &want.G, &want.B}
					for c := range comp {
						*comp[c] = float32(float64(samples[c](x, y, c)) / Factor(tt.bits[c]))
					}
					if got := frame.At(x, y); !colorNear(got, want) {
						t.Errorf("pixel (%d, %d) = %+v, want %+v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestPlanarRealignsPlanesIndependently(t *testing.T) {
	// 3 pixels per row: the 1-bit plane leaves 5 pad bits per row, the
	// 4-bit plane 4, and the 8-bit plane none.
	red := []byte{0xA0, 0x40} // rows 101, 010
	green := []byte{0xF0, 0xF0, 0x0F, 0x00}
	blue := []byte{0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF}

	dec, err := NewRGBPlanar([]uint16{1, 4, 8})
	if err != nil {
		t.Fatalf("NewRGBPlanar failed: %v", err)
	}
	frame := NewFrame(3, 2)
	if err := dec.Decode([][]byte{red, green, blue}, frame, Rect{Width: 3, Height: 2}); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := [2][3]Color{
		{{R: 1, G: 1, B: 0, A: 1}, {R: 0, G: 0, B: 1, A: 1}, {R: 1, G: 1, B: 0, A: 1}},
		{{R: 0, G: 0, B: 1, A: 1}, {R: 1, G: 1, B: 0, A: 1}, {R: 0, G: 0, B: 1, A: 1}},
	}
	for y := range want {
		for x := range want[y] {
			if got := frame.At(x, y); !colorNear(got, want[y][x]) {
				t.Errorf("pixel (%d, %d) = %+v, want %+v", x, y, got, want[y][x])
			}
		}
	}
}

func TestDecodeRegionOffset(t *testing.T) {
	dec, err := NewBlackIsZero(8)
	if err != nil {
		t.Fatalf("NewBlackIsZero failed: %v", err)
	}
	frame := NewFrame(4, 4)
	region := Rect{Left: 1, Top: 2, Width: 2, Height: 2}
	if err := dec.Decode([][]byte{{0, 255, 255, 0}}, frame, region); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	white := Color{R: 1, G: 1, B: 1, A: 1}
	black := Color{A: 1}
	tests := []struct {
		x, y int
		want Color
	}{
		{1, 2, black},
		{2, 2, white},
		{1, 3, white},
		{2, 3, black},
		{0, 0, Color{}},
		{3, 3, Color{}},
	}
	for _, tt := range tests {
		if got := frame.At(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestVariants(t *testing.T) {
	palette := []Color{
		{R: 1, A: 1},
		{G: 1, A: 1},
		{B: 1, A: 1},
	}

	tests := []struct {
		name   string
		pi     Interpretation
		layout Layout
		cfg    Config
		planes [][]byte
		want   []Color
	}{
		{
			name:   "black is zero",
			pi:     BlackIsZero,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{8}},
			planes: [][]byte{{0x00, 0xFF}},
			want:   []Color{{A: 1}, {R: 1, G: 1, B: 1, A: 1}},
		},
		{
			name:   "white is zero",
			pi:     WhiteIsZero,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{8}},
			planes: [][]byte{{0x00, 0xFF}},
			want:   []Color{{R: 1, G: 1, B: 1, A: 1}, {A: 1}},
		},
		{
			name:   "2 bit palette",
			pi:     Paletted,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{2}, ColorMap: palette},
			planes: [][]byte{{0x18}}, // 00 01 10
			want:   palette,
		},
		{
			name:   "chunky rgb",
			pi:     RGB,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8}},
			planes: [][]byte{{0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF}},
			want:   []Color{{R: 1, A: 1}, {B: 1, A: 1}},
		},
		{
			name:   "chunky rgba unassociated",
			pi:     RGB,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8, 8}, Alpha: AlphaUnassociated},
			planes: [][]byte{{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF}},
			want:   []Color{{R: 1}, {B: 1, A: 1}},
		},
		{
			name:   "chunky rgba associated",
			pi:     RGB,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{4, 4, 4, 4}, Alpha: AlphaAssociated},
			planes: [][]byte{{0x50, 0x05, 0x00, 0x00}}, // (5,0,0,5) (0,0,0,0)
			want:   []Color{{R: 1, A: 1.0 / 3}, {}},
		},
		{
			name:   "planar rgba",
			pi:     RGB,
			layout: LayoutPlanar,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8, 8}},
			planes: [][]byte{{0xFF, 0x00}, {0x00, 0xFF}, {0x00, 0x00}, {0xFF, 0x00}},
			want:   []Color{{R: 1, A: 1}, {G: 1}},
		},
		{
			name:   "chunky cmyk",
			pi:     Separated,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8, 8}},
			planes: [][]byte{{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF}},
			want:   []Color{{G: 1, B: 1, A: 1}, {A: 1}},
		},
		{
			name:   "planar cmyk",
			pi:     Separated,
			layout: LayoutPlanar,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8, 8}},
			planes: [][]byte{{0x00, 0x00}, {0xFF, 0x00}, {0x00, 0x00}, {0x00, 0x00}},
			want:   []Color{{R: 1, B: 1, A: 1}, {R: 1, G: 1, B: 1, A: 1}},
		},
		{
			name:   "chunky ycbcr",
			pi:     YCbCr,
			layout: LayoutChunky,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8}},
			planes: [][]byte{{0xFF, 0x80, 0x80, 0x00, 0x80, 0x80}},
			want:   []Color{{R: 1, G: 1, B: 1, A: 1}, {A: 1}},
		},
		{
			name:   "planar ycbcr",
			pi:     YCbCr,
			layout: LayoutPlanar,
			cfg:    Config{BitsPerSample: []uint16{8, 8, 8}},
			planes: [][]byte{{0xFF, 0x00}, {0x80, 0x80}, {0x80, 0x80}},
			want:   []Color{{R: 1, G: 1, B: 1, A: 1}, {A: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := New(tt.pi, tt.layout, tt.cfg)
			if err != nil {
				t.Fatalf("New(%s, %s) failed: %v", tt.pi, tt.layout, err)
			}
			frame := NewFrame(len(tt.want), 1)
			if err := dec.Decode(tt.planes, frame, Rect{Width: len(tt.want), Height: 1}); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			for x, want := range tt.want {
				if got := frame.At(x, 0); !colorNear(got, want) {
					t.Errorf("pixel %d = %+v, want %+v", x, got, want)
				}
			}
		})
	}
}

func TestYCbCrSaturatedRed(t *testing.T) {
	// BT.601 full range red: Y = 76, Cb = 85, Cr = 255
	dec, err := NewYCbCr([]uint16{8, 8, 8}, Coefficients{})
	if err != nil {
		t.Fatalf("NewYCbCr failed: %v", err)
	}
	frame := NewFrame(1, 1)
	if err := dec.Decode([][]byte{{76, 85, 255}}, frame, Rect{Width: 1, Height: 1}); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got := frame.At(0, 0)
	if got.R < 0.98 || got.G > 0.02 || got.B > 0.02 {
		t.Errorf("got %+v, want approximately pure red", got)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		new  func() error
	}{
		{"zero bits", func() error { _, err := NewBlackIsZero(0); return err }},
		{"33 bits", func() error { _, err := NewRGBPlanar([]uint16{8, 33, 8}); return err }},
		{"too few samples", func() error { _, err := NewRGBPlanar([]uint16{8, 8}); return err }},
		{"rgb with five samples", func() error { _, err := NewRGB([]uint16{8, 8, 8, 8, 8}, AlphaNone); return err }},
		{"cmyk with three samples", func() error { _, err := NewCMYK([]uint16{8, 8, 8}); return err }},
		{"empty color map", func() error { _, err := NewPalette(8, nil); return err }},
		{"wide palette index", func() error { _, err := NewPalette(17, []Color{{}}); return err }},
		{"zero green weight", func() error {
			_, err := NewYCbCr([]uint16{8, 8, 8}, Coefficients{LumaRed: 0.5, LumaBlue: 0.5})
			return err
		}},
		{"odd tiff color map", func() error { _, err := ColorMapFromTIFF([]uint16{1, 2}); return err }},
		{"palette via registry without map", func() error {
			dec, err := New(Paletted, LayoutChunky, Config{BitsPerSample: []uint16{8}})
			if dec != nil {
				return errors.New("non-nil decoder on error")
			}
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.new(); !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("got %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestDecodeArgumentErrors(t *testing.T) {
	dec, err := NewRGBPlanar([]uint16{8, 8, 8})
	if err != nil {
		t.Fatalf("NewRGBPlanar failed: %v", err)
	}
	frame := NewFrame(1, 1)

	if err := dec.Decode([][]byte{{0}, {0}}, frame, Rect{Width: 1, Height: 1}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("missing plane: got %v, want ErrInvalidConfiguration", err)
	}
	if err := dec.Decode([][]byte{{0}, {0}, {0}}, frame, Rect{Width: -1, Height: 1}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("negative width: got %v, want ErrInvalidConfiguration", err)
	}
	if err := dec.Decode([][]byte{nil, nil, nil}, frame, Rect{}); err != nil {
		t.Errorf("empty region: got %v, want nil", err)
	}
}

func TestTruncatedPlane(t *testing.T) {
	dec, err := NewRGBPlanar([]uint16{8, 8, 8})
	if err != nil {
		t.Fatalf("NewRGBPlanar failed: %v", err)
	}

	marker := Color{R: 0.5, G: 0.5, B: 0.5, A: 0.5}
	frame := NewFrame(2, 2)
	for i := range frame.Pix {
		frame.Pix[i] = marker
	}

	// the blue plane holds one row and a half
	planes := [][]byte{{1, 2, 3, 4}, {1, 2, 3, 4}, {1, 2, 3}}
	err = dec.Decode(planes, frame, Rect{Width: 2, Height: 2})
	if !errors.Is(err, bitio.ErrOutOfData) {
		t.Fatalf("got %v, want ErrOutOfData", err)
	}

	if got := frame.At(0, 0); got == marker {
		t.Errorf("first row was not written")
	}
	for x := 0; x < 2; x++ {
		if got := frame.At(x, 1); got != marker {
			t.Errorf("pixel (%d, 1) = %+v, want the partial row left untouched", x, got)
		}
	}
}

func TestPaletteIndexOutOfRange(t *testing.T) {
	dec, err := NewPalette(2, []Color{{}, {}, {}})
	if err != nil {
		t.Fatalf("NewPalette failed: %v", err)
	}
	frame := NewFrame(4, 1)
	err = dec.Decode([][]byte{{0x1B}}, frame, Rect{Width: 4, Height: 1}) // 00 01 10 11
	if !errors.Is(err, ErrPaletteIndex) {
		t.Errorf("got %v, want ErrPaletteIndex", err)
	}
}

func TestColorMapFromTIFF(t *testing.T) {
	colors, err := ColorMapFromTIFF([]uint16{0xFFFF, 0, 0, 0xFFFF, 0, 0})
	if err != nil {
		t.Fatalf("ColorMapFromTIFF failed: %v", err)
	}
	want := []Color{{R: 1, G: 0, B: 0, A: 1}, {R: 0, G: 1, B: 0, A: 1}}
	if len(colors) != len(want) {
		t.Fatalf("got %d colors, want %d", len(colors), len(want))
	}
	for i := range want {
		if colors[i] != want[i] {
			t.Errorf("color %d = %+v, want %+v", i, colors[i], want[i])
		}
	}
}

func TestImageBuffer(t *testing.T) {
	dec, err := NewBlackIsZero(16)
	if err != nil {
		t.Fatalf("NewBlackIsZero failed: %v", err)
	}
	buf, img := NewNRGBA64Buffer(2, 1)
	if err := dec.Decode([][]byte{{0x00, 0x00, 0xFF, 0xFF}}, buf, Rect{Width: 2, Height: 1}); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	tests := []struct {
		x    int
		want color.NRGBA64
	}{
		{0, color.NRGBA64{A: 0xFFFF}},
		{1, color.NRGBA64{R: 0xFFFF, G: 0xFFFF, B: 0xFFFF, A: 0xFFFF}},
	}
	for _, tt := range tests {
		if got := img.NRGBA64At(tt.x, 0); got != tt.want {
			t.Errorf("pixel %d = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	layouts := []Layout{LayoutChunky, LayoutPlanar}
	interpretations := []Interpretation{WhiteIsZero, BlackIsZero, RGB, Paletted, Separated, YCbCr}

	for _, pi := range interpretations {
		for _, layout := range layouts {
			v, err := Lookup(pi, layout)
			if err != nil {
				t.Errorf("Lookup(%s, %s) failed: %v", pi, layout, err)
				continue
			}
			if v.Interpretation != pi || v.Layout != layout {
				t.Errorf("Lookup(%s, %s) returned %s %s", pi, layout, v.Interpretation, v.Layout)
			}
			byName, err := Get(v.Name)
			if err != nil || byName != v {
				t.Errorf("Get(%q) = %v, %v", v.Name, byName, err)
			}
		}
	}

	if got := len(List()); got != len(interpretations)*len(layouts) {
		t.Errorf("List() returned %d variants, want %d", got, len(interpretations)*len(layouts))
	}
	if _, err := Lookup(Interpretation(4), LayoutChunky); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Lookup(4) got %v, want ErrUnsupported", err)
	}
	if _, err := Get("jpeg"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Get(jpeg) got %v, want ErrUnsupported", err)
	}

	r := NewRegistry()
	r.Register(&Variant{Name: "custom", Interpretation: BlackIsZero, Layout: LayoutChunky})
	if v, err := r.Lookup(BlackIsZero, LayoutChunky); err != nil || v.Name != "custom" {
		t.Errorf("custom registry Lookup = %v, %v", v, err)
	}
}
