package photometric

import "fmt"

// Coefficients are the luma weights of a YCbCr to RGB transform.
type Coefficients struct {
	LumaRed, LumaGreen, LumaBlue float32
}

// BT601 are the ITU-R BT.601 weights used by JPEG, TIFF and DICOM YBR_FULL.
var BT601 = Coefficients{LumaRed: 0.299, LumaGreen: 0.587, LumaBlue: 0.114}

// AlphaMode describes the extra sample of an RGBA pixel.
type AlphaMode uint8

const (
	AlphaNone AlphaMode = iota
	AlphaAssociated
	AlphaUnassociated
)

type modelKind uint8

const (
	modelRGB modelKind = iota
	modelRGBA
	modelRGBAssociated
	modelCMYK
	modelYCbCr
)

// model turns the normalized samples of a pixel into a Color. It is a
// closed set switched on kind so the per-pixel call stays static.
type model struct {
	kind modelKind

	// YCbCr only: luma weights and the normalized chroma midpoint
	coeff          Coefficients
	cbBias, crBias float32
}

func (m *model) color(v *[4]float32) Color {
	switch m.kind {
	case modelRGBA:
		return Color{R: v[0], G: v[1], B: v[2], A: v[3]}

	case modelRGBAssociated:
		a := v[3]
		if a == 0 {
			return Color{}
		}
		return Color{R: clamp01(v[0] / a), G: clamp01(v[1] / a), B: clamp01(v[2] / a), A: a}

	case modelCMYK:
		k := 1 - v[3]
		return Color{R: (1 - v[0]) * k, G: (1 - v[1]) * k, B: (1 - v[2]) * k, A: 1}

	case modelYCbCr:
		y := v[0]
		cb := v[1] - m.cbBias
		cr := v[2] - m.crBias
		r := y + (2-2*m.coeff.LumaRed)*cr
		b := y + (2-2*m.coeff.LumaBlue)*cb
		g := (y - m.coeff.LumaRed*r - m.coeff.LumaBlue*b) / m.coeff.LumaGreen
		return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b), A: 1}

	default:
		return Color{R: v[0], G: v[1], B: v[2], A: 1}
	}
}

// samples returns how many channels the model consumes.
func (m *model) samples() int {
	switch m.kind {
	case modelRGBA, modelRGBAssociated, modelCMYK:
		return 4
	default:
		return 3
	}
}

func rgbModel(alpha AlphaMode) model {
	switch alpha {
	case AlphaAssociated:
		return model{kind: modelRGBAssociated}
	case AlphaUnassociated:
		return model{kind: modelRGBA}
	default:
		return model{kind: modelRGB}
	}
}

// yccModel centers chroma on 2^(bits-1), the midpoint JPEG and DICOM use.
func yccModel(coeff Coefficients, channels []channel) (model, error) {
	if coeff == (Coefficients{}) {
		coeff = BT601
	}
	if coeff.LumaGreen == 0 {
		return model{}, fmt.Errorf("%w: zero green luma weight", ErrInvalidConfiguration)
	}
	bias := func(c channel) float32 {
		return float32(float64(uint64(1)<<(c.bits-1)) / c.factor)
	}
	return model{
		kind:   modelYCbCr,
		coeff:  coeff,
		cbBias: bias(channels[1]),
		crBias: bias(channels[2]),
	}, nil
}
