package compression

import "fmt"

// PackBitsDecompressor decodes Apple PackBits run length data, the scheme
// used by TIFF and by DICOM RLE segments.
type PackBitsDecompressor struct{}

// Decompress implements Decompressor.
func (PackBitsDecompressor) Decompress(src []byte, p Params) ([]byte, error) {
	out, err := UnpackBits(src, p.Expected)
	if err != nil {
		return nil, err
	}
	return fit(out, p)
}

// UnpackBits expands PackBits runs. Decoding stops once expected bytes are
// produced, so trailing padding is ignored; expected zero decodes all of src.
func UnpackBits(src []byte, expected int) ([]byte, error) {
	out := make([]byte, 0, expected)
	i := 0
	for i < len(src) && (expected == 0 || len(out) < expected) {
		h := int8(src[i])
		i++
		switch {
		case h >= 0:
			n := int(h) + 1
			if i+n > len(src) {
				return nil, fmt.Errorf("%w: literal run of %d at %d overruns input", ErrCorruptData, n, i-1)
			}
			out = append(out, src[i:i+n]...)
			i += n
		case h != -128:
			if i >= len(src) {
				return nil, fmt.Errorf("%w: repeat run at %d has no value", ErrCorruptData, i-1)
			}
			n := 1 - int(h)
			for k := 0; k < n; k++ {
				out = append(out, src[i])
			}
			i++
		}
	}
	return out, nil
}

// PackBitsEncode encodes src, using repeat runs for two or more equal bytes.
func PackBitsEncode(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/128+1)
	i := 0
	for i < len(src) {
		j := i + 1
		for j < len(src) && src[j] == src[i] && j-i < 128 {
			j++
		}
		if j-i >= 2 {
			out = append(out, byte(257-(j-i)), src[i])
			i = j
			continue
		}

		start := i
		for i < len(src) && i-start < 128 {
			if i+1 < len(src) && src[i+1] == src[i] {
				break
			}
			i++
		}
		out = append(out, byte(i-start-1))
		out = append(out, src[start:i]...)
	}
	return out
}
