package dicompixel

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/dataset"
	"github.com/cocosip/go-dicom/pkg/dicom/element"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"

	"github.com/cocosip/go-pixelcore/photometric"
)

var paletteTags = [3]struct{ descriptor, data *tag.Tag }{
	{tag.RedPaletteColorLookupTableDescriptor, tag.RedPaletteColorLookupTableData},
	{tag.GreenPaletteColorLookupTableDescriptor, tag.GreenPaletteColorLookupTableData},
	{tag.BluePaletteColorLookupTableDescriptor, tag.BluePaletteColorLookupTableData},
}

// ColorMapFromDataset reads the red, green and blue Palette Color Lookup
// Tables of ds into a color map for Options.ColorMap. Sample values below
// the first mapped value of the descriptors take the first entry.
func ColorMapFromDataset(ds *dataset.Dataset) ([]photometric.Color, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: missing dataset", ErrInvalidFrameInfo)
	}

	var luts [3][]uint16
	var first, bits int
	for i, t := range paletteTags {
		desc, err := lutDescriptor(ds, t.descriptor)
		if err != nil {
			return nil, err
		}
		if i > 0 && (int(desc[1]) != first || int(desc[2]) != bits) {
			return nil, fmt.Errorf("%w: palette descriptors disagree", ErrInvalidFrameInfo)
		}
		first, bits = int(desc[1]), int(desc[2])

		entries := int(desc[0])
		if entries == 0 {
			entries = 1 << 16
		}
		luts[i], err = lutData(ds, t.data, entries, bits)
		if err != nil {
			return nil, err
		}
	}

	if first > 0 {
		for i, lut := range luts {
			padded := make([]uint16, first, first+len(lut))
			for j := range padded {
				padded[j] = lut[0]
			}
			luts[i] = append(padded, lut...)
		}
	}
	return ColorMapFromLUT(luts[0], luts[1], luts[2], bits)
}

// lutDescriptor returns entries, first mapped value and entry bits. The
// descriptor may be encoded as US or SS.
func lutDescriptor(ds *dataset.Dataset, t *tag.Tag) ([3]uint16, error) {
	var desc [3]uint16
	if values, err := ds.GetUInt16s(t); err == nil && len(values) == 3 {
		copy(desc[:], values)
		return desc, nil
	}
	for i := range desc {
		v, err := ds.GetInt16(t, i)
		if err != nil {
			return desc, fmt.Errorf("%w: LUT descriptor %s: %v", ErrInvalidFrameInfo, t, err)
		}
		desc[i] = uint16(v)
	}
	return desc, nil
}

// lutData reads entries values of a LUT data element, one byte each for 8
// bit entries and little endian words for 16 bit entries.
func lutData(ds *dataset.Dataset, t *tag.Tag, entries, bits int) ([]uint16, error) {
	elem, ok := ds.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w: LUT data %s missing", ErrInvalidFrameInfo, t)
	}
	var raw []byte
	switch v := elem.(type) {
	case *element.OtherWord:
		raw = v.GetData()
	case *element.OtherByte:
		raw = v.GetData()
	default:
		return nil, fmt.Errorf("%w: LUT data %s is %T", ErrInvalidFrameInfo, t, elem)
	}

	lut := make([]uint16, entries)
	switch bits {
	case 8:
		if len(raw) < entries {
			return nil, fmt.Errorf("%w: LUT data %s holds %d of %d entries", ErrInvalidFrameInfo, t, len(raw), entries)
		}
		for i := range lut {
			lut[i] = uint16(raw[i])
		}
	case 16:
		if len(raw) < 2*entries {
			return nil, fmt.Errorf("%w: LUT data %s holds %d of %d entries", ErrInvalidFrameInfo, t, len(raw)/2, entries)
		}
		for i := range lut {
			lut[i] = binary.LittleEndian.Uint16(raw[2*i:])
		}
	default:
		return nil, fmt.Errorf("%w: %d bit LUT entries", ErrInvalidFrameInfo, bits)
	}
	return lut, nil
}
