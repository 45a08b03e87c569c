package photometric

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a decoder from a configuration.
type Factory func(cfg Config) (Decoder, error)

// Variant describes one registered decoder.
type Variant struct {
	Name           string
	Interpretation Interpretation
	Layout         Layout
	New            Factory
}

// Registry manages the available decoders
type Registry struct {
	mu       sync.RWMutex
	variants map[string]*Variant // key can be either name or interpretation/layout
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{variants: make(map[string]*Variant)}
}

var defaultRegistry = NewRegistry()

func init() {
	for _, v := range builtinVariants() {
		defaultRegistry.Register(v)
	}
}

// Register adds v to the default registry
func Register(v *Variant) {
	defaultRegistry.Register(v)
}

// Get retrieves a variant by name from the default registry
func Get(name string) (*Variant, error) {
	return defaultRegistry.Get(name)
}

// Lookup retrieves the variant for an interpretation and layout
func Lookup(pi Interpretation, layout Layout) (*Variant, error) {
	return defaultRegistry.Lookup(pi, layout)
}

// List returns all registered variants
func List() []*Variant {
	return defaultRegistry.List()
}

func layoutKey(pi Interpretation, layout Layout) string {
	return fmt.Sprintf("%d/%d", uint16(pi), uint16(layout))
}

// Register registers a variant using both its name and interpretation/layout
func (r *Registry) Register(v *Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.variants[v.Name] = v
	r.variants[layoutKey(v.Interpretation, v.Layout)] = v
}

// Get retrieves a variant by name
func (r *Registry) Get(name string) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	return v, nil
}

// Lookup retrieves the variant registered for pi and layout
func (r *Registry) Lookup(pi Interpretation, layout Layout) (*Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variants[layoutKey(pi, layout)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnsupported, pi, layout)
	}
	return v, nil
}

// List returns all registered variants (deduplicated, sorted by name)
func (r *Registry) List() []*Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Variant]bool)
	variants := make([]*Variant, 0)

	for _, v := range r.variants {
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	sort.Slice(variants, func(i, j int) bool { return variants[i].Name < variants[j].Name })
	return variants
}

// decoder keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer.
func decoder[D Decoder](d D, err error) (Decoder, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

func builtinVariants() []*Variant {
	gray := func(white bool) Factory {
		return func(cfg Config) (Decoder, error) {
			bits, err := singleSample(cfg)
			if err != nil {
				return nil, err
			}
			if white {
				return decoder(NewWhiteIsZero(bits))
			}
			return decoder(NewBlackIsZero(bits))
		}
	}
	palette := func(cfg Config) (Decoder, error) {
		bits, err := singleSample(cfg)
		if err != nil {
			return nil, err
		}
		return decoder(NewPalette(bits, cfg.ColorMap))
	}

	return []*Variant{
		{Name: "gray-white-is-zero", Interpretation: WhiteIsZero, Layout: LayoutChunky, New: gray(true)},
		{Name: "gray-white-is-zero-planar", Interpretation: WhiteIsZero, Layout: LayoutPlanar, New: gray(true)},
		{Name: "gray-black-is-zero", Interpretation: BlackIsZero, Layout: LayoutChunky, New: gray(false)},
		{Name: "gray-black-is-zero-planar", Interpretation: BlackIsZero, Layout: LayoutPlanar, New: gray(false)},
		{Name: "palette", Interpretation: Paletted, Layout: LayoutChunky, New: palette},
		{Name: "palette-planar", Interpretation: Paletted, Layout: LayoutPlanar, New: palette},
		{Name: "rgb", Interpretation: RGB, Layout: LayoutChunky, New: func(cfg Config) (Decoder, error) {
			return decoder(NewRGB(cfg.BitsPerSample, cfg.Alpha))
		}},
		{Name: "rgb-planar", Interpretation: RGB, Layout: LayoutPlanar, New: func(cfg Config) (Decoder, error) {
			if len(cfg.BitsPerSample) == 4 {
				return decoder(NewRGBAPlanar(cfg.BitsPerSample, cfg.Alpha))
			}
			return decoder(NewRGBPlanar(cfg.BitsPerSample))
		}},
		{Name: "cmyk", Interpretation: Separated, Layout: LayoutChunky, New: func(cfg Config) (Decoder, error) {
			return decoder(NewCMYK(cfg.BitsPerSample))
		}},
		{Name: "cmyk-planar", Interpretation: Separated, Layout: LayoutPlanar, New: func(cfg Config) (Decoder, error) {
			return decoder(NewCMYKPlanar(cfg.BitsPerSample))
		}},
		{Name: "ycbcr", Interpretation: YCbCr, Layout: LayoutChunky, New: func(cfg Config) (Decoder, error) {
			return decoder(NewYCbCr(cfg.BitsPerSample, cfg.Coefficients))
		}},
		{Name: "ycbcr-planar", Interpretation: YCbCr, Layout: LayoutPlanar, New: func(cfg Config) (Decoder, error) {
			return decoder(NewYCbCrPlanar(cfg.BitsPerSample, cfg.Coefficients))
		}},
	}
}
