package imagegen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog maps each generation method to its ordered model identifiers.
// The first entry is the primary model; the rest are fallbacks tried in
// order when the primary fails. A Catalog is immutable after construction.
type Catalog struct {
	entries map[Method][]string
}

// DefaultCatalog returns the built-in model catalog. Primary models lead
// each list; fallbacks follow in preference order.
func DefaultCatalog() *Catalog {
	return &Catalog{
		entries: map[Method][]string{
			MethodTextToImage: {
				"runwayml/stable-diffusion-v1-5",
				"stabilityai/stable-diffusion-2-1",
				"stabilityai/stable-diffusion-xl-base-1.0",
			},
			MethodSketchGuided: {
				"lllyasviel/sd-controlnet-scribble",
				"lllyasviel/sd-controlnet-canny",
				"lllyasviel/sd-controlnet-openpose",
			},
			MethodImageToImage: {
				"runwayml/stable-diffusion-v1-5",
				"stabilityai/stable-diffusion-2-1",
			},
		},
	}
}

// catalogFile is the YAML shape of a catalog override file:
//
//	text-to-image:
//	  - runwayml/stable-diffusion-v1-5
//	sketch-guided:
//	  - lllyasviel/sd-controlnet-scribble
type catalogFile map[string][]string

// LoadCatalogFile reads a catalog override from a YAML file. Methods absent
// from the file keep their built-in model lists; methods present replace
// theirs entirely. Unknown method names in the file are an error so typos
// fail at startup rather than silently at request time.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing model catalog %s: %w", path, err)
	}

	catalog := DefaultCatalog()
	for name, models := range file {
		method, err := ParseMethod(name)
		if err != nil {
			return nil, fmt.Errorf("model catalog %s: unknown method %q", path, name)
		}
		if len(models) == 0 {
			return nil, fmt.Errorf("model catalog %s: method %q has no models", path, name)
		}
		catalog.entries[method] = append([]string(nil), models...)
	}
	return catalog, nil
}

// Models returns the ordered model list for a method. The returned slice is
// a copy; callers may modify it freely.
func (c *Catalog) Models(m Method) ([]string, error) {
	models, ok := c.entries[m]
	if !ok || len(models) == 0 {
		return nil, &UnsupportedMethodError{Method: string(m)}
	}
	return append([]string(nil), models...), nil
}

// Primary returns the first (preferred) model for a method.
func (c *Catalog) Primary(m Method) (string, error) {
	models, err := c.Models(m)
	if err != nil {
		return "", err
	}
	return models[0], nil
}

// Methods returns every method the catalog covers. Order is unspecified.
func (c *Catalog) Methods() []Method {
	methods := make([]Method, 0, len(c.entries))
	for m := range c.entries {
		methods = append(methods, m)
	}
	return methods
}
