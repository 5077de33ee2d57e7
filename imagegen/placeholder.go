package imagegen

// PlaceholderProvider serves deterministic local demo images when no backend
// can. It performs no network or file I/O: the samples are fixed HTTPS URLs
// to stable stock imagery, so the same request always yields the same list.
type PlaceholderProvider struct {
	samples []string
}

// defaultPlaceholderSamples are curated industrial-design stock images.
// Stable URLs: the host serves them deterministically with size parameters
// baked in.
var defaultPlaceholderSamples = []string{
	"https://images.unsplash.com/photo-1581094794321-8410e6f0e61d?w=512&h=512&fit=crop",
	"https://images.unsplash.com/photo-1581093458791-9d42e3c7e117?w=512&h=512&fit=crop",
	"https://images.unsplash.com/photo-1581093588401-fbb62a02f120?w=512&h=512&fit=crop",
	"https://images.unsplash.com/photo-1537462715879-360eeb61a0ad?w=512&h=512&fit=crop",
}

// NewPlaceholderProvider creates a provider backed by the built-in samples.
func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{samples: defaultPlaceholderSamples}
}

// NewPlaceholderProviderWithSamples creates a provider with custom samples.
// Panics are avoided by ignoring empty input and keeping the defaults.
func NewPlaceholderProviderWithSamples(samples []string) *PlaceholderProvider {
	if len(samples) == 0 {
		return NewPlaceholderProvider()
	}
	return &PlaceholderProvider{samples: append([]string(nil), samples...)}
}

// Images returns exactly count placeholder URLs, cycling through the sample
// set when count exceeds it. Deterministic: identical inputs yield identical
// output.
func (p *PlaceholderProvider) Images(count int) []string {
	if count <= 0 {
		return []string{}
	}
	images := make([]string, count)
	for i := 0; i < count; i++ {
		images[i] = p.samples[i%len(p.samples)]
	}
	return images
}
