// Package imagegen provides AI image generation for design candidates.
//
// The package follows atomic design principles:
//   - Atoms: pure helpers (model resolution, data URL handling, prompt suffixes)
//   - Molecules: Catalog, RetryController, PlaceholderProvider, sketch preprocessing
//   - Organisms: HFInvoker, HFProber, Service (the generation cascade)
//
// Generation never fails outright: when every hosted model is exhausted the
// Service degrades to deterministic local placeholder images, and the result
// provenance records exactly which models were tried along the way.
package imagegen

import "strings"

// Method identifies a generation method exposed to clients.
type Method string

// Supported generation methods.
const (
	// MethodTextToImage generates candidates from a text prompt alone.
	MethodTextToImage Method = "text-to-image"

	// MethodSketchGuided generates candidates conditioned on a client sketch.
	MethodSketchGuided Method = "sketch-guided"

	// MethodImageToImage generates variations of an existing reference image.
	MethodImageToImage Method = "image-to-image"
)

// Source values recorded in result provenance.
const (
	SourceHuggingFace           = "huggingface"
	SourceHuggingFaceControlNet = "huggingface-controlnet"
	SourceHuggingFaceImg2Img    = "huggingface-img2img"
	SourceLocalFallback         = "local-fallback"
)

// FallbackModelName is the model identifier recorded when placeholder images
// are served instead of backend output.
const FallbackModelName = "demo-generator"

// ParseMethod resolves a client-supplied method string to a Method.
// Legacy aliases from earlier API versions are accepted. Unknown values
// return an UnsupportedMethodError without touching any backend.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(MethodTextToImage), "prompt", "sd", "sdxl":
		return MethodTextToImage, nil
	case string(MethodSketchGuided), "sketch", "controlnet":
		return MethodSketchGuided, nil
	case string(MethodImageToImage), "img2img":
		return MethodImageToImage, nil
	default:
		return "", &UnsupportedMethodError{Method: s}
	}
}

// GenerationRequest describes one design generation request.
//
// Auxiliary carries the sketch or reference image as a data URL (or raw
// base64) for the methods that need one; it is ignored for text-to-image.
type GenerationRequest struct {
	Method    Method
	Prompt    string
	Auxiliary string
	Count     int
}

// Provenance records how a generation result was produced. It travels with
// every result so clients can tell backend output from placeholder output.
type Provenance struct {
	// Source is the backend family that produced the images
	Source string `json:"source"`

	// Model is the model that produced the images (FallbackModelName for placeholders)
	Model string `json:"model"`

	// UsedFallback is true when anything beyond the primary model served the request
	UsedFallback bool `json:"used_fallback"`

	// FallbackReason explains why a fallback fired; empty on primary success
	FallbackReason string `json:"fallback_reason,omitempty"`

	// ModelAttempts lists every model invoked, in invocation order, across
	// method cascades. Empty when no model was ever attempted.
	ModelAttempts []string `json:"model_attempts"`
}

// GenerationResult is the outcome of a generation request. Images always
// contains exactly the requested candidate count, as data URLs or HTTPS URLs.
type GenerationResult struct {
	Images []string `json:"images"`
	Provenance
}

// methodSource maps a method to its provenance source value.
func methodSource(m Method) string {
	switch m {
	case MethodSketchGuided:
		return SourceHuggingFaceControlNet
	case MethodImageToImage:
		return SourceHuggingFaceImg2Img
	default:
		return SourceHuggingFace
	}
}

// cascadeTarget returns the method to fall back to when every model for m is
// exhausted, and whether such a target exists. Image-conditioned methods fall
// back to plain text-to-image; text-to-image has nowhere left to go.
func cascadeTarget(m Method) (Method, bool) {
	switch m {
	case MethodSketchGuided, MethodImageToImage:
		return MethodTextToImage, true
	default:
		return "", false
	}
}
