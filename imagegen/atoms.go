package imagegen

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// dataURLPrefix matches the header of a base64 image data URL.
var dataURLPrefix = regexp.MustCompile(`^data:image/[a-zA-Z+.-]+;base64,`)

// IsLargeModel determines whether a model identifier names a high-resolution
// variant. Pure function for testability.
//
// Parameters:
//   - modelID: backend model identifier (e.g., "stabilityai/stable-diffusion-xl-base-1.0")
//
// Returns true if the identifier indicates an XL or large variant.
//
// Example:
//
//	IsLargeModel("stabilityai/stable-diffusion-xl-base-1.0")  // true
//	IsLargeModel("runwayml/stable-diffusion-v1-5")            // false
func IsLargeModel(modelID string) bool {
	lower := strings.ToLower(modelID)
	return strings.Contains(lower, "xl") || strings.Contains(lower, "large")
}

// ResolutionFor returns the output resolution (square, in pixels) to request
// from a model. XL and large variants get 1024, everything else 512.
func ResolutionFor(modelID string) int {
	if IsLargeModel(modelID) {
		return 1024
	}
	return 512
}

// StripDataURLPrefix removes a data URL header from a base64 image string,
// returning the bare base64 payload. Input without a header is returned
// unchanged.
//
// Example:
//
//	StripDataURLPrefix("data:image/png;base64,iVBORw...")  // "iVBORw..."
//	StripDataURLPrefix("iVBORw...")                        // "iVBORw..."
func StripDataURLPrefix(s string) string {
	return dataURLPrefix.ReplaceAllString(s, "")
}

// HasDataURLPrefix reports whether s carries an image data URL header.
func HasDataURLPrefix(s string) bool {
	return dataURLPrefix.MatchString(s)
}

// ToDataURL encodes raw image bytes as a base64 data URL.
//
// Parameters:
//   - contentType: MIME type reported by the backend (e.g., "image/png").
//     Falls back to "image/png" when empty.
//   - data: raw image bytes
//
// Example:
//
//	url := ToDataURL("image/jpeg", jpegBytes)
//	// "data:image/jpeg;base64,/9j/4AAQ..."
func ToDataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// IsImageContentType reports whether an HTTP content type names an image.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// Prompt qualifiers appended per method. The hosted SD-family models respond
// much better to industrial-design vocabulary than to bare client prompts.
const (
	textToImageQualifier = ", professional industrial design, high quality, detailed, realistic materials, studio lighting, product design"
	sketchDefaultPrompt  = "professional industrial design, high quality, detailed product, realistic materials"
	img2imgDefaultPrompt = "professional product design variations, high quality, different styles and colors"
)

// QualifyPrompt augments a client prompt for the given method. Empty prompts
// for image-conditioned methods get a method-appropriate default so the
// backend always receives guidance text.
func QualifyPrompt(method Method, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	switch method {
	case MethodSketchGuided:
		if prompt == "" {
			return sketchDefaultPrompt
		}
		return prompt
	case MethodImageToImage:
		if prompt == "" {
			return img2imgDefaultPrompt
		}
		return prompt
	default:
		return prompt + textToImageQualifier
	}
}

// truncateText truncates text to a maximum length with ellipsis.
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}
