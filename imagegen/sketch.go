package imagegen

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Sketch preprocessing errors
var (
	ErrEmptySketch   = errors.New("imagegen: empty sketch data")
	ErrInvalidSketch = errors.New("imagegen: invalid sketch data")
)

// DecodeAuxiliary decodes a client-supplied auxiliary image (sketch or
// reference photo) from a data URL or bare base64 string.
func DecodeAuxiliary(auxiliary string) (image.Image, error) {
	if auxiliary == "" {
		return nil, ErrEmptySketch
	}

	raw, err := base64.StdEncoding.DecodeString(StripDataURLPrefix(auxiliary))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSketch, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSketch, err)
	}
	return img, nil
}

// DownscaleToFit scales an image down so neither dimension exceeds maxSize,
// preserving aspect ratio with high-quality resampling. Images already
// within bounds are returned unchanged.
// This is a pure function with no side effects.
func DownscaleToFit(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(maxInt(width, height))
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodeAuxiliaryPNG re-encodes an image as a PNG data URL, the format the
// image-conditioned backend payloads carry.
func EncodeAuxiliaryPNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding auxiliary image: %w", err)
	}
	return ToDataURL("image/png", buf.Bytes()), nil
}

// PrepareAuxiliary normalizes a client auxiliary image for a backend payload:
// decode, downscale to the model's working resolution, re-encode as a PNG
// data URL. Preprocessing is best-effort: when the input cannot be decoded
// it is forwarded as-is with a normalized data URL header, and the backend
// gets to render its own verdict.
func PrepareAuxiliary(auxiliary string, maxSize int) string {
	img, err := DecodeAuxiliary(auxiliary)
	if err != nil {
		return "data:image/png;base64," + StripDataURLPrefix(auxiliary)
	}

	encoded, err := EncodeAuxiliaryPNG(DownscaleToFit(img, maxSize))
	if err != nil {
		return "data:image/png;base64," + StripDataURLPrefix(auxiliary)
	}
	return encoded
}

// maxInt returns the maximum of two integers
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
