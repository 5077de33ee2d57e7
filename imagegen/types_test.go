package imagegen

import (
	"errors"
	"testing"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Method
		wantErr  bool
	}{
		{"canonical text-to-image", "text-to-image", MethodTextToImage, false},
		{"canonical sketch-guided", "sketch-guided", MethodSketchGuided, false},
		{"canonical image-to-image", "image-to-image", MethodImageToImage, false},
		{"legacy sdxl alias", "sdxl", MethodTextToImage, false},
		{"legacy prompt alias", "prompt", MethodTextToImage, false},
		{"legacy controlnet alias", "controlnet", MethodSketchGuided, false},
		{"legacy sketch alias", "sketch", MethodSketchGuided, false},
		{"legacy img2img alias", "img2img", MethodImageToImage, false},
		{"mixed case with spaces", "  Text-To-Image  ", MethodTextToImage, false},
		{"unknown method", "3d-render", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMethod(%q) expected error, got %q", tt.input, got)
				}
				var methodErr *UnsupportedMethodError
				if !errors.As(err, &methodErr) {
					t.Errorf("Expected UnsupportedMethodError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseMethod(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMethodSource(t *testing.T) {
	tests := []struct {
		method   Method
		expected string
	}{
		{MethodTextToImage, SourceHuggingFace},
		{MethodSketchGuided, SourceHuggingFaceControlNet},
		{MethodImageToImage, SourceHuggingFaceImg2Img},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			if got := methodSource(tt.method); got != tt.expected {
				t.Errorf("methodSource(%q) = %q, want %q", tt.method, got, tt.expected)
			}
		})
	}
}

func TestCascadeTarget(t *testing.T) {
	t.Run("sketch-guided falls back to text-to-image", func(t *testing.T) {
		target, ok := cascadeTarget(MethodSketchGuided)
		if !ok || target != MethodTextToImage {
			t.Errorf("cascadeTarget(sketch-guided) = (%q, %v), want (text-to-image, true)", target, ok)
		}
	})

	t.Run("image-to-image falls back to text-to-image", func(t *testing.T) {
		target, ok := cascadeTarget(MethodImageToImage)
		if !ok || target != MethodTextToImage {
			t.Errorf("cascadeTarget(image-to-image) = (%q, %v), want (text-to-image, true)", target, ok)
		}
	})

	t.Run("text-to-image has no method fallback", func(t *testing.T) {
		if _, ok := cascadeTarget(MethodTextToImage); ok {
			t.Error("text-to-image should have no cascade target")
		}
	})
}
