package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// GenerationMetrics represents metrics collected for one design generation request.
// Implements zapcore.ObjectMarshaler for structured logging.
//
// This is a pure data structure with no dependencies on other logging atoms.
//
// Example:
//
//	metrics := GenerationMetrics{
//		Method:       "text-to-image",
//		Source:       "huggingface",
//		Model:        "stabilityai/stable-diffusion-2-1",
//		Attempts:     2,
//		ImageCount:   4,
//		UsedFallback: true,
//		Duration:     8 * time.Second,
//	}
//	logger.Info("generation complete", zap.Object("metrics", metrics))
type GenerationMetrics struct {
	// Method identifies which generation method served the request
	Method string `json:"method"`

	// Source identifies the backend that produced the final images
	Source string `json:"source"`

	// Model is the backend model that produced the final images
	Model string `json:"model"`

	// Attempts is how many models were invoked before the request resolved
	Attempts int `json:"attempts"`

	// ImageCount is the number of candidates delivered to the caller
	ImageCount int `json:"image_count"`

	// UsedFallback reports whether any fallback beyond the primary model fired
	UsedFallback bool `json:"used_fallback"`

	// Duration is the total wall-clock time for the request
	Duration time.Duration `json:"duration"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
// This allows GenerationMetrics to be logged as a nested JSON object in zap logs.
//
// Duration is encoded in milliseconds for readability.
func (m GenerationMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("method", m.Method)
	enc.AddString("source", m.Source)
	enc.AddString("model", m.Model)
	enc.AddInt("attempts", m.Attempts)
	enc.AddInt("image_count", m.ImageCount)
	enc.AddBool("used_fallback", m.UsedFallback)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	return nil
}
