// Package logging provides structured logging utilities for the MakerKit backend.
// This file contains molecule-level helper functions that compose the
// GenerationMetrics atom into convenient zap.Field helpers for structured logging.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// GenerationFields creates a structured zap field from generation metrics.
// This is a molecule that composes the GenerationMetrics atom into a ready-to-use zap.Field.
//
// Example:
//
//	metrics := logging.GenerationMetrics{
//		Method:     "text-to-image",
//		Source:     "huggingface",
//		Model:      "runwayml/stable-diffusion-v1-5",
//		Attempts:   1,
//		ImageCount: 4,
//		Duration:   6 * time.Second,
//	}
//	logger.Info("generation complete", logging.GenerationFields(metrics))
func GenerationFields(metrics GenerationMetrics) zap.Field {
	return zap.Object("generation", metrics)
}

// AttemptFields creates a slice of zap fields for one model invocation attempt.
// This is a convenience function for logging retry progress without a full metrics struct.
//
// Example:
//
//	logger.Info("invoking model", logging.AttemptFields("runwayml/stable-diffusion-v1-5", 2, 3)...)
func AttemptFields(model string, attempt, maxAttempts int) []zap.Field {
	return []zap.Field{
		zap.String("model", model),
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", maxAttempts),
	}
}

// TimingFields creates a slice of zap fields for generation timing.
//
// Example:
//
//	start := time.Now()
//	// ... invoke backend ...
//	logger.Info("timing", logging.TimingFields(start, time.Now())...)
func TimingFields(startTime, endTime time.Time) []zap.Field {
	return []zap.Field{
		zap.Time("start_time", startTime),
		zap.Time("end_time", endTime),
		zap.Duration("duration", endTime.Sub(startTime)),
	}
}
