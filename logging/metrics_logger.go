// Package logging provides structured logging utilities for the MakerKit backend.
//
// metrics_logger.go is an organism that provides a unified API for generation
// metrics logging. It composes:
//   - GenerationMetrics atom (per-request metrics)
//   - GenerationFields, AttemptFields, TimingFields molecules (zap field helpers)
//
// This organism provides high-level functions for logging design generation
// operations with timing capture and structured output.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// MetricsLogger provides structured logging for design generation operations.
// It wraps a Logger and provides convenience methods for generation logging.
//
// Example:
//
//	ml := logging.NewMetricsLogger(logger)
//	timer := ml.StartGeneration("text-to-image")
//	// ... run the cascade ...
//	ml.EndGeneration(timer, "huggingface", "runwayml/stable-diffusion-v1-5", 1, 4, false)
type MetricsLogger struct {
	logger *Logger
}

// NewMetricsLogger creates a MetricsLogger wrapping the given Logger.
func NewMetricsLogger(logger *Logger) *MetricsLogger {
	return &MetricsLogger{logger: logger}
}

// GenerationTimer tracks timing for one generation request.
// Use StartGeneration to create and EndGeneration to complete.
type GenerationTimer struct {
	Method    string
	StartTime time.Time
}

// StartGeneration begins timing a generation request.
// Call EndGeneration when the request resolves.
func (ml *MetricsLogger) StartGeneration(method string) *GenerationTimer {
	return &GenerationTimer{
		Method:    method,
		StartTime: time.Now(),
	}
}

// EndGeneration completes timing and logs the generation metrics.
// Returns the completed GenerationMetrics for further use if needed.
//
// Example:
//
//	timer := ml.StartGeneration("sketch-guided")
//	// ... run the cascade ...
//	metrics := ml.EndGeneration(timer, result.Source, result.Model, len(result.ModelAttempts), len(result.Images), result.UsedFallback)
func (ml *MetricsLogger) EndGeneration(timer *GenerationTimer, source, model string, attempts, imageCount int, usedFallback bool) GenerationMetrics {
	metrics := GenerationMetrics{
		Method:       timer.Method,
		Source:       source,
		Model:        model,
		Attempts:     attempts,
		ImageCount:   imageCount,
		UsedFallback: usedFallback,
		Duration:     time.Since(timer.StartTime),
	}

	ml.logger.Info("generation complete", GenerationFields(metrics))
	return metrics
}

// LogGeneration logs a complete generation operation in a single call.
// Use this when you have all metrics available at once.
func (ml *MetricsLogger) LogGeneration(metrics GenerationMetrics) {
	ml.logger.Info("generation complete", GenerationFields(metrics))
}

// Debug logs a debug message with generation context.
func (ml *MetricsLogger) Debug(msg string, fields ...zap.Field) {
	ml.logger.Debug(msg, fields...)
}

// Info logs an info message with generation context.
func (ml *MetricsLogger) Info(msg string, fields ...zap.Field) {
	ml.logger.Info(msg, fields...)
}

// Warn logs a warning message with generation context.
func (ml *MetricsLogger) Warn(msg string, fields ...zap.Field) {
	ml.logger.Warn(msg, fields...)
}

// Error logs an error message with generation context.
func (ml *MetricsLogger) Error(msg string, fields ...zap.Field) {
	ml.logger.Error(msg, fields...)
}

// WithModel returns a MetricsLogger with model name context.
// All subsequent logs will include the model name.
func (ml *MetricsLogger) WithModel(modelName string) *MetricsLogger {
	return &MetricsLogger{
		logger: ml.logger.With(zap.String("model", modelName)),
	}
}

// WithProject returns a MetricsLogger with project context.
// All subsequent logs will include the project ID.
func (ml *MetricsLogger) WithProject(projectID string) *MetricsLogger {
	return &MetricsLogger{
		logger: ml.logger.With(zap.String("project_id", projectID)),
	}
}

// WithCorrelation returns a MetricsLogger with correlation ID.
// Use for tracing related operations.
//
// Example:
//
//	reqLogger := ml.WithCorrelation("req-abc123")
//	reqLogger.Info("request started")
func (ml *MetricsLogger) WithCorrelation(correlationID string) *MetricsLogger {
	return &MetricsLogger{
		logger: ml.logger.With(zap.String("correlation_id", correlationID)),
	}
}

// Logger returns the underlying Logger for direct access.
func (ml *MetricsLogger) Logger() *Logger {
	return ml.logger
}
