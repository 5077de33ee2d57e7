package imagegen

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"makerkit_backend/core"
	"makerkit_backend/logging"
)

// SleepFunc pauses for the given duration or until the context is canceled.
// Extracted as a type so tests can observe waits without real sleeping.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepContext is the production SleepFunc.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryController drives repeated invocations against a single model.
// A molecule between the Invoker and the cascade: it absorbs model warmup
// ("loading") failures by waiting and retrying, passes credential failures
// straight through, and gives up on everything else so the cascade can move
// to the next model.
type RetryController struct {
	invoker     Invoker
	maxAttempts int
	defaultWait time.Duration
	waitBuffer  time.Duration
	waitCap     time.Duration
	sleep       SleepFunc
	logger      *logging.Logger
}

// NewRetryController creates a retry controller from application config.
func NewRetryController(cfg *core.Config, invoker Invoker, logger *logging.Logger) *RetryController {
	return &RetryController{
		invoker:     invoker,
		maxAttempts: cfg.MaxAttemptsPerModel,
		defaultWait: cfg.ModelWarmupWait,
		waitBuffer:  cfg.ModelWarmupBuffer,
		waitCap:     cfg.ModelWarmupWaitCap,
		sleep:       sleepContext,
		logger:      logger.Named("retry"),
	}
}

// WithSleep replaces the sleep function. Intended for tests.
func (r *RetryController) WithSleep(sleep SleepFunc) *RetryController {
	r.sleep = sleep
	return r
}

// InvokeWithRetry invokes one model up to maxAttempts times.
//
// Retry policy:
//   - success: return immediately
//   - credentials rejected: return immediately, no retry is useful
//   - model still loading: wait (backend hint + buffer, capped) and retry
//   - anything else: return the error so the cascade tries the next model
//
// The final attempt's error is returned when retries are exhausted.
func (r *RetryController) InvokeWithRetry(ctx context.Context, modelID string, payload InvokePayload) (*InvokeResult, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := r.invoker.Invoke(ctx, modelID, payload, true)
		if err == nil {
			if attempt > 1 {
				r.logger.Info("model recovered after retry", logging.AttemptFields(modelID, attempt, r.maxAttempts)...)
			}
			return result, nil
		}
		lastErr = err

		if IsCredentialsError(err) {
			return nil, err
		}

		var backendErr *BackendError
		if errors.As(err, &backendErr) && backendErr.IsLoading() && attempt < r.maxAttempts {
			wait := r.waitFor(backendErr)
			r.logger.Info("model loading, waiting before retry",
				append(logging.AttemptFields(modelID, attempt, r.maxAttempts),
					zap.Duration("wait", wait),
					zap.Float64("estimated_time", backendErr.EstimatedWait))...)
			if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		r.logger.Warn("model invocation failed",
			append(logging.AttemptFields(modelID, attempt, r.maxAttempts), zap.Error(err))...)
		return nil, err
	}

	return nil, lastErr
}

// waitFor computes the warmup wait for a loading model: the backend's hint
// when it gave one, otherwise the configured default, plus a small buffer,
// capped so one slow model cannot eat the whole cascade budget.
func (r *RetryController) waitFor(err *BackendError) time.Duration {
	wait := r.defaultWait
	if err.EstimatedWait > 0 {
		wait = time.Duration(err.EstimatedWait * float64(time.Second))
	}
	wait += r.waitBuffer
	if wait > r.waitCap {
		wait = r.waitCap
	}
	return wait
}
