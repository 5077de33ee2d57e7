package imagegen

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedMethodError reports a generation method the catalog does not
// cover. It surfaces before any backend I/O.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported generation method: %s", e.Method)
}

// CredentialsError reports that the backend rejected our credentials.
// This is the one backend condition that aborts the cascade instead of
// triggering a fallback: retrying other models with the same bad token
// would only burn time.
type CredentialsError struct {
	StatusCode int
	Reason     string
	Action     string
}

func (e *CredentialsError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("backend rejected credentials (HTTP %d): %s. %s", e.StatusCode, e.Reason, e.Action)
	}
	return fmt.Sprintf("backend rejected credentials (HTTP %d): %s", e.StatusCode, e.Reason)
}

// BackendError reports a failed backend invocation: a non-2xx status or a
// JSON error document in place of image bytes. EstimatedWait carries the
// backend's wait hint in seconds when the model is still loading (0 if the
// backend gave none).
type BackendError struct {
	Model         string
	StatusCode    int
	Message       string
	EstimatedWait float64
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("model %s failed (HTTP %d): %s", e.Model, e.StatusCode, e.Message)
}

// IsLoading reports whether the failure indicates a model that is still
// warming up and worth retrying after a wait.
func (e *BackendError) IsLoading() bool {
	if e.StatusCode == 503 {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "loading")
}

// InvalidResponseTypeError reports a 2xx backend response whose content type
// is not an image. Treated like any other model failure: the cascade moves on.
type InvalidResponseTypeError struct {
	Model       string
	ContentType string
}

func (e *InvalidResponseTypeError) Error() string {
	return fmt.Sprintf("model %s returned %q instead of an image", e.Model, e.ContentType)
}

// ParseError reports a backend response body that could not be decoded.
type ParseError struct {
	Model  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model %s response could not be parsed: %s", e.Model, e.Reason)
}

// IsCredentialsError reports whether err is (or wraps) a CredentialsError.
func IsCredentialsError(err error) bool {
	var credErr *CredentialsError
	return errors.As(err, &credErr)
}

// IsUnsupportedMethod reports whether err is (or wraps) an UnsupportedMethodError.
func IsUnsupportedMethod(err error) bool {
	var methodErr *UnsupportedMethodError
	return errors.As(err, &methodErr)
}

// isCredentialStatus reports whether an HTTP status indicates bad credentials.
func isCredentialStatus(code int) bool {
	return code == 401 || code == 403
}
