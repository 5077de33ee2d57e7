package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing     = "ENV_FILE_MISSING"
	ErrCodeInvalidBackendURL  = "INVALID_BACKEND_URL"
	ErrCodeMalformedToken     = "MALFORMED_TOKEN"
	ErrCodeBackendUnreachable = "BACKEND_UNREACHABLE"
	ErrCodeAuthFailed         = "AUTH_FAILED"
	ErrCodeInvalidPort        = "INVALID_PORT"
	ErrCodeMissingConfig      = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrInvalidBackendURL returns an error for an invalid backend URL format
func ErrInvalidBackendURL(name string, url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBackendURL,
		Message: fmt.Sprintf("Invalid %s URL '%s': %s", name, url, reason),
		Action:  fmt.Sprintf("Set %s to a valid https URL", name),
	}
}

// ErrMalformedToken returns an error for a token that is present but unusable
func ErrMalformedToken(varName string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMalformedToken,
		Message: fmt.Sprintf("%s is set but unusable: %s", varName, reason),
		Action:  fmt.Sprintf("Check %s in your .env file, or unset it to run with local fallbacks", varName),
	}
}

// ErrBackendUnreachable returns an error when a generation backend cannot be reached
func ErrBackendUnreachable(name string, url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeBackendUnreachable,
		Message: fmt.Sprintf("Cannot connect to %s at %s: %s", name, url, reason),
		Action:  "Check network connectivity. For self-signed certificates, set ALLOW_SELF_SIGNED_CERTS=true",
	}
}

// ErrAuthFailed returns an error when a backend rejects our credentials
func ErrAuthFailed(service string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeAuthFailed,
		Message: fmt.Sprintf("Authentication failed for %s: %s", service, reason),
		Action:  "Verify your API key is correct and has not expired",
	}
}

// ErrInvalidPort returns an error for an out-of-range listen port
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid PORT value: %d", port),
		Action:  "Set PORT to a value between 1 and 65535",
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
