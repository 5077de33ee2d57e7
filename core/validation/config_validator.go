package validation

import (
	"os"
	"strconv"
	"strings"

	"makerkit_backend/core"
)

// ValidationResult represents the result of a configuration validation check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator composes validation atoms to provide comprehensive configuration checking.
// This is a molecule that orchestrates URL validation, file existence, token format,
// and storage checks.
//
// Both backend credentials are optional: the generator runs on local
// placeholders and synthetic evaluations without them. Their checks report
// invalid so the suite can surface a warning, but startup never blocks on
// them.
type ConfigValidator struct {
	envPath string // Path to .env file (default: ".env")
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath: ".env",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile validates that the .env file exists.
// Returns a ValidationResult with error details if the file is missing.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "No .env file found. Copy example.env to .env to configure backends; defaults run fully offline.",
			Error:   core.ErrEnvFileMissing(v.envPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckImageBackendToken validates the HF_API_TOKEN environment variable.
// An absent token is reported invalid so the suite shows a warning, but it
// is never fatal: generation falls back to local placeholders.
func (v *ConfigValidator) CheckImageBackendToken() ValidationResult {
	token := os.Getenv("HF_API_TOKEN")
	if token == "" {
		token = os.Getenv("HUGGINGFACE_API_TOKEN")
	}

	if token == "" {
		return ValidationResult{
			Valid:   false,
			Message: "HF_API_TOKEN not set (optional - generation will use local placeholders)",
			Error:   core.ErrMissingConfig("HF_API_TOKEN"),
		}
	}

	if !strings.HasPrefix(token, "hf_") {
		return ValidationResult{
			Valid:   false,
			Message: "HF_API_TOKEN is malformed (expected hf_ prefix) - treated as unconfigured",
			Error:   core.ErrMalformedToken("HF_API_TOKEN", "expected hf_ prefix"),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Image backend token configured",
	}
}

// CheckTextBackendKey validates the MISTRAL_API_KEY environment variable.
// Like the image token, absence is a warning: evaluation and prompt
// authoring degrade to local synthetic output.
func (v *ConfigValidator) CheckTextBackendKey() ValidationResult {
	if os.Getenv("MISTRAL_API_KEY") == "" {
		return ValidationResult{
			Valid:   false,
			Message: "MISTRAL_API_KEY not set (optional - evaluations will be synthetic)",
			Error:   core.ErrMissingConfig("MISTRAL_API_KEY"),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Text backend key configured",
	}
}

// CheckBackendURLs validates the configured backend endpoint URLs.
func (v *ConfigValidator) CheckBackendURLs() ValidationResult {
	urls := []struct {
		name     string
		value    string
		fallback string
	}{
		{"HF_ROUTER_URL", os.Getenv("HF_ROUTER_URL"), "https://router.huggingface.co/hf-inference"},
		{"HF_ACCOUNT_URL", os.Getenv("HF_ACCOUNT_URL"), "https://huggingface.co/api/whoami-v2"},
		{"MISTRAL_BASE_URL", os.Getenv("MISTRAL_BASE_URL"), "https://api.mistral.ai/v1"},
	}

	for _, u := range urls {
		value := u.value
		if value == "" {
			value = u.fallback
		}
		if err := ValidateServerURL(value); err != nil {
			return ValidationResult{
				Valid:   false,
				Message: "Invalid " + u.name + ": " + value,
				Error:   core.ErrInvalidBackendURL(u.name, value, err.Error()),
			}
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Backend URLs valid",
	}
}

// CheckPort validates the PORT environment variable.
func (v *ConfigValidator) CheckPort() ValidationResult {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		return ValidationResult{
			Valid:   true,
			Message: "Port defaulted to 3000",
		}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return ValidationResult{
			Valid:   false,
			Message: "PORT must be a number between 1 and 65535, got: " + portStr,
			Error:   core.ErrInvalidPort(port),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Port valid",
	}
}

// CheckDataDirectory validates that the database path is usable: its parent
// directory can be created and the filesystem has headroom.
func (v *ConfigValidator) CheckDataDirectory() ValidationResult {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/makerkit.db"
	}

	dir := getParentPath(dbPath)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Cannot create data directory: " + dir,
			Error:   err,
		}
	}

	if err := CheckDiskSpaceForDatabase(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Insufficient disk space for the database",
			Error:   err,
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Data directory ready",
	}
}

// ValidateAll runs all configuration checks and returns all results.
// This provides a comprehensive view of the configuration state, including optional settings.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckEnvFile(),
		v.CheckImageBackendToken(),
		v.CheckTextBackendKey(),
		v.CheckBackendURLs(),
		v.CheckPort(),
		v.CheckDataDirectory(),
	}
}

// ValidateRequired runs only the checks that must pass for the server to
// start. Backend credentials are deliberately excluded: a credential-free
// deployment serves placeholders and synthetic reports.
// Returns the first validation failure, or nil if all required checks pass.
func (v *ConfigValidator) ValidateRequired() error {
	if result := v.CheckBackendURLs(); !result.Valid {
		return result.Error
	}
	if result := v.CheckPort(); !result.Valid {
		return result.Error
	}
	if result := v.CheckDataDirectory(); !result.Valid {
		return result.Error
	}
	return nil
}

// IsValid returns true if all required configuration is valid.
func (v *ConfigValidator) IsValid() bool {
	return v.ValidateRequired() == nil
}

// GetFirstError returns the first validation error, or nil if all required checks pass.
func (v *ConfigValidator) GetFirstError() error {
	return v.ValidateRequired()
}

// CountValid returns the number of valid configuration items.
func (v *ConfigValidator) CountValid() int {
	results := v.ValidateAll()
	count := 0
	for _, r := range results {
		if r.Valid {
			count++
		}
	}
	return count
}

// CountInvalid returns the number of invalid configuration items.
func (v *ConfigValidator) CountInvalid() int {
	results := v.ValidateAll()
	return len(results) - v.CountValid()
}
