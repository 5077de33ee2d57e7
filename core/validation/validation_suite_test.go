package validation

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidationSuite_Creation(t *testing.T) {
	suite := NewValidationSuite()

	if suite == nil {
		t.Fatal("NewValidationSuite() returned nil")
	}
	if suite.configValidator == nil {
		t.Error("configValidator not initialized")
	}
	if suite.backendChecker == nil {
		t.Error("backendChecker not initialized")
	}
	if suite.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", suite.timeout)
	}
}

func TestValidationSuite_BuilderPattern(t *testing.T) {
	var buf bytes.Buffer
	suite := NewValidationSuite().
		WithOutput(&buf).
		WithTimeout(5 * time.Second).
		WithShowProgress(false).
		WithFailFast(true).
		WithSkipNetwork(true).
		WithAllowSelfSignedCerts(true)

	if suite.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", suite.timeout)
	}
	if suite.showProgress {
		t.Error("showProgress = true, want false")
	}
	if !suite.failFast {
		t.Error("failFast = false, want true")
	}
	if !suite.skipNetwork {
		t.Error("skipNetwork = false, want true")
	}
}

func TestStepStatus_String(t *testing.T) {
	tests := []struct {
		status StepStatus
		want   string
	}{
		{StepPending, "pending"},
		{StepRunning, "running"},
		{StepPassed, "passed"},
		{StepFailed, "failed"},
		{StepWarning, "warning"},
		{StepSkipped, "skipped"},
		{StepStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("StepStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestValidationSuite_ZeroConfigPasses(t *testing.T) {
	// No credentials at all: the suite must pass with warnings, because
	// the server runs fully offline on placeholders and synthetic reports.
	t.Setenv("HF_API_TOKEN", "")
	t.Setenv("HUGGINGFACE_API_TOKEN", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("HF_ROUTER_URL", "")
	t.Setenv("HF_ACCOUNT_URL", "")
	t.Setenv("MISTRAL_BASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "makerkit.db"))

	suite := NewValidationSuite().
		WithShowProgress(false).
		WithSkipNetwork(true).
		WithEnvPath(filepath.Join(t.TempDir(), ".env"))

	result := suite.Validate()

	if !result.Success {
		t.Errorf("Validate() Success = false, want true: %s", result.Summary())
	}
	if result.Warnings < 3 {
		t.Errorf("Warnings = %d, want at least 3 (env file, both credentials)", result.Warnings)
	}
	if result.FailedSteps != 0 {
		t.Errorf("FailedSteps = %d, want 0", result.FailedSteps)
	}
}

func TestValidationSuite_FailsOnBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("HF_API_TOKEN", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("HF_ROUTER_URL", "")
	t.Setenv("HF_ACCOUNT_URL", "")
	t.Setenv("MISTRAL_BASE_URL", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "makerkit.db"))

	suite := NewValidationSuite().
		WithShowProgress(false).
		WithSkipNetwork(true).
		WithEnvPath(filepath.Join(t.TempDir(), ".env"))

	result := suite.Validate()

	if result.Success {
		t.Error("Validate() Success = true, want false for invalid port")
	}
	if result.GetFirstError() == nil {
		t.Error("GetFirstError() = nil, want port error")
	}
}

func TestValidationSuite_SkipsNetworkWithoutToken(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "")
	t.Setenv("HUGGINGFACE_API_TOKEN", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("HF_ROUTER_URL", "")
	t.Setenv("HF_ACCOUNT_URL", "")
	t.Setenv("MISTRAL_BASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "makerkit.db"))

	suite := NewValidationSuite().
		WithShowProgress(false).
		WithEnvPath(filepath.Join(t.TempDir(), ".env"))

	result := suite.Validate()

	last := result.Steps[len(result.Steps)-1]
	if last.Name != "Image Backend Access" {
		t.Fatalf("last step = %q, want Image Backend Access", last.Name)
	}
	if last.Status != StepSkipped {
		t.Errorf("backend access status = %v, want skipped without a token", last.Status)
	}
}

func TestValidationSuite_ValidateQuick(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "hf_token")
	t.Setenv("MISTRAL_API_KEY", "key")
	t.Setenv("HF_ROUTER_URL", "")
	t.Setenv("HF_ACCOUNT_URL", "")
	t.Setenv("MISTRAL_BASE_URL", "")
	t.Setenv("PORT", "8080")

	suite := NewValidationSuite().WithShowProgress(false)
	result := suite.ValidateQuick()

	if !result.Success {
		t.Errorf("ValidateQuick() Success = false: %s", result.Summary())
	}
	if result.TotalSteps != 4 {
		t.Errorf("TotalSteps = %d, want 4", result.TotalSteps)
	}
}

func TestValidationSuite_ProgressOutput(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("HF_ROUTER_URL", "")
	t.Setenv("HF_ACCOUNT_URL", "")
	t.Setenv("MISTRAL_BASE_URL", "")
	t.Setenv("PORT", "")

	var buf bytes.Buffer
	suite := NewValidationSuite().WithOutput(&buf).WithShowProgress(true)
	suite.ValidateQuick()

	output := buf.String()
	if !strings.Contains(output, "Image Backend Token") {
		t.Errorf("output missing step name: %s", output)
	}
	if !strings.Contains(output, "Quick Configuration Check") {
		t.Errorf("output missing header: %s", output)
	}
}

func TestSuiteResult_GetErrors(t *testing.T) {
	result := SuiteResult{
		Steps: []ValidationStep{
			{Name: "a", Status: StepPassed},
			{Name: "b", Status: StepFailed, Error: errors.New("b failed")},
			{Name: "c", Status: StepWarning, Error: errors.New("c warned")},
		},
	}

	errs := result.GetErrors()
	if len(errs) != 1 {
		t.Fatalf("GetErrors() returned %d errors, want 1 (warnings excluded)", len(errs))
	}
	if errs[0].Error() != "b failed" {
		t.Errorf("GetErrors()[0] = %v, want the failed step's error", errs[0])
	}
}

func TestSuiteResult_Summary(t *testing.T) {
	result := SuiteResult{
		TotalSteps:  6,
		PassedSteps: 4,
		FailedSteps: 1,
		Warnings:    1,
		Duration:    1500 * time.Millisecond,
		Success:     false,
	}

	summary := result.Summary()
	for _, want := range []string{"Failed", "4/6", "1 failed", "1 warnings"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, want it to contain %q", summary, want)
		}
	}
}

func TestValidationSuite_buildResult(t *testing.T) {
	suite := NewValidationSuite()
	steps := []ValidationStep{
		{Status: StepPassed},
		{Status: StepPassed},
		{Status: StepWarning},
		{Status: StepFailed},
		{Status: StepSkipped},
	}

	result := suite.buildResult(steps, time.Now().Add(-time.Second))

	if result.TotalSteps != 5 {
		t.Errorf("TotalSteps = %d, want 5", result.TotalSteps)
	}
	if result.PassedSteps != 2 {
		t.Errorf("PassedSteps = %d, want 2", result.PassedSteps)
	}
	if result.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", result.Warnings)
	}
	if result.FailedSteps != 1 {
		t.Errorf("FailedSteps = %d, want 1", result.FailedSteps)
	}
	if result.Success {
		t.Error("Success = true, want false with a failed step")
	}
	if result.Duration < time.Second {
		t.Errorf("Duration = %v, want at least 1s", result.Duration)
	}
}
