package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidator_CheckEnvFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func() string // returns path to env file
		wantValid bool
	}{
		{
			name: "env file exists",
			setupFunc: func() string {
				dir := t.TempDir()
				path := filepath.Join(dir, ".env")
				if err := os.WriteFile(path, []byte("TEST=value"), 0644); err != nil {
					t.Fatalf("failed to create test file: %v", err)
				}
				return path
			},
			wantValid: true,
		},
		{
			name: "env file missing",
			setupFunc: func() string {
				return filepath.Join(t.TempDir(), "nonexistent.env")
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupFunc()
			v := NewConfigValidator().WithEnvPath(path)
			result := v.CheckEnvFile()

			if result.Valid != tt.wantValid {
				t.Errorf("CheckEnvFile() Valid = %v, want %v", result.Valid, tt.wantValid)
			}

			if !tt.wantValid && result.Error == nil {
				t.Error("CheckEnvFile() expected error for invalid case")
			}
		})
	}
}

func TestConfigValidator_CheckImageBackendToken(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		legacyVar string
		wantValid bool
	}{
		{
			name:      "well-formed token",
			token:     "hf_abc123def456",
			wantValid: true,
		},
		{
			name:      "missing token",
			token:     "",
			wantValid: false,
		},
		{
			name:      "malformed token - wrong prefix",
			token:     "sk-abc123",
			wantValid: false,
		},
		{
			name:      "legacy variable accepted",
			legacyVar: "hf_legacy123",
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HF_API_TOKEN", tt.token)
			t.Setenv("HUGGINGFACE_API_TOKEN", tt.legacyVar)

			result := NewConfigValidator().CheckImageBackendToken()

			if result.Valid != tt.wantValid {
				t.Errorf("CheckImageBackendToken() Valid = %v, want %v (message: %s)", result.Valid, tt.wantValid, result.Message)
			}
			if !tt.wantValid && result.Error == nil {
				t.Error("CheckImageBackendToken() expected error for invalid case")
			}
		})
	}
}

func TestConfigValidator_CheckTextBackendKey(t *testing.T) {
	t.Run("key configured", func(t *testing.T) {
		t.Setenv("MISTRAL_API_KEY", "some-key")
		if result := NewConfigValidator().CheckTextBackendKey(); !result.Valid {
			t.Errorf("CheckTextBackendKey() Valid = false, want true")
		}
	})

	t.Run("key missing", func(t *testing.T) {
		t.Setenv("MISTRAL_API_KEY", "")
		result := NewConfigValidator().CheckTextBackendKey()
		if result.Valid {
			t.Error("CheckTextBackendKey() Valid = true, want false")
		}
		if result.Error == nil {
			t.Error("CheckTextBackendKey() expected error for missing key")
		}
	})
}

func TestConfigValidator_CheckBackendURLs(t *testing.T) {
	tests := []struct {
		name      string
		routerURL string
		wantValid bool
	}{
		{
			name:      "defaults are valid",
			routerURL: "",
			wantValid: true,
		},
		{
			name:      "valid override",
			routerURL: "https://router.example.com/inference",
			wantValid: true,
		},
		{
			name:      "invalid override - no scheme",
			routerURL: "router.example.com",
			wantValid: false,
		},
		{
			name:      "invalid override - bad scheme",
			routerURL: "ftp://router.example.com",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HF_ROUTER_URL", tt.routerURL)
			t.Setenv("HF_ACCOUNT_URL", "")
			t.Setenv("MISTRAL_BASE_URL", "")

			result := NewConfigValidator().CheckBackendURLs()

			if result.Valid != tt.wantValid {
				t.Errorf("CheckBackendURLs() Valid = %v, want %v", result.Valid, tt.wantValid)
			}
		})
	}
}

func TestConfigValidator_CheckPort(t *testing.T) {
	tests := []struct {
		name      string
		port      string
		wantValid bool
	}{
		{"unset defaults", "", true},
		{"valid port", "8080", true},
		{"port too low", "0", false},
		{"port too high", "99999", false},
		{"not a number", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)

			result := NewConfigValidator().CheckPort()

			if result.Valid != tt.wantValid {
				t.Errorf("CheckPort() Valid = %v, want %v", result.Valid, tt.wantValid)
			}
		})
	}
}

func TestConfigValidator_CheckDataDirectory(t *testing.T) {
	t.Run("creatable directory", func(t *testing.T) {
		t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "data", "makerkit.db"))

		result := NewConfigValidator().CheckDataDirectory()

		if !result.Valid {
			t.Errorf("CheckDataDirectory() Valid = false, want true (message: %s, error: %v)", result.Message, result.Error)
		}
	})
}

func TestConfigValidator_ValidateRequired(t *testing.T) {
	t.Run("passes without any credentials", func(t *testing.T) {
		// Zero-config deployment: no tokens, no .env, everything defaulted
		t.Setenv("HF_API_TOKEN", "")
		t.Setenv("MISTRAL_API_KEY", "")
		t.Setenv("HF_ROUTER_URL", "")
		t.Setenv("HF_ACCOUNT_URL", "")
		t.Setenv("MISTRAL_BASE_URL", "")
		t.Setenv("PORT", "")
		t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "makerkit.db"))

		if err := NewConfigValidator().ValidateRequired(); err != nil {
			t.Errorf("ValidateRequired() error = %v, want nil for zero-config deployment", err)
		}
	})

	t.Run("fails on invalid port", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "makerkit.db"))

		if err := NewConfigValidator().ValidateRequired(); err == nil {
			t.Error("ValidateRequired() error = nil, want port error")
		}
	})

	t.Run("fails on invalid backend URL", func(t *testing.T) {
		t.Setenv("HF_ROUTER_URL", "not a url")
		t.Setenv("PORT", "")

		if err := NewConfigValidator().ValidateRequired(); err == nil {
			t.Error("ValidateRequired() error = nil, want URL error")
		}
	})
}

func TestConfigValidator_CountValidAndInvalid(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "hf_valid")
	t.Setenv("MISTRAL_API_KEY", "key")
	t.Setenv("HF_ROUTER_URL", "")
	t.Setenv("HF_ACCOUNT_URL", "")
	t.Setenv("MISTRAL_BASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "makerkit.db"))

	// Only the .env check can fail here; run from a directory without one
	dir := t.TempDir()
	v := NewConfigValidator().WithEnvPath(filepath.Join(dir, ".env"))

	valid := v.CountValid()
	invalid := v.CountInvalid()

	if valid+invalid != 6 {
		t.Errorf("CountValid()+CountInvalid() = %d, want 6 total checks", valid+invalid)
	}
	if invalid != 1 {
		t.Errorf("CountInvalid() = %d, want 1 (missing .env only)", invalid)
	}
}
