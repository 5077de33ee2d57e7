package core

import (
	"crypto/tls"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	// API Keys (all optional - the generator falls back to local placeholders
	// and synthetic evaluations when a backend is not configured)
	HFAPIToken    string // Hugging Face inference token (expected to start with "hf_")
	MistralAPIKey string // Mistral API key for prompt/evaluation text generation

	// Backend Endpoints
	HFRouterURL    string // Base URL for the HF inference router
	HFAccountURL   string // Endpoint used to validate the inference token
	MistralBaseURL string // OpenAI-compatible base URL for the text backend
	MistralModel   string // Chat model identifier for text generation

	// Server Configuration
	Port                 int
	AllowSelfSignedCerts bool

	// Generation Configuration
	CandidateCount      int           // Number of design candidates per request
	DiversifyCandidates bool          // Issue parallel backend calls for distinct candidates
	InferenceSteps      int           // Denoising steps forwarded to the image backend
	GuidanceScale       float64       // CFG scale forwarded to the image backend
	TransformStrength   float64       // Strength for image-conditioned generation (0.0-1.0)
	MaxAttemptsPerModel int           // Invocation attempts against one model before moving on
	ModelWarmupWait     time.Duration // Wait before retrying a model that is still loading
	ModelWarmupWaitCap  time.Duration // Upper bound on a single warmup wait
	ModelWarmupBuffer   time.Duration // Slack added on top of a backend-reported wait hint
	InvokeTimeout       time.Duration // HTTP timeout for a single backend invocation
	CascadeDeadline     time.Duration // Total wall-clock budget for one generation request
	ModelCatalogFile    string        // Optional YAML file overriding the built-in model catalog

	// Persistence Configuration
	DBPath         string
	MigrationsPath string

	// Text Generation Limits
	PromptTokens     int64
	EvaluationTokens int64
}

// LoadConfig loads configuration from environment variables with sensible
// defaults for zero-config demo deployment. No credentials are required:
// a missing image backend token routes generation to local placeholders,
// and a missing text backend key routes evaluation to synthetic reports.
func LoadConfig() (*Config, error) {
	hfToken := os.Getenv("HF_API_TOKEN")
	if hfToken == "" {
		hfToken = os.Getenv("HUGGINGFACE_API_TOKEN") // Legacy support
	}

	// 25 steps / 7.5 CFG match the hosted inference defaults for SD-family models
	inferenceSteps := ParseIntEnv("INFERENCE_STEPS", 25)
	guidanceScale := ParseFloat64Env("GUIDANCE_SCALE", 7.5)
	transformStrength := ParseFloat64Env("TRANSFORM_STRENGTH", 0.8)

	// 3 attempts per model with a ~20s warmup wait covers cold-start loading
	// without stalling the cascade when a model is genuinely down
	maxAttempts := ParseIntEnv("MAX_ATTEMPTS_PER_MODEL", 3)
	warmupWait := time.Duration(ParseIntEnv("MODEL_WARMUP_WAIT", 20)) * time.Second
	warmupWaitCap := time.Duration(ParseIntEnv("MODEL_WARMUP_WAIT_CAP", 60)) * time.Second
	warmupBuffer := time.Duration(ParseIntEnv("MODEL_WARMUP_BUFFER", 2)) * time.Second
	// 120s invoke timeout accommodates slow hosted models while preventing hangs
	invokeTimeout := time.Duration(ParseIntEnv("INVOKE_TIMEOUT", 120)) * time.Second
	// 600s cascade deadline allows the full model list plus warmup waits
	cascadeDeadline := time.Duration(ParseIntEnv("CASCADE_DEADLINE", 600)) * time.Second

	return &Config{
		HFAPIToken:    hfToken,
		MistralAPIKey: os.Getenv("MISTRAL_API_KEY"),

		HFRouterURL:    GetEnvOrDefault("HF_ROUTER_URL", "https://router.huggingface.co/hf-inference"),
		HFAccountURL:   GetEnvOrDefault("HF_ACCOUNT_URL", "https://huggingface.co/api/whoami-v2"),
		MistralBaseURL: GetEnvOrDefault("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		MistralModel:   GetEnvOrDefault("MISTRAL_MODEL", "mistral-large-latest"),

		Port:                 ParseIntEnv("PORT", 3000),
		AllowSelfSignedCerts: GetEnvOrDefault("ALLOW_SELF_SIGNED_CERTS", "false") == "true",

		CandidateCount:      ParseIntEnv("CANDIDATE_COUNT", 4),
		DiversifyCandidates: GetEnvOrDefault("DIVERSIFY_CANDIDATES", "false") == "true",
		InferenceSteps:      inferenceSteps,
		GuidanceScale:       guidanceScale,
		TransformStrength:   transformStrength,
		MaxAttemptsPerModel: maxAttempts,
		ModelWarmupWait:     warmupWait,
		ModelWarmupWaitCap:  warmupWaitCap,
		ModelWarmupBuffer:   warmupBuffer,
		InvokeTimeout:       invokeTimeout,
		CascadeDeadline:     cascadeDeadline,
		ModelCatalogFile:    os.Getenv("MODEL_CATALOG_FILE"),

		DBPath:         GetEnvOrDefault("DB_PATH", "./data/makerkit.db"),
		MigrationsPath: GetEnvOrDefault("MIGRATIONS_PATH", "./db/migrations"),

		PromptTokens:     ParseInt64Env("PROMPT_TOKENS", 500),
		EvaluationTokens: ParseInt64Env("EVALUATION_TOKENS", 1500),
	}, nil
}

// GetHTTPClient returns an HTTP client configured with TLS settings based on AllowSelfSignedCerts
// This should be used for all HTTP requests to external APIs to ensure TLS configuration is respected
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with default timeout (30s) configured with TLS settings
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, 30*time.Second)
}

// ImageBackendStatus reports whether the image backend is usable.
// A token that is present but malformed counts as unconfigured rather than
// an error: generation quietly falls back to local placeholders, and the
// reason explains why in provenance output.
func (c *Config) ImageBackendStatus() (bool, string) {
	if c.HFAPIToken == "" {
		return false, "HF_API_TOKEN not configured"
	}
	if !strings.HasPrefix(c.HFAPIToken, "hf_") {
		return false, "HF_API_TOKEN is malformed (expected hf_ prefix)"
	}
	return true, ""
}

// HasImageBackend returns true if a usable image backend token is configured.
func (c *Config) HasImageBackend() bool {
	ok, _ := c.ImageBackendStatus()
	return ok
}

// HasTextBackend returns true if the text backend is configured.
func (c *Config) HasTextBackend() bool {
	return c.MistralAPIKey != ""
}
