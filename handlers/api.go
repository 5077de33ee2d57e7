// Package handlers provides the HTTP API surface for the MakerKit backend.
// Handlers are thin: they decode JSON, invoke the generation/evaluation
// services, persist results, and encode JSON back. All domain decisions
// (cascades, fallbacks, synthetic reports) live in the service packages.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"makerkit_backend/db"
	"makerkit_backend/evaluation"
	"makerkit_backend/imagegen"
	"makerkit_backend/llm"
	"makerkit_backend/logging"
)

// DesignGenerator is the slice of the image generation service the API needs.
// imagegen.Service implements it; tests substitute fakes.
type DesignGenerator interface {
	GenerateCandidates(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error)
}

// DesignEvaluator is the slice of the evaluation synthesizer the API needs.
type DesignEvaluator interface {
	EvaluateDesign(ctx context.Context, req evaluation.Request) *evaluation.Report
}

// TextAuthor is the slice of the text backend client the API needs for
// prompt authoring and STEP export.
type TextAuthor interface {
	GeneratePrompt(ctx context.Context, req llm.PromptRequest, maxTokens int) (string, bool)
	GenerateSTEPFile(ctx context.Context, prompt string, designIndex int, maxTokens int) string
}

// StateStore is the slice of the repository the API needs. A nil store
// disables persistence without disabling the API.
type StateStore interface {
	UpsertProjectState(ctx context.Context, state db.ProjectState) error
	GetProjectState(ctx context.Context, projectID string) (*db.ProjectState, error)
	InsertGenerationHistory(ctx context.Context, record db.GenerationRecord) (int64, error)
	InsertErrorLog(ctx context.Context, entry db.ErrorLogEntry) (int64, error)
}

// Compile-time interface checks against the concrete service types.
var (
	_ DesignGenerator = (*imagegen.Service)(nil)
	_ DesignEvaluator = (*evaluation.Synthesizer)(nil)
	_ TextAuthor      = (*llm.Client)(nil)
	_ StateStore      = (*db.Repository)(nil)
)

// API holds the service dependencies behind the HTTP endpoints.
type API struct {
	generator    DesignGenerator
	evaluator    DesignEvaluator
	author       TextAuthor
	store        StateStore
	promptTokens int64
	logger       *logging.Logger
}

// APIConfig configures an API instance.
type APIConfig struct {
	// PromptTokens bounds prompt/STEP text generation (default: 500)
	PromptTokens int64
}

// NewAPI creates the API organism. The store may be nil, in which case
// results are returned to the client but not persisted.
func NewAPI(generator DesignGenerator, evaluator DesignEvaluator, author TextAuthor, store StateStore, config APIConfig, logger *logging.Logger) *API {
	if config.PromptTokens <= 0 {
		config.PromptTokens = 500
	}
	return &API{
		generator:    generator,
		evaluator:    evaluator,
		author:       author,
		store:        store,
		promptTokens: config.PromptTokens,
		logger:       logger.Named("api"),
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (api *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate-design", api.HandleGenerateDesign)
	mux.HandleFunc("/api/evaluate-design", api.HandleEvaluateDesign)
	mux.HandleFunc("/api/generate-prompt", api.HandleGeneratePrompt)
	mux.HandleFunc("/api/generate-step", api.HandleGenerateSTEP)
	mux.HandleFunc("/api/projects/", api.HandleProjectState)
}

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (api *API) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Best effort - headers already written
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes an error response.
func (api *API) writeError(w http.ResponseWriter, status int, message string) {
	api.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// oversized payloads. Returns false after writing the error response.
func (api *API) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// maxRequestBody bounds inbound payloads; sketches arrive as base64 data
// URLs so the ceiling must accommodate a few MB of encoded image.
const maxRequestBody = 16 << 20
