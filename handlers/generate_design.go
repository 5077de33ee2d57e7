package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"makerkit_backend/db"
	"makerkit_backend/imagegen"
	"makerkit_backend/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateDesignRequest is the JSON body for POST /api/generate-design.
type GenerateDesignRequest struct {
	// ProjectID ties the result to a stored project state; optional
	ProjectID string `json:"project_id,omitempty"`

	// Method selects the generation path (default: text-to-image)
	Method string `json:"method,omitempty"`

	// Prompt is the design description; required
	Prompt string `json:"prompt"`

	// SketchData is a base64 data URL for sketch-guided generation
	SketchData string `json:"sketch_data,omitempty"`

	// ReferenceImage is a base64 data URL for image-to-image generation
	ReferenceImage string `json:"reference_image,omitempty"`

	// Count overrides the configured candidate count when positive
	Count int `json:"count,omitempty"`
}

// GenerateDesignResponse is the JSON body for a served generation request.
// It embeds the generation result, so images and provenance appear at the
// top level exactly as the generator produced them.
type GenerateDesignResponse struct {
	*imagegen.GenerationResult
	CorrelationID string `json:"correlation_id"`
	DurationMS    int    `json:"duration_ms"`
}

// HandleGenerateDesign handles POST /api/generate-design.
//
// Only two failure modes produce an error status: an unknown method (400)
// and rejected backend credentials (502, with remediation text). Every
// other backend problem is absorbed by the cascade and surfaces as a 200
// whose provenance metadata says how the images were produced.
func (api *API) HandleGenerateDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req GenerateDesignRequest
	if !api.decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		api.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	correlationID := uuid.New().String()

	method := imagegen.MethodTextToImage
	if req.Method != "" {
		parsed, err := imagegen.ParseMethod(req.Method)
		if err != nil {
			api.writeGenerationError(w, r, api.logger.With(zap.String("correlation_id", correlationID)), correlationID, err)
			return
		}
		method = parsed
	}

	auxiliary := req.SketchData
	if method == imagegen.MethodImageToImage {
		auxiliary = req.ReferenceImage
	}

	log := api.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("method", string(method)),
	)

	start := time.Now()
	result, err := api.generator.GenerateCandidates(r.Context(), imagegen.GenerationRequest{
		Method:    method,
		Prompt:    req.Prompt,
		Auxiliary: auxiliary,
		Count:     req.Count,
	})
	duration := time.Since(start)

	if err != nil {
		api.writeGenerationError(w, r, log, correlationID, err)
		return
	}

	log.Info("generation served",
		zap.String("source", result.Source),
		zap.String("model", result.Model),
		zap.Bool("used_fallback", result.UsedFallback),
		zap.Int("image_count", len(result.Images)),
		zap.Duration("duration", duration),
	)

	api.persistGeneration(r, req.ProjectID, correlationID, string(method), result, duration)

	api.writeJSON(w, http.StatusOK, GenerateDesignResponse{
		GenerationResult: result,
		CorrelationID:    correlationID,
		DurationMS:       int(duration.Milliseconds()),
	})
}

// writeGenerationError maps the two propagating generator errors onto HTTP
// statuses and records them in the error log.
func (api *API) writeGenerationError(w http.ResponseWriter, r *http.Request, log *logging.Logger, correlationID string, err error) {
	var unsupported *imagegen.UnsupportedMethodError
	if errors.As(err, &unsupported) {
		log.Warn("rejected unsupported method", zap.String("requested", unsupported.Method))
		api.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var credentials *imagegen.CredentialsError
	if errors.As(err, &credentials) {
		log.Error("backend rejected credentials",
			zap.Int("status", credentials.StatusCode),
			zap.String("reason", credentials.Reason),
		)
		if api.store != nil {
			if _, dbErr := api.store.InsertErrorLog(r.Context(), db.ErrorLogEntry{
				CorrelationID: correlationID,
				ErrorType:     "credentials_error",
				Message:       credentials.Reason,
			}); dbErr != nil {
				log.Warn("failed to record error log", zap.Error(dbErr))
			}
		}
		api.writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   http.StatusText(http.StatusBadGateway),
			Message: "image backend rejected credentials: " + credentials.Reason,
			Action:  credentials.Action,
		})
		return
	}

	// The generator contract reserves errors for the two cases above;
	// anything else is a programming error worth surfacing loudly.
	log.Error("unexpected generation error", zap.Error(err))
	api.writeError(w, http.StatusInternalServerError, err.Error())
}

// persistGeneration stores the served result: project state upsert (when a
// project is named) and a history append. Persistence failures are logged
// and swallowed; the client already has its images.
func (api *API) persistGeneration(r *http.Request, projectID, correlationID, method string, result *imagegen.GenerationResult, duration time.Duration) {
	if api.store == nil {
		return
	}

	ctx := r.Context()

	if projectID != "" {
		state := db.ProjectState{ProjectID: projectID}
		if existing, err := api.store.GetProjectState(ctx, projectID); err == nil && existing != nil {
			// Carry evaluation reports forward; only the result is replaced
			state.QualityReport = existing.QualityReport
			state.PhysicalReport = existing.PhysicalReport
		}
		if encoded, err := json.Marshal(result); err == nil {
			state.GenerationResult = string(encoded)
		}
		if err := api.store.UpsertProjectState(ctx, state); err != nil {
			api.logger.Warn("failed to upsert project state",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
		}
	}

	if _, err := api.store.InsertGenerationHistory(ctx, db.GenerationRecord{
		CorrelationID:  correlationID,
		ProjectID:      projectID,
		Method:         method,
		Source:         result.Source,
		Model:          result.Model,
		UsedFallback:   result.UsedFallback,
		FallbackReason: result.FallbackReason,
		ModelAttempts:  result.ModelAttempts,
		ImageCount:     len(result.Images),
		DurationMS:     int(duration.Milliseconds()),
	}); err != nil {
		api.logger.Warn("failed to append generation history",
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
	}
}
