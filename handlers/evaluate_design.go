package handlers

import (
	"encoding/json"
	"net/http"

	"makerkit_backend/db"
	"makerkit_backend/evaluation"

	"go.uber.org/zap"
)

// EvaluateDesignRequest is the JSON body for POST /api/evaluate-design.
type EvaluateDesignRequest struct {
	// ProjectID ties the reports to a stored project state; optional
	ProjectID string `json:"project_id,omitempty"`

	// DesignRef is the image reference (URL or data URL) being evaluated
	DesignRef string `json:"design_ref,omitempty"`

	// Prompt is the originating generation prompt
	Prompt string `json:"prompt"`

	// Methodology is the design methodology, e.g. TRIZ
	Methodology string `json:"methodology,omitempty"`

	// ProjectType steers the manufacturability profile, e.g. "furniture"
	ProjectType string `json:"project_type,omitempty"`
}

// HandleEvaluateDesign handles POST /api/evaluate-design.
//
// Evaluation never fails: a missing or misbehaving text backend degrades
// to synthetic reports, so the only error statuses here are request-shape
// problems.
func (api *API) HandleEvaluateDesign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req EvaluateDesignRequest
	if !api.decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" && req.DesignRef == "" {
		api.writeError(w, http.StatusBadRequest, "prompt or design_ref is required")
		return
	}

	report := api.evaluator.EvaluateDesign(r.Context(), evaluation.Request{
		DesignRef:   req.DesignRef,
		Prompt:      req.Prompt,
		Methodology: req.Methodology,
		ProjectType: req.ProjectType,
	})

	api.persistEvaluation(r, req.ProjectID, report)

	api.writeJSON(w, http.StatusOK, report)
}

// persistEvaluation stores the evaluation reports on the project state,
// carrying the existing generation result forward. Failures are logged and
// swallowed; the client already has its reports.
func (api *API) persistEvaluation(r *http.Request, projectID string, report *evaluation.Report) {
	if api.store == nil || projectID == "" {
		return
	}

	ctx := r.Context()
	state := db.ProjectState{ProjectID: projectID}
	if existing, err := api.store.GetProjectState(ctx, projectID); err == nil && existing != nil {
		state.GenerationResult = existing.GenerationResult
	}

	if encoded, err := json.Marshal(report.Quality); err == nil {
		state.QualityReport = string(encoded)
	}
	if encoded, err := json.Marshal(report.Physical); err == nil {
		state.PhysicalReport = string(encoded)
	}

	if err := api.store.UpsertProjectState(ctx, state); err != nil {
		api.logger.Warn("failed to upsert evaluation reports",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}
}
