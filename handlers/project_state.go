package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProjectStateResponse is the JSON body for GET /api/projects/{id}/state.
// The stored documents are re-emitted verbatim as raw JSON so clients see
// exactly what was persisted.
type ProjectStateResponse struct {
	ProjectID        string          `json:"project_id"`
	GenerationResult json.RawMessage `json:"generation_result,omitempty"`
	QualityReport    json.RawMessage `json:"quality_report,omitempty"`
	PhysicalReport   json.RawMessage `json:"physical_report,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// HandleProjectState handles GET /api/projects/{id}/state.
func (api *API) HandleProjectState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	projectID, ok := parseProjectStatePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if api.store == nil {
		api.writeError(w, http.StatusServiceUnavailable, "persistence is not enabled")
		return
	}

	state, err := api.store.GetProjectState(r.Context(), projectID)
	if err != nil {
		api.logger.Error("failed to read project state",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		api.writeError(w, http.StatusInternalServerError, "failed to read project state")
		return
	}
	if state == nil {
		api.writeError(w, http.StatusNotFound, "no state stored for project "+projectID)
		return
	}

	api.writeJSON(w, http.StatusOK, ProjectStateResponse{
		ProjectID:        state.ProjectID,
		GenerationResult: rawOrNil(state.GenerationResult),
		QualityReport:    rawOrNil(state.QualityReport),
		PhysicalReport:   rawOrNil(state.PhysicalReport),
		UpdatedAt:        state.UpdatedAt,
	})
}

// parseProjectStatePath extracts the project ID from /api/projects/{id}/state.
func parseProjectStatePath(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, "/api/projects/")
	if !found {
		return "", false
	}
	projectID, found := strings.CutSuffix(rest, "/state")
	if !found || projectID == "" || strings.Contains(projectID, "/") {
		return "", false
	}
	return projectID, true
}

// rawOrNil converts a stored JSON document to a RawMessage, omitting empty
// columns from the response entirely.
func rawOrNil(doc string) json.RawMessage {
	if doc == "" {
		return nil
	}
	return json.RawMessage(doc)
}
