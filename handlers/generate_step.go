package handlers

import (
	"net/http"
)

// GenerateSTEPRequest is the JSON body for POST /api/generate-step.
type GenerateSTEPRequest struct {
	// Prompt describes the design the STEP file should model
	Prompt string `json:"prompt"`

	// DesignIndex selects which candidate the export names
	DesignIndex int `json:"design_index,omitempty"`
}

// GenerateSTEPResponse carries the exported STEP document as an inline
// data URL (data:text/plain;base64,...).
type GenerateSTEPResponse struct {
	STEPFile string `json:"step_file"`
}

// HandleGenerateSTEP handles POST /api/generate-step. STEP export never
// fails: when the text backend is absent or returns something that is not
// ISO-10303-21, a deterministic local skeleton is served instead.
func (api *API) HandleGenerateSTEP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req GenerateSTEPRequest
	if !api.decodeBody(w, r, &req) {
		return
	}
	if req.Prompt == "" {
		api.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	stepFile := api.author.GenerateSTEPFile(r.Context(), req.Prompt, req.DesignIndex, int(api.promptTokens))

	api.writeJSON(w, http.StatusOK, GenerateSTEPResponse{STEPFile: stepFile})
}
