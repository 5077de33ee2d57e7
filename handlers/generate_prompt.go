package handlers

import (
	"net/http"

	"makerkit_backend/llm"
)

// GeneratePromptRequest is the JSON body for POST /api/generate-prompt.
type GeneratePromptRequest struct {
	ProjectName string            `json:"project_name"`
	Domain      string            `json:"domain,omitempty"`
	Description string            `json:"description,omitempty"`
	Methodology string            `json:"methodology,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

// GeneratePromptResponse carries the authored prompt and whether the text
// backend produced it (false means the local template fallback fired).
type GeneratePromptResponse struct {
	Prompt   string `json:"prompt"`
	AIBacked bool   `json:"ai_backed"`
}

// HandleGeneratePrompt handles POST /api/generate-prompt.
func (api *API) HandleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req GeneratePromptRequest
	if !api.decodeBody(w, r, &req) {
		return
	}
	if req.ProjectName == "" {
		api.writeError(w, http.StatusBadRequest, "project_name is required")
		return
	}

	prompt, aiBacked := api.author.GeneratePrompt(r.Context(), llm.PromptRequest{
		ProjectName: req.ProjectName,
		Domain:      req.Domain,
		Description: req.Description,
		Methodology: req.Methodology,
		Params:      req.Params,
	}, int(api.promptTokens))

	api.writeJSON(w, http.StatusOK, GeneratePromptResponse{
		Prompt:   prompt,
		AIBacked: aiBacked,
	})
}
