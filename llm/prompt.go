package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Design methodologies supported by the prompt author.
const (
	MethodologyTRIZ           = "TRIZ"
	MethodologyDesignThinking = "DESIGN_THINKING"
	MethodologyDesignForX     = "DESIGN_FOR_X"
	MethodologyValueEng       = "VALUE_ENGINEERING"
)

// PromptRequest carries the project facts the prompt author works from.
type PromptRequest struct {
	ProjectName string
	Domain      string
	Description string
	Methodology string
	// Params are methodology-specific knobs, e.g. the TRIZ contradiction
	// or the Design-for-X primary criterion.
	Params map[string]string
}

// GeneratePrompt authors an image-generation prompt for a project, using the
// text backend when configured and a methodology template otherwise. It never
// fails: any backend problem degrades to the local template.
//
// Returns the prompt and whether the text backend produced it.
func (c *Client) GeneratePrompt(ctx context.Context, req PromptRequest, maxTokens int) (string, bool) {
	if !c.configured {
		c.logger.Debug("text backend not configured, using template prompt")
		return fallbackPrompt(req), false
	}

	params, _ := json.Marshal(req.Params)
	user := fmt.Sprintf(`Write a detailed image-generation prompt for: %q
Domain: %s
Description: %s
Methodology: %s
Parameters: %s
The prompt must be optimized for Stable Diffusion. Maximum 250 words.`,
		req.ProjectName, req.Domain, req.Description, req.Methodology, params)

	reply, err := c.ChatCompletion(ctx,
		"Expert in industrial design and prompt engineering", user, maxTokens, 0.7)
	if err != nil {
		c.logger.Warn("prompt generation failed, using template prompt", zap.Error(err))
		return fallbackPrompt(req), false
	}
	return strings.TrimSpace(reply), true
}

// methodologyTemplates are the local prompt fragments per methodology.
// Unknown methodologies fall back to the TRIZ fragment.
var methodologyTemplates = map[string]func(params map[string]string) string{
	MethodologyTRIZ: func(p map[string]string) string {
		return fmt.Sprintf("Resolving technical contradiction: %s. Innovative, technical, functional design.",
			paramOr(p, "contradiction", "performance vs cost"))
	},
	MethodologyDesignThinking: func(p map[string]string) string {
		return fmt.Sprintf("User-centered design. Empathy phase: %s. Ergonomic, intuitive, accessible.",
			paramOr(p, "empathy_phase", "needs analysis"))
	},
	MethodologyDesignForX: func(p map[string]string) string {
		return fmt.Sprintf("Optimized for %s. Constraints: %s. Industrial design.",
			paramOr(p, "primary_criterion", "manufacturing"),
			paramOr(p, "manufacturing_constraints", "standard"))
	},
	MethodologyValueEng: func(p map[string]string) string {
		return fmt.Sprintf("Optimal value ratio. Functions: %s. Budget: %s.",
			paramOr(p, "primary_functions", "essential"),
			paramOr(p, "max_budget", "controlled"))
	},
}

// fallbackPrompt assembles a prompt from the methodology template tables.
func fallbackPrompt(req PromptRequest) string {
	template, ok := methodologyTemplates[req.Methodology]
	if !ok {
		template = methodologyTemplates[MethodologyTRIZ]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Professional design of %s for %s. ", req.ProjectName, req.Domain)
	b.WriteString(template(req.Params))
	fmt.Fprintf(&b, " Description: %s.", req.Description)
	b.WriteString(" Professional 3D render, realistic materials, studio lighting, neutral background.")
	return b.String()
}

func paramOr(params map[string]string, key, fallback string) string {
	if v, ok := params[key]; ok && v != "" {
		return v
	}
	return fallback
}
