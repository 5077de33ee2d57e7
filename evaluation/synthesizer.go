package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"makerkit_backend/core"
	"makerkit_backend/llm"
	"makerkit_backend/logging"
)

// Synthesizer is the organism producing evaluation reports. It prefers the
// text backend and degrades to synthetic reports on any failure; callers
// never see an error from it.
type Synthesizer struct {
	client    *llm.Client
	rng       *rand.Rand
	maxTokens int
	logger    *logging.Logger
}

// NewSynthesizer creates a Synthesizer backed by the given text client.
func NewSynthesizer(cfg *core.Config, client *llm.Client, logger *logging.Logger) *Synthesizer {
	return &Synthesizer{
		client:    client,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		maxTokens: int(cfg.EvaluationTokens),
		logger:    logger.Named("evaluation"),
	}
}

// WithRand replaces the jitter source. Intended for tests.
func (s *Synthesizer) WithRand(rng *rand.Rand) *Synthesizer {
	s.rng = rng
	return s
}

// EvaluateDesign co-produces both reports for one design selection.
func (s *Synthesizer) EvaluateDesign(ctx context.Context, req Request) *Report {
	return &Report{
		Quality:  s.EvaluateQuality(ctx, req),
		Physical: s.EvaluatePhysical(ctx, req),
	}
}

// EvaluateQuality produces the perceived-quality report. The backend reply
// is normalized into range; a missing backend or unparseable reply yields
// the synthetic review.
func (s *Synthesizer) EvaluateQuality(ctx context.Context, req Request) *QualityReport {
	if !s.client.Configured() {
		s.logger.Debug("text backend not configured, using synthetic quality report")
		return SyntheticQualityReport()
	}

	reply, err := s.client.ChatCompletion(ctx, "", qualityPrompt(req), s.maxTokens, 0.3)
	if err != nil {
		s.logger.Warn("quality evaluation backend failed, using synthetic report", zap.Error(err))
		return SyntheticQualityReport()
	}

	report, err := ParseQualityReport(reply)
	if err != nil {
		s.logger.Warn("quality evaluation reply unparseable, using synthetic report", zap.Error(err))
		return SyntheticQualityReport()
	}

	s.logger.Info("quality evaluation served",
		zap.Float64("overall_score", report.OverallScore),
		zap.String("recommendation", string(report.Recommendation)))
	return report
}

// EvaluatePhysical produces the manufacturability report. The synthetic
// baseline is always computed; when the backend is configured it is asked
// for additional optimization suggestions, which are appended on success
// and silently skipped on failure.
func (s *Synthesizer) EvaluatePhysical(ctx context.Context, req Request) *PhysicalReport {
	report := SyntheticPhysicalReport(req.ProjectType, s.rng)

	if !s.client.Configured() {
		return report
	}

	reply, err := s.client.ChatCompletion(ctx, "", physicalPrompt(req, report), s.maxTokens, 0.3)
	if err != nil {
		s.logger.Warn("physical evaluation enhancement failed, keeping baseline", zap.Error(err))
		return report
	}

	extra, err := ParseEnhancementSuggestions(reply)
	if err != nil {
		s.logger.Warn("physical evaluation reply unparseable, keeping baseline", zap.Error(err))
		return report
	}

	report.Suggestions = append(report.Suggestions, extra...)
	s.logger.Info("physical evaluation enhanced",
		zap.Int("additional_suggestions", len(extra)))
	return report
}

// qualityPrompt builds the structured-output reviewer instruction.
func qualityPrompt(req Request) string {
	projectType := req.ProjectType
	if projectType == "" {
		projectType = "industrial product"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a senior industrial design reviewer with 20 years of experience.

DESIGN UNDER REVIEW:
- Project type: %s
- Methodology used: %s
- Original brief: %q
- Design reference: %s

INSTRUCTIONS:
1. Score the design on 5 criteria (0-10):
   - aesthetic: beauty, proportions, balance
   - functional: fit to need, practicality
   - innovative: originality, added value
   - manufacturable: ease of production
   - ergonomic: comfort, ease of use
2. Identify 3-4 strengths
3. Identify 3-4 weaknesses
4. Suggest improvements (quick fixes, redesigns, material suggestions)
5. Give a final recommendation: validate, iterate, or reject

`, projectType, req.Methodology, req.Prompt, req.DesignRef)

	b.WriteString(`STRICT RESPONSE FORMAT (JSON only):
{
  "overall_score": number between 0 and 10,
  "category_scores": {"aesthetic": number, "functional": number, "innovative": number, "manufacturable": number, "ergonomic": number},
  "strengths": ["point 1", "point 2", "point 3"],
  "weaknesses": ["point 1", "point 2", "point 3"],
  "suggestions": {"quick_fixes": ["..."], "redesign_ideas": ["..."], "material_suggestions": ["..."]},
  "expert_opinion": "2-3 sentence analysis",
  "recommendation": "validate|iterate|reject"
}

IMPORTANT: Respond with JSON only, no extra text.`)
	return b.String()
}

// physicalPrompt asks the backend to extend a baseline report with further
// optimization ideas.
func physicalPrompt(req Request, baseline *PhysicalReport) string {
	suggestionSchema, _ := json.Marshal(enhancementReply{AdditionalSuggestions: []OptimizationSuggestion{{
		Type:       "material|structure|cost|manufacturing",
		Suggestion: "description",
		Impact:     "high|medium|low",
	}}})

	return fmt.Sprintf(`As an expert in FEA and DFM simulation, analyze these results and propose optimizations:

Project: %s
Methodology: %s

Current results:
- Manufacturability score: %.0f/100
- Estimated cost: %.0f
- Recommended material: %s
- Safety factor: %.2f

Propose 2-3 additional optimizations specific to this project.
Respond in JSON with this shape: %s`,
		req.ProjectType, req.Methodology,
		baseline.ManufacturingAnalysis.ManufacturabilityScore,
		baseline.ManufacturingAnalysis.EstimatedCost,
		baseline.ManufacturingAnalysis.RecommendedMaterial,
		baseline.StructuralAnalysis.SafetyFactor,
		suggestionSchema)
}
