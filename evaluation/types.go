// Package evaluation synthesizes design evaluation reports: a perceived-
// quality report scored by an expert reviewer persona, and a physical
// manufacturability report in the style of FEA/DFM tooling. Both are
// AI-backed when a text backend is configured and fall back to rule-based
// synthetic reports otherwise. Neither path ever returns an error.
package evaluation

// Recommendation is the reviewer's final verdict on a design.
type Recommendation string

const (
	RecommendationValidate Recommendation = "validate"
	RecommendationIterate  Recommendation = "iterate"
	RecommendationReject   Recommendation = "reject"
)

// IsValid reports whether the recommendation is one of the known verdicts.
func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationValidate, RecommendationIterate, RecommendationReject:
		return true
	}
	return false
}

// CategoryScores are the five review criteria, each scored 0-10.
type CategoryScores struct {
	Aesthetic      float64 `json:"aesthetic"`
	Functional     float64 `json:"functional"`
	Innovative     float64 `json:"innovative"`
	Manufacturable float64 `json:"manufacturable"`
	Ergonomic      float64 `json:"ergonomic"`
}

// SuggestionSet groups the reviewer's improvement ideas by effort level.
type SuggestionSet struct {
	QuickFixes          []string `json:"quick_fixes"`
	RedesignIdeas       []string `json:"redesign_ideas"`
	MaterialSuggestions []string `json:"material_suggestions"`
}

// QualityReport is the perceived-quality review of one design. Overall and
// category scores are on a 0-10 scale.
type QualityReport struct {
	OverallScore   float64        `json:"overall_score"`
	CategoryScores CategoryScores `json:"category_scores"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	Suggestions    SuggestionSet  `json:"suggestions"`
	ExpertOpinion  string         `json:"expert_opinion"`
	Recommendation Recommendation `json:"recommendation"`
}

// StressPoint is one location/value pair from the structural analysis.
type StressPoint struct {
	Location string  `json:"location"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// StructuralAnalysis summarizes the simulated load behavior of a design.
type StructuralAnalysis struct {
	StressPoints   []StressPoint `json:"stress_points"`
	SafetyFactor   float64       `json:"safety_factor"`
	Deformation    float64       `json:"deformation"`
	CriticalPoints []string      `json:"critical_points"`
}

// ManufacturingAnalysis summarizes production feasibility. The score is on
// a 0-100 scale; cost and production time are indicative estimates.
type ManufacturingAnalysis struct {
	ManufacturabilityScore float64 `json:"manufacturability_score"`
	EstimatedCost          float64 `json:"estimated_cost"`
	RecommendedMaterial    string  `json:"recommended_material"`
	ProductionTime         float64 `json:"production_time"`
	ComplexityScore        float64 `json:"complexity_score"`
}

// Optimization suggestion categories.
const (
	SuggestionTypeMaterial      = "material"
	SuggestionTypeStructure     = "structure"
	SuggestionTypeCost          = "cost"
	SuggestionTypeManufacturing = "manufacturing"
)

// Impact levels for optimization suggestions.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// OptimizationSuggestion is one actionable improvement with its expected
// impact. EstimatedSaving is optional and omitted when zero.
type OptimizationSuggestion struct {
	Type            string  `json:"type"`
	Suggestion      string  `json:"suggestion"`
	Impact          string  `json:"impact"`
	EstimatedSaving float64 `json:"estimated_saving,omitempty"`
}

// PhysicalReport is the manufacturability/physical analysis of one design.
type PhysicalReport struct {
	StructuralAnalysis    StructuralAnalysis       `json:"fea_analysis"`
	ManufacturingAnalysis ManufacturingAnalysis    `json:"dfm_analysis"`
	Suggestions           []OptimizationSuggestion `json:"optimization_suggestions"`
}

// Request identifies the design under evaluation and its project context.
type Request struct {
	// DesignRef is the image reference (URL or data URL) of the design
	DesignRef string
	// Prompt is the originating generation prompt
	Prompt string
	// Methodology is the design methodology used, e.g. TRIZ
	Methodology string
	// ProjectType is a coarse category keyword, e.g. "furniture"
	ProjectType string
}

// Report bundles the two co-produced evaluations of one design selection.
type Report struct {
	Quality  *QualityReport  `json:"quality"`
	Physical *PhysicalReport `json:"physical"`
}

// clampScore bounds a score to [0, max].
func clampScore(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Normalize clamps all scores into their documented ranges and coerces an
// unknown recommendation to iterate. Backend replies pass through this
// before being trusted.
func (q *QualityReport) Normalize() {
	q.OverallScore = clampScore(q.OverallScore, 10)
	q.CategoryScores.Aesthetic = clampScore(q.CategoryScores.Aesthetic, 10)
	q.CategoryScores.Functional = clampScore(q.CategoryScores.Functional, 10)
	q.CategoryScores.Innovative = clampScore(q.CategoryScores.Innovative, 10)
	q.CategoryScores.Manufacturable = clampScore(q.CategoryScores.Manufacturable, 10)
	q.CategoryScores.Ergonomic = clampScore(q.CategoryScores.Ergonomic, 10)
	if !q.Recommendation.IsValid() {
		q.Recommendation = RecommendationIterate
	}
}
