package evaluation

import (
	"fmt"
	"math/rand"
	"strings"
)

// projectTypeProfile carries the synthetic report baselines for one coarse
// project category.
type projectTypeProfile struct {
	manufacturability float64
	cost              float64
	material          string
	productionTime    float64
	stressPoints      int
}

// projectTypeProfiles maps coarse category keywords to plausible baselines.
// Lookup is by substring so "office furniture" matches "furniture".
var projectTypeProfiles = map[string]projectTypeProfile{
	"furniture":   {manufacturability: 85, cost: 150, material: "Solid wood or plywood", productionTime: 8, stressPoints: 2},
	"electronic":  {manufacturability: 75, cost: 250, material: "ABS plastic with metal finish", productionTime: 12, stressPoints: 4},
	"tooling":     {manufacturability: 90, cost: 80, material: "Hardened steel", productionTime: 6, stressPoints: 3},
	"medical":     {manufacturability: 70, cost: 350, material: "Medical-grade polycarbonate", productionTime: 15, stressPoints: 5},
	"automotive":  {manufacturability: 65, cost: 1200, material: "Aluminium alloy", productionTime: 20, stressPoints: 8},
}

// defaultProfile is used when no category keyword matches.
var defaultProfile = projectTypeProfile{
	manufacturability: 80,
	cost:              200,
	material:          "Standard material",
	productionTime:    10,
	stressPoints:      3,
}

// profileFor resolves a project type string to its synthetic baseline.
func profileFor(projectType string) projectTypeProfile {
	normalized := strings.ToLower(projectType)
	for keyword, profile := range projectTypeProfiles {
		if strings.Contains(normalized, keyword) {
			return profile
		}
	}
	return defaultProfile
}

// baseStressPoints is the fixed pool of simulated stress readings; a profile
// takes a prefix of it sized to its stressPoints count.
var baseStressPoints = []StressPoint{
	{Location: "Primary fastening point", Value: 45, Unit: "MPa"},
	{Location: "Maximum load zone", Value: 62, Unit: "MPa"},
	{Location: "Structural joint", Value: 38, Unit: "MPa"},
}

// SyntheticPhysicalReport builds the rule-based manufacturability report
// for a project type. The safety factor and deformation carry small random
// jitter from rng to vary per run; everything else is deterministic.
func SyntheticPhysicalReport(projectType string, rng *rand.Rand) *PhysicalReport {
	profile := profileFor(projectType)

	stressCount := profile.stressPoints
	if stressCount > len(baseStressPoints) {
		stressCount = len(baseStressPoints)
	}
	stressPoints := make([]StressPoint, stressCount)
	copy(stressPoints, baseStressPoints[:stressCount])

	return &PhysicalReport{
		StructuralAnalysis: StructuralAnalysis{
			StressPoints: stressPoints,
			SafetyFactor: 2.5 + rng.Float64()*1.5,
			Deformation:  0.5 + rng.Float64()*2,
			CriticalPoints: []string{
				"Zone of maximum stress",
				"Potential fatigue point",
			},
		},
		ManufacturingAnalysis: ManufacturingAnalysis{
			ManufacturabilityScore: profile.manufacturability,
			EstimatedCost:          profile.cost,
			RecommendedMaterial:    profile.material,
			ProductionTime:         profile.productionTime,
			ComplexityScore:        100 - profile.manufacturability,
		},
		Suggestions: []OptimizationSuggestion{
			{
				Type:            SuggestionTypeMaterial,
				Suggestion:      fmt.Sprintf("Consider %s to balance cost and performance", strings.ToLower(profile.material)),
				Impact:          ImpactMedium,
				EstimatedSaving: profile.cost * 0.15,
			},
			{
				Type:            SuggestionTypeStructure,
				Suggestion:      "Add reinforcement ribs in the stress zones",
				Impact:          ImpactHigh,
				EstimatedSaving: profile.cost * 0.10,
			},
			{
				Type:            SuggestionTypeManufacturing,
				Suggestion:      "Simplify shapes to reduce machining time",
				Impact:          ImpactMedium,
				EstimatedSaving: profile.productionTime * 0.2,
			},
		},
	}
}

// SyntheticQualityReport is the fixed perceived-quality review used when
// no text backend is available or its reply cannot be parsed.
func SyntheticQualityReport() *QualityReport {
	return &QualityReport{
		OverallScore: 7.5,
		CategoryScores: CategoryScores{
			Aesthetic:      8,
			Functional:     7,
			Innovative:     6,
			Manufacturable: 8,
			Ergonomic:      7,
		},
		Strengths: []string{
			"Balanced, aesthetically coherent design",
			"Good fit to the functional need",
			"Materials appropriate for production",
		},
		Weaknesses: []string{
			"Assembly may be complex",
			"Ergonomics could be refined",
			"Production cost slightly elevated",
		},
		Suggestions: SuggestionSet{
			QuickFixes:          []string{"Simplify the fasteners", "Round the edges for ergonomics"},
			RedesignIdeas:       []string{"Rethink the assembly system", "Optimize material usage"},
			MaterialSuggestions: []string{"Consider a lighter composite", "Use recycled materials"},
		},
		ExpertOpinion:  "Solid design with room to optimize manufacturing and ergonomics. Recommendation: iterate to refine.",
		Recommendation: RecommendationIterate,
	}
}
