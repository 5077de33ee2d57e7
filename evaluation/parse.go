package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONFound is returned when no JSON object is present in the text.
var ErrNoJSONFound = errors.New("no JSON object found in text")

// ExtractJSONFromText extracts the first JSON object from a text string.
// Chat backends wrap structured replies in prose or markdown code fences;
// this finds the outermost '{'...'}' span and returns it.
//
// This is a pure function (atom) with no external dependencies.
func ExtractJSONFromText(text string) (string, error) {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")

	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return "", ErrNoJSONFound
	}

	return text[startIdx : endIdx+1], nil
}

// ParseQualityReport decodes a backend reply into a QualityReport. Scores
// are clamped into range and an unknown recommendation becomes iterate;
// a reply with no scores at all is rejected so the caller falls back.
func ParseQualityReport(text string) (*QualityReport, error) {
	jsonStr, err := ExtractJSONFromText(text)
	if err != nil {
		return nil, err
	}

	var report QualityReport
	if err := json.Unmarshal([]byte(jsonStr), &report); err != nil {
		return nil, fmt.Errorf("decoding quality report: %w", err)
	}
	if report.OverallScore == 0 && report.CategoryScores == (CategoryScores{}) {
		return nil, errors.New("quality report carries no scores")
	}

	report.Normalize()
	return &report, nil
}

// enhancementReply is the shape the backend returns when asked to extend a
// physical report with further optimization ideas.
type enhancementReply struct {
	AdditionalSuggestions []OptimizationSuggestion `json:"additional_suggestions"`
}

// ParseEnhancementSuggestions decodes additional optimization suggestions
// from a backend reply, dropping entries with unknown type or impact.
func ParseEnhancementSuggestions(text string) ([]OptimizationSuggestion, error) {
	jsonStr, err := ExtractJSONFromText(text)
	if err != nil {
		return nil, err
	}

	var reply enhancementReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return nil, fmt.Errorf("decoding enhancement suggestions: %w", err)
	}

	valid := make([]OptimizationSuggestion, 0, len(reply.AdditionalSuggestions))
	for _, s := range reply.AdditionalSuggestions {
		if !isValidSuggestionType(s.Type) || !isValidImpact(s.Impact) || s.Suggestion == "" {
			continue
		}
		valid = append(valid, s)
	}
	return valid, nil
}

func isValidSuggestionType(t string) bool {
	switch t {
	case SuggestionTypeMaterial, SuggestionTypeStructure, SuggestionTypeCost, SuggestionTypeManufacturing:
		return true
	}
	return false
}

func isValidImpact(impact string) bool {
	switch impact {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}
