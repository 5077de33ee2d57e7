package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"makerkit_backend/evaluation"
)

func TestHandleEvaluateDesign_Success(t *testing.T) {
	evaluator := &fakeEvaluator{report: &evaluation.Report{
		Quality:  evaluation.SyntheticQualityReport(),
		Physical: evaluation.SyntheticPhysicalReport("tooling", rand.New(rand.NewSource(1))),
	}}
	api := newTestAPI(t, nil, evaluator, nil, nil)

	rec := postJSON(t, api.HandleEvaluateDesign, "/api/evaluate-design", EvaluateDesignRequest{
		Prompt:      "an ergonomic hand tool",
		Methodology: "TRIZ",
		ProjectType: "tooling",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var report evaluation.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Quality == nil || report.Physical == nil {
		t.Fatal("response is missing a report section")
	}
	if report.Quality.OverallScore < 0 || report.Quality.OverallScore > 10 {
		t.Errorf("OverallScore = %v, want within [0, 10]", report.Quality.OverallScore)
	}

	if len(evaluator.calls) != 1 {
		t.Fatalf("evaluator calls = %d, want 1", len(evaluator.calls))
	}
	if evaluator.calls[0].ProjectType != "tooling" {
		t.Errorf("ProjectType = %v, want tooling", evaluator.calls[0].ProjectType)
	}
}

func TestHandleEvaluateDesign_PersistsReports(t *testing.T) {
	store := newFakeStore()
	store.states["proj-eval"] = stateWithReports("proj-eval")
	api := newTestAPI(t, nil, nil, nil, store)

	rec := postJSON(t, api.HandleEvaluateDesign, "/api/evaluate-design", EvaluateDesignRequest{
		ProjectID: "proj-eval",
		Prompt:    "a modular shelf",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	state := store.states["proj-eval"]
	if !strings.Contains(state.QualityReport, `"overall_score"`) {
		t.Errorf("QualityReport was not stored: %s", state.QualityReport)
	}
	if state.GenerationResult != `{"source":"local-fallback"}` {
		t.Errorf("existing generation result was not carried forward: %s", state.GenerationResult)
	}
}

func TestHandleEvaluateDesign_RequestValidation(t *testing.T) {
	api := newTestAPI(t, nil, nil, nil, nil)

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"wrong http method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "[", http.StatusBadRequest},
		{"no prompt or design ref", http.MethodPost, "{}", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/evaluate-design", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			api.HandleEvaluateDesign(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleEvaluateDesign_DesignRefAloneIsEnough(t *testing.T) {
	api := newTestAPI(t, nil, nil, nil, nil)

	rec := postJSON(t, api.HandleEvaluateDesign, "/api/evaluate-design", EvaluateDesignRequest{
		DesignRef: "https://example.com/design.png",
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
