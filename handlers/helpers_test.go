package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"makerkit_backend/db"
	"makerkit_backend/evaluation"
	"makerkit_backend/imagegen"
	"makerkit_backend/llm"
	"makerkit_backend/logging"
)

// newTestLogger creates a logger writing to a temp file.
func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.NewLogger(true, filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

// fakeGenerator returns a scripted result or error.
type fakeGenerator struct {
	mu     sync.Mutex
	result *imagegen.GenerationResult
	err    error
	calls  []imagegen.GenerationRequest
}

func (g *fakeGenerator) GenerateCandidates(ctx context.Context, req imagegen.GenerationRequest) (*imagegen.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

// fakeEvaluator returns a fixed report.
type fakeEvaluator struct {
	report *evaluation.Report
	calls  []evaluation.Request
}

func (e *fakeEvaluator) EvaluateDesign(ctx context.Context, req evaluation.Request) *evaluation.Report {
	e.calls = append(e.calls, req)
	return e.report
}

// fakeAuthor returns canned prompt/STEP output.
type fakeAuthor struct {
	prompt   string
	aiBacked bool
	stepFile string
}

func (a *fakeAuthor) GeneratePrompt(ctx context.Context, req llm.PromptRequest, maxTokens int) (string, bool) {
	return a.prompt, a.aiBacked
}

func (a *fakeAuthor) GenerateSTEPFile(ctx context.Context, prompt string, designIndex int, maxTokens int) string {
	return a.stepFile
}

// fakeStore is an in-memory StateStore.
type fakeStore struct {
	mu       sync.Mutex
	states   map[string]db.ProjectState
	history  []db.GenerationRecord
	errors   []db.ErrorLogEntry
	stateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[string]db.ProjectState)}
}

func (s *fakeStore) UpsertProjectState(ctx context.Context, state db.ProjectState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return s.stateErr
	}
	if state.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	s.states[state.ProjectID] = state
	return nil
}

func (s *fakeStore) GetProjectState(ctx context.Context, projectID string) (*db.ProjectState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	state, ok := s.states[projectID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *fakeStore) InsertGenerationHistory(ctx context.Context, record db.GenerationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, record)
	return int64(len(s.history)), nil
}

func (s *fakeStore) InsertErrorLog(ctx context.Context, entry db.ErrorLogEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, entry)
	return int64(len(s.errors)), nil
}

// successResult builds a typical backend-served generation result.
func successResult(count int) *imagegen.GenerationResult {
	images := make([]string, count)
	for i := range images {
		images[i] = "data:image/png;base64,aGVsbG8="
	}
	return &imagegen.GenerationResult{
		Images: images,
		Provenance: imagegen.Provenance{
			Source:        imagegen.SourceHuggingFace,
			Model:         "runwayml/stable-diffusion-v1-5",
			ModelAttempts: []string{"runwayml/stable-diffusion-v1-5"},
		},
	}
}

// stateWithReports builds a stored project state that already carries
// evaluation reports.
func stateWithReports(projectID string) db.ProjectState {
	return db.ProjectState{
		ProjectID:        projectID,
		GenerationResult: `{"source":"local-fallback"}`,
		QualityReport:    `{"overall_score":7.5}`,
		PhysicalReport:   `{"dfm_analysis":{"manufacturability_score":80}}`,
	}
}

// newTestAPI wires an API with the given fakes. Nil fakes are replaced
// with benign defaults.
func newTestAPI(t *testing.T, generator *fakeGenerator, evaluator *fakeEvaluator, author *fakeAuthor, store *fakeStore) *API {
	t.Helper()

	if generator == nil {
		generator = &fakeGenerator{result: successResult(4)}
	}
	if evaluator == nil {
		evaluator = &fakeEvaluator{report: &evaluation.Report{
			Quality:  evaluation.SyntheticQualityReport(),
			Physical: &evaluation.PhysicalReport{},
		}}
	}
	if author == nil {
		author = &fakeAuthor{prompt: "a minimalist oak chair", stepFile: "data:text/plain;base64,SVNQ"}
	}

	var stateStore StateStore
	if store != nil {
		stateStore = store
	}
	return NewAPI(generator, evaluator, author, stateStore, APIConfig{}, newTestLogger(t))
}
