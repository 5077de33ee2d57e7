package imagegen

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"makerkit_backend/core"
	"makerkit_backend/logging"
)

// newTestLogger creates a logger for testing
func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	tmpDir := t.TempDir()
	logger, err := logging.NewLogger(true, filepath.Join(tmpDir, "test.log"))
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Sync() })
	return logger
}

// newTestConfig returns a config with fast timeouts suitable for unit tests.
func newTestConfig() *core.Config {
	return &core.Config{
		HFAPIToken:          "hf_testtoken123",
		HFRouterURL:         "https://router.example.test/hf-inference",
		HFAccountURL:        "https://example.test/api/whoami-v2",
		CandidateCount:      4,
		InferenceSteps:      25,
		GuidanceScale:       7.5,
		TransformStrength:   0.8,
		MaxAttemptsPerModel: 3,
		ModelWarmupWait:     20 * time.Second,
		ModelWarmupWaitCap:  60 * time.Second,
		ModelWarmupBuffer:   2 * time.Second,
		InvokeTimeout:       5 * time.Second,
		CascadeDeadline:     30 * time.Second,
	}
}

// tinyPNG is a valid 1x1 PNG used as fake backend output.
var tinyPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x37, 0x6E, 0xF9,
	0x24, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x62, 0x60, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0xE5, 0x27, 0xDE, 0xFC, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82, // IEND chunk
}

// fakeInvoker scripts per-model invocation outcomes for cascade tests.
// Each call against a model consumes the next response in its script;
// the last response repeats once the script is exhausted.
type fakeInvoker struct {
	mu      sync.Mutex
	scripts map[string][]fakeResponse
	calls   []string
}

type fakeResponse struct {
	result *InvokeResult
	err    error
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{scripts: map[string][]fakeResponse{}}
}

// succeed scripts an immediate image success for a model.
func (f *fakeInvoker) succeed(modelID string) {
	f.scripts[modelID] = append(f.scripts[modelID], fakeResponse{
		result: &InvokeResult{Model: modelID, ContentType: "image/png", Data: tinyPNG},
	})
}

// fail scripts an error for a model.
func (f *fakeInvoker) fail(modelID string, err error) {
	f.scripts[modelID] = append(f.scripts[modelID], fakeResponse{err: err})
}

func (f *fakeInvoker) Invoke(ctx context.Context, modelID string, payload InvokePayload, waitForModel bool) (*InvokeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelID)

	script, ok := f.scripts[modelID]
	if !ok || len(script) == 0 {
		return nil, &BackendError{Model: modelID, StatusCode: 500, Message: "unscripted model"}
	}

	next := script[0]
	if len(script) > 1 {
		f.scripts[modelID] = script[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return next.result, nil
}

// callCount returns how many invocations hit a given model.
func (f *fakeInvoker) callCount(modelID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == modelID {
			n++
		}
	}
	return n
}

// fakeProber scripts pre-flight outcomes.
type fakeProber struct {
	credentialsErr  error
	unreachable     map[string]bool
	credentialCalls int
}

func newFakeProber() *fakeProber {
	return &fakeProber{unreachable: map[string]bool{}}
}

func (f *fakeProber) CheckCredentials(ctx context.Context) error {
	f.credentialCalls++
	return f.credentialsErr
}

func (f *fakeProber) CheckModel(ctx context.Context, modelID string) (bool, string) {
	if f.unreachable[modelID] {
		return false, "model " + modelID + " not accessible: 404"
	}
	return true, ""
}

// noSleep is a SleepFunc that records waits without sleeping.
func noSleep(waits *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}
