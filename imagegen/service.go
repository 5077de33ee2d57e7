package imagegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"makerkit_backend/core"
	"makerkit_backend/logging"
)

// cascadeState tracks where the orchestrator is in serving one method.
type cascadeState int

const (
	// stateSelectingModel picks the next catalog model to try
	stateSelectingModel cascadeState = iota
	// stateInvoking drives one model through the retry controller
	stateInvoking
	// stateSuccess terminates the cascade with backend images
	stateSuccess
	// stateExhausted means every model for the method failed
	stateExhausted
)

// Service is the organism that orchestrates design candidate generation.
//
// It composes:
//   - Catalog molecule (ordered models per method)
//   - Prober organism (credential and reachability pre-flight)
//   - RetryController molecule (per-model warmup retries)
//   - Invoker organism (the actual backend calls)
//   - PlaceholderProvider molecule (terminal local fallback)
//
// A request walks the catalog for its method; on exhaustion, image-conditioned
// methods cascade into text-to-image, and text-to-image degrades to local
// placeholders. The only errors callers ever see are an unsupported method
// and rejected credentials; everything else resolves to a result.
type Service struct {
	cfg         *core.Config
	catalog     *Catalog
	prober      Prober
	retry       *RetryController
	placeholder *PlaceholderProvider
	logger      *logging.Logger
	metrics     *logging.MetricsLogger
}

// NewService creates a generation Service wired to the hosted backend.
//
// Parameters:
//   - cfg: application configuration
//   - logger: parent logger; the service derives named children from it
//
// Returns an error when cfg or logger is nil, or when a configured model
// catalog override file cannot be loaded.
func NewService(cfg *core.Config, logger *logging.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("imagegen: logger is required")
	}

	catalog := DefaultCatalog()
	if cfg.ModelCatalogFile != "" {
		loaded, err := LoadCatalogFile(cfg.ModelCatalogFile)
		if err != nil {
			return nil, err
		}
		catalog = loaded
		logger.Info("model catalog override loaded", zap.String("path", cfg.ModelCatalogFile))
	}

	invoker := NewHFInvoker(cfg, logger)
	return NewServiceWithComponents(cfg, catalog, invoker, NewHFProber(cfg, logger), logger)
}

// NewServiceWithComponents creates a Service with injected collaborators.
// Used by NewService and directly by tests that substitute fakes.
func NewServiceWithComponents(cfg *core.Config, catalog *Catalog, invoker Invoker, prober Prober, logger *logging.Logger) (*Service, error) {
	if cfg == nil || catalog == nil || invoker == nil || prober == nil || logger == nil {
		return nil, fmt.Errorf("imagegen: all service components are required")
	}
	svcLogger := logger.Named("imagegen")
	return &Service{
		cfg:         cfg,
		catalog:     catalog,
		prober:      prober,
		retry:       NewRetryController(cfg, invoker, logger),
		placeholder: NewPlaceholderProvider(),
		logger:      svcLogger,
		metrics:     logging.NewMetricsLogger(svcLogger),
	}, nil
}

// RetryController exposes the service's retry controller so tests can swap
// the sleep function.
func (s *Service) RetryController() *RetryController {
	return s.retry
}

// GenerateCandidates serves one generation request end to end.
//
// Error surface:
//   - *UnsupportedMethodError for a method absent from the catalog
//   - *CredentialsError when the backend rejects the configured token
//
// Every other condition resolves to a GenerationResult: backend failures
// cascade through fallback models, then fallback methods, then local
// placeholder images. Images always contains exactly the requested count.
func (s *Service) GenerateCandidates(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	// Validate the method before any I/O
	if _, err := s.catalog.Models(req.Method); err != nil {
		return nil, err
	}

	count := req.Count
	if count <= 0 {
		count = s.cfg.CandidateCount
	}

	correlationID := uuid.New().String()
	log := s.logger.With(zap.String("correlation_id", correlationID))
	timer := s.metrics.StartGeneration(string(req.Method))

	log.Info("generation request received",
		zap.String("method", string(req.Method)),
		zap.Int("count", count),
		zap.String("prompt", truncateText(req.Prompt, 120)),
		zap.Bool("has_auxiliary", req.Auxiliary != ""))

	// An unconfigured image backend is a supported state, not an error:
	// serve placeholders with the reason in provenance. No model was ever
	// attempted, so model_attempts stays empty.
	if configured, reason := s.cfg.ImageBackendStatus(); !configured {
		log.Warn("image backend not configured, serving placeholders", zap.String("reason", reason))
		result := s.placeholderResult(req.Method, count, reason, nil)
		s.metrics.EndGeneration(timer, result.Source, result.Model, 0, len(result.Images), true)
		return result, nil
	}

	// Credential validity is the one terminal pre-flight: a rejected token
	// fails every model identically, so the cascade never starts and
	// model_attempts stays empty.
	if err := s.prober.CheckCredentials(ctx); err != nil {
		log.Error("credential check failed", zap.Error(err))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CascadeDeadline)
	defer cancel()

	attempts := []string{}
	result, err := s.runCascade(ctx, log, req.Method, req.Prompt, req.Auxiliary, count, &attempts)
	if err != nil {
		return nil, err
	}

	s.metrics.EndGeneration(timer, result.Source, result.Model, len(result.ModelAttempts), len(result.Images), result.UsedFallback)
	return result, nil
}

// runCascade walks the catalog for one method, recursing into the fallback
// method on exhaustion and bottoming out at placeholders. attempts is shared
// across the recursion so provenance lists every model invoked, in order.
func (s *Service) runCascade(ctx context.Context, log *logging.Logger, method Method, prompt, auxiliary string, count int, attempts *[]string) (*GenerationResult, error) {
	models, err := s.catalog.Models(method)
	if err != nil {
		return nil, err
	}

	state := stateSelectingModel
	modelIdx := 0
	var result *GenerationResult

	for state != stateSuccess && state != stateExhausted {
		switch state {
		case stateSelectingModel:
			if modelIdx >= len(models) || ctx.Err() != nil {
				state = stateExhausted
				continue
			}
			state = stateInvoking

		case stateInvoking:
			modelID := models[modelIdx]
			modelIdx++
			*attempts = append(*attempts, modelID)

			if ok, diag := s.prober.CheckModel(ctx, modelID); !ok {
				// Advisory only: reachability probes race cold starts, so
				// the invocation itself is the real availability signal.
				log.Warn("model probe negative, attempting anyway", zap.String("diagnostic", diag))
			}

			images, invokeErr := s.invokeModel(ctx, method, modelID, prompt, auxiliary, count)
			if invokeErr != nil {
				if IsCredentialsError(invokeErr) {
					return nil, invokeErr
				}
				log.Warn("model failed, moving to next",
					zap.String("model", modelID), zap.Error(invokeErr))
				state = stateSelectingModel
				continue
			}

			result = &GenerationResult{
				Images: images,
				Provenance: Provenance{
					Source:        methodSource(method),
					Model:         modelID,
					UsedFallback:  len(*attempts) > 1,
					ModelAttempts: *attempts,
				},
			}
			if result.UsedFallback {
				result.FallbackReason = fmt.Sprintf("primary model failed; %s served the request", modelID)
			}
			state = stateSuccess
		}
	}

	if state == stateSuccess {
		log.Info("generation succeeded",
			zap.String("method", string(method)),
			zap.String("model", result.Model),
			zap.Int("attempts", len(*attempts)))
		return result, nil
	}

	// Exhausted: cascade to the fallback method when one exists, otherwise
	// degrade to placeholders.
	exhaustedAttempts := strings.Join(*attempts, ", ")
	if target, ok := cascadeTarget(method); ok {
		log.Warn("method exhausted, cascading to fallback method",
			zap.String("from", string(method)), zap.String("to", string(target)))
		fallbackPrompt := QualifyPrompt(method, prompt)
		result, err := s.runCascade(ctx, log, target, fallbackPrompt, "", count, attempts)
		if err != nil {
			return nil, err
		}
		result.UsedFallback = true
		result.FallbackReason = fmt.Sprintf("%s models exhausted (%s); served via %s", method, exhaustedAttempts, target)
		return result, nil
	}

	reason := fmt.Sprintf("all models exhausted; attempts: %s", exhaustedAttempts)
	log.Warn("all models exhausted, serving placeholders", zap.String("attempts", exhaustedAttempts))
	return s.placeholderResult(method, count, reason, *attempts), nil
}

// invokeModel drives one model through the retry controller and normalizes
// its output into the delivered candidate list.
func (s *Service) invokeModel(ctx context.Context, method Method, modelID, prompt, auxiliary string, count int) ([]string, error) {
	payload := s.buildPayload(method, modelID, prompt, auxiliary)

	// Optional diversification: distinct concurrent invocations instead of
	// replicating one image. Text-to-image only; image-conditioned methods
	// are pinned to their conditioning image and replication is the
	// documented behavior.
	if method == MethodTextToImage && s.cfg.DiversifyCandidates && count > 1 {
		images, err := FanOutImages(ctx, count, func(ctx context.Context) (*InvokeResult, error) {
			return s.retry.InvokeWithRetry(ctx, modelID, payload)
		})
		if err == nil {
			return images, nil
		}
		if IsCredentialsError(err) {
			return nil, err
		}
		// A failed fan-out counts as one failed attempt against this model;
		// fall through to the next model rather than retrying piecemeal.
		return nil, err
	}

	result, err := s.retry.InvokeWithRetry(ctx, modelID, payload)
	if err != nil {
		return nil, err
	}
	return ReplicateImage(result, count), nil
}

// buildPayload assembles the wire payload for one model invocation.
func (s *Service) buildPayload(method Method, modelID, prompt, auxiliary string) InvokePayload {
	resolution := ResolutionFor(modelID)

	switch method {
	case MethodSketchGuided:
		return InvokePayload{
			Inputs: ImageInputs{
				Image:  PrepareAuxiliary(auxiliary, resolution),
				Prompt: QualifyPrompt(method, prompt),
			},
			Parameters: Parameters{
				// Sketch conditioning converges in fewer steps
				NumInferenceSteps: 20,
				GuidanceScale:     s.cfg.GuidanceScale,
				Width:             resolution,
				Height:            resolution,
			},
		}
	case MethodImageToImage:
		return InvokePayload{
			Inputs: ImageInputs{
				Image:  PrepareAuxiliary(auxiliary, resolution),
				Prompt: QualifyPrompt(method, prompt),
			},
			Parameters: Parameters{
				NumInferenceSteps: s.cfg.InferenceSteps,
				GuidanceScale:     s.cfg.GuidanceScale,
				Strength:          s.cfg.TransformStrength,
			},
		}
	default:
		return InvokePayload{
			Inputs: QualifyPrompt(method, prompt),
			Parameters: Parameters{
				NumInferenceSteps: s.cfg.InferenceSteps,
				GuidanceScale:     s.cfg.GuidanceScale,
				Width:             resolution,
				Height:            resolution,
			},
		}
	}
}

// placeholderResult assembles the terminal local-fallback result.
func (s *Service) placeholderResult(method Method, count int, reason string, attempts []string) *GenerationResult {
	if attempts == nil {
		attempts = []string{}
	}
	return &GenerationResult{
		Images: s.placeholder.Images(count),
		Provenance: Provenance{
			Source:         SourceLocalFallback,
			Model:          FallbackModelName,
			UsedFallback:   true,
			FallbackReason: reason,
			ModelAttempts:  attempts,
		},
	}
}
