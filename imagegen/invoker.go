package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"makerkit_backend/core"
	"makerkit_backend/logging"
)

// Parameters are the tuning knobs forwarded with every backend invocation.
// Zero-valued fields are omitted from the wire payload.
type Parameters struct {
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	Strength          float64 `json:"strength,omitempty"`
}

// ImageInputs is the inputs shape for image-conditioned methods: the
// conditioning image as a data URL plus the guidance prompt.
type ImageInputs struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// InvokePayload is the JSON document POSTed to a model endpoint. Inputs is
// either a prompt string (text-to-image) or an ImageInputs value.
type InvokePayload struct {
	Inputs     interface{} `json:"inputs"`
	Parameters Parameters  `json:"parameters"`
}

// InvokeResult is a successful backend invocation: raw image bytes plus the
// content type the backend reported.
type InvokeResult struct {
	Model       string
	ContentType string
	Data        []byte
}

// Invoker sends one generation payload to one backend model and classifies
// the response.
type Invoker interface {
	Invoke(ctx context.Context, modelID string, payload InvokePayload, waitForModel bool) (*InvokeResult, error)
}

// backendErrorBody is the JSON error document hosted models return in place
// of image bytes. Some models use "error", others "message"; estimated_time
// appears while the model is loading.
type backendErrorBody struct {
	Error         string  `json:"error"`
	Message       string  `json:"message"`
	EstimatedTime float64 `json:"estimated_time"`
}

// HFInvoker is the organism that talks to the hosted inference router.
// It POSTs a payload to the per-model endpoint and classifies the response
// into image bytes, a retryable backend failure, a credentials failure, or
// an invalid response type.
type HFInvoker struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

// Compile-time check that HFInvoker implements the Invoker interface
var _ Invoker = (*HFInvoker)(nil)

// NewHFInvoker creates an invoker for the hosted inference router.
//
// Parameters:
//   - cfg: application configuration (router URL, token, invoke timeout, TLS settings)
//   - logger: logger for invocation diagnostics
func NewHFInvoker(cfg *core.Config, logger *logging.Logger) *HFInvoker {
	return &HFInvoker{
		baseURL:    strings.TrimRight(cfg.HFRouterURL, "/"),
		token:      cfg.HFAPIToken,
		httpClient: core.GetHTTPClient(cfg, cfg.InvokeTimeout),
		logger:     logger.Named("hf-invoker"),
	}
}

// Invoke POSTs the payload to the model endpoint and classifies the response.
//
// Classification:
//   - 2xx with an image content type: success, the bytes are the image
//   - 401/403: *CredentialsError (terminal for the whole cascade)
//   - JSON error document (any status): *BackendError carrying the backend's
//     message and estimated_time wait hint
//   - other non-2xx: *BackendError with the raw body as message
//   - 2xx non-image: *InvalidResponseTypeError
func (i *HFInvoker) Invoke(ctx context.Context, modelID string, payload InvokePayload, waitForModel bool) (*InvokeResult, error) {
	url := fmt.Sprintf("%s/models/%s", i.baseURL, modelID)
	if waitForModel {
		url += "?wait_for_model=true"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload for %s: %w", modelID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", modelID, err)
	}
	req.Header.Set("Authorization", "Bearer "+i.token)
	req.Header.Set("Content-Type", "application/json")

	i.logger.Debug("invoking model",
		zap.String("model", modelID),
		zap.Bool("wait_for_model", waitForModel),
		zap.Int("payload_bytes", len(body)))

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, &BackendError{Model: modelID, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{Model: modelID, Reason: "reading response body: " + err.Error()}
	}

	if isCredentialStatus(resp.StatusCode) {
		return nil, &CredentialsError{
			StatusCode: resp.StatusCode,
			Reason:     truncateText(string(respBody), 200),
			Action:     "Verify HF_API_TOKEN is valid and has accepted the model license terms",
		}
	}

	contentType := resp.Header.Get("Content-Type")

	// Hosted models report loading/errors as JSON documents, sometimes even
	// with a 200 status. Classify by shape before trusting the status code.
	if errBody, ok := parseBackendError(contentType, respBody); ok {
		message := errBody.Error
		if message == "" {
			message = errBody.Message
		}
		return nil, &BackendError{
			Model:         modelID,
			StatusCode:    resp.StatusCode,
			Message:       message,
			EstimatedWait: errBody.EstimatedTime,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{
			Model:      modelID,
			StatusCode: resp.StatusCode,
			Message:    truncateText(string(respBody), 200),
		}
	}

	if !IsImageContentType(contentType) {
		return nil, &InvalidResponseTypeError{Model: modelID, ContentType: contentType}
	}

	i.logger.Debug("model responded with image",
		zap.String("model", modelID),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(respBody)))

	return &InvokeResult{
		Model:       modelID,
		ContentType: contentType,
		Data:        respBody,
	}, nil
}

// parseBackendError attempts to decode a backend JSON error document.
// Returns false when the body is not such a document.
func parseBackendError(contentType string, body []byte) (*backendErrorBody, bool) {
	trimmed := bytes.TrimSpace(body)
	isJSON := strings.Contains(strings.ToLower(contentType), "application/json") ||
		(len(trimmed) > 0 && trimmed[0] == '{')
	if !isJSON {
		return nil, false
	}

	var errBody backendErrorBody
	if err := json.Unmarshal(trimmed, &errBody); err != nil {
		return nil, false
	}
	if errBody.Error == "" && errBody.Message == "" {
		return nil, false
	}
	return &errBody, true
}
