package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"makerkit_backend/core"
	"makerkit_backend/logging"
)

// Prober checks backend accessibility before the cascade spends time on
// invocations that cannot succeed.
type Prober interface {
	// CheckCredentials validates the configured token against the backend's
	// account endpoint. A *CredentialsError return is terminal for the
	// request; a nil return means proceed. Network trouble reaching the
	// account endpoint is NOT terminal - the probe is best-effort and the
	// real invocation will surface any persistent problem.
	CheckCredentials(ctx context.Context) error

	// CheckModel probes a model endpoint for reachability. Best-effort:
	// the result is advisory only and never blocks an invocation attempt.
	CheckModel(ctx context.Context, modelID string) (bool, string)
}

// HFProber validates credentials and model reachability against the hosted
// inference platform.
type HFProber struct {
	routerURL  string
	accountURL string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

// Compile-time check that HFProber implements the Prober interface
var _ Prober = (*HFProber)(nil)

// NewHFProber creates a prober for the hosted inference platform.
func NewHFProber(cfg *core.Config, logger *logging.Logger) *HFProber {
	return &HFProber{
		routerURL:  cfg.HFRouterURL,
		accountURL: cfg.HFAccountURL,
		token:      cfg.HFAPIToken,
		httpClient: core.GetDefaultHTTPClient(cfg),
		logger:     logger.Named("hf-prober"),
	}
}

// CheckCredentials calls the account endpoint with the configured token.
// 401/403 means the token is invalid and the whole cascade should abort;
// any other failure is logged and ignored so a flaky account endpoint
// cannot take down generation.
func (p *HFProber) CheckCredentials(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.accountURL, nil)
	if err != nil {
		return fmt.Errorf("building credentials probe: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("credentials probe unreachable, proceeding anyway", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if isCredentialStatus(resp.StatusCode) {
		return &CredentialsError{
			StatusCode: resp.StatusCode,
			Reason:     "account endpoint rejected the configured token",
			Action:     "Verify HF_API_TOKEN is valid and has not expired",
		}
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("credentials probe returned unexpected status, proceeding anyway",
			zap.Int("status", resp.StatusCode))
	}
	return nil
}

// CheckModel issues a GET against the model endpoint. Accessible models
// return 200; everything else comes back with a diagnostic string. The
// cascade logs the diagnostic but attempts the invocation regardless,
// since the probe endpoint and the inference endpoint can disagree.
func (p *HFProber) CheckModel(ctx context.Context, modelID string) (bool, string) {
	url := fmt.Sprintf("%s/models/%s", p.routerURL, modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Sprintf("building probe for %s: %v", modelID, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("connection error probing %s: %v", modelID, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusOK {
		return true, ""
	}
	return false, fmt.Sprintf("model %s not accessible: %d %s", modelID, resp.StatusCode, truncateText(string(body), 120))
}
