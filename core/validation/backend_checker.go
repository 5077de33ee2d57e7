package validation

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"makerkit_backend/core"
)

// BackendCheckResult represents the result of an image backend check.
type BackendCheckResult struct {
	Reachable     bool
	Authenticated bool
	Message       string
	Error         error
	Latency       time.Duration
}

// BackendChecker verifies that the image backend is reachable and that the
// configured token is accepted. This is the startup-time counterpart of the
// generation-time accessibility probe: network problems are advisory (the
// cascade handles them per model), but a rejected token is worth surfacing
// before the first request arrives.
type BackendChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewBackendChecker creates a new BackendChecker with default settings.
func NewBackendChecker() *BackendChecker {
	return &BackendChecker{
		timeout: 10 * time.Second,
	}
}

// WithTimeout sets the timeout for network operations.
func (c *BackendChecker) WithTimeout(timeout time.Duration) *BackendChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *BackendChecker) WithAllowSelfSignedCerts(allow bool) *BackendChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckTokenAccess validates the token against the account endpoint.
// A 401/403 means the token is rejected; any other response (including
// server errors) counts as reachable.
func (c *BackendChecker) CheckTokenAccess(accountURL, token string) BackendCheckResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckTokenAccessWithContext(ctx, accountURL, token)
}

// CheckTokenAccessWithContext is CheckTokenAccess with caller-controlled cancellation.
func (c *BackendChecker) CheckTokenAccessWithContext(ctx context.Context, accountURL, token string) BackendCheckResult {
	if token == "" {
		return BackendCheckResult{
			Message: "No token configured",
			Error:   core.ErrMissingConfig("HF_API_TOKEN"),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, accountURL, nil)
	if err != nil {
		return BackendCheckResult{
			Message: "Invalid account endpoint URL",
			Error:   core.ErrInvalidBackendURL("HF_ACCOUNT_URL", accountURL, err.Error()),
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.createHTTPClient().Do(req)
	latency := time.Since(start)

	if err != nil {
		return BackendCheckResult{
			Latency: latency,
			Message: "Image backend unreachable",
			Error:   core.ErrBackendUnreachable("image backend", accountURL, err.Error()),
		}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return BackendCheckResult{
			Reachable: true,
			Latency:   latency,
			Message:   fmt.Sprintf("Token rejected (HTTP %d)", resp.StatusCode),
			Error:     core.ErrAuthFailed("image backend", fmt.Sprintf("HTTP %d from %s", resp.StatusCode, accountURL)),
		}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return BackendCheckResult{
			Reachable:     true,
			Authenticated: true,
			Latency:       latency,
			Message:       "Token accepted",
		}
	default:
		// The account endpoint misbehaving is not a credential problem
		return BackendCheckResult{
			Reachable:     true,
			Authenticated: true,
			Latency:       latency,
			Message:       fmt.Sprintf("Backend responded with HTTP %d; token assumed valid", resp.StatusCode),
		}
	}
}

// CheckImageBackendAccess reads the token and account URL from the
// environment and validates them.
func (c *BackendChecker) CheckImageBackendAccess() BackendCheckResult {
	token := os.Getenv("HF_API_TOKEN")
	if token == "" {
		token = os.Getenv("HUGGINGFACE_API_TOKEN")
	}
	accountURL := os.Getenv("HF_ACCOUNT_URL")
	if accountURL == "" {
		accountURL = "https://huggingface.co/api/whoami-v2"
	}
	return c.CheckTokenAccess(accountURL, token)
}

// createHTTPClient builds an HTTP client honoring the TLS settings.
func (c *BackendChecker) createHTTPClient() *http.Client {
	client := &http.Client{Timeout: c.timeout}
	if c.allowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}
