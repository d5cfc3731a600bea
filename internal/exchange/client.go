// Package exchange forwards provider authorization codes to the backend,
// which performs the upstream token exchange and mints a one-time login code.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mysocial/auth-front/internal/ioutil"
	"github.com/mysocial/auth-front/internal/urlutil"
)

const callbackPath = "/auth/provider/callback"

// maxErrorBody caps how much of a failed response we read back for logging.
const maxErrorBody = 4096

// Request carries everything the backend needs to redeem the provider code.
type Request struct {
	Provider      string `json:"provider"`
	Code          string `json:"code"`
	CodeChallenge string `json:"code_challenge"`
	RedirectURI   string `json:"redirect_uri"`
	ClientID      string `json:"client_id"`
	State         string `json:"state"`
	Nonce         string `json:"nonce"`
	RequestID     string `json:"request_id,omitempty"`
}

// Result is the backend's answer: an opaque one-time code the client
// application redeems directly with the backend.
type Result struct {
	Code string `json:"code"`
}

// Client talks to the backend's provider callback endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an exchange client. The timeout bounds the whole
// round trip to the backend.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Exchange submits the provider code and returns the backend-issued login
// code. Any non-2xx answer or a 2xx without a code is an error.
func (c *Client) Exchange(ctx context.Context, req *Request) (*Result, error) {
	endpoint, err := urlutil.JoinPath(c.baseURL, callbackPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build exchange URL: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exchange request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := ioutil.ReadLimited(resp.Body, maxErrorBody)
		return nil, fmt.Errorf("exchange returned status %d: %s", resp.StatusCode, detail)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode exchange response: %w", err)
	}
	if result.Code == "" {
		return nil, fmt.Errorf("exchange response missing code")
	}
	return &result, nil
}
