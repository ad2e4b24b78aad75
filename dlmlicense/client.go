package dlmlicense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20 // 1 MB
)

// Client posts license requests to the control layer. The endpoint is passed
// per call because it is resolved from the environment every time.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration // applied after all options
	userAgent  string
}

// NewClient creates a new control-layer client with a 15 second timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:   defaultTimeout,
		userAgent: "dlm-license-go/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	// Apply timeout after all options so ordering doesn't matter.
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout
	return c
}

// Do posts req to endpoint and decodes the control-layer response.
//
// A 2xx response is returned as-is, including business failures
// (success=false). Non-2xx responses return a *ServerError; network, timeout
// and decoding failures return a *TransportError.
func (c *Client) Do(ctx context.Context, endpoint string, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "http request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, body)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &TransportError{Op: "decode response", Err: err}
	}
	out.Status = ParseStatus(string(out.Status))
	return &out, nil
}

// parseError reads the optional message of a non-2xx response:
// {"success": false, "status": "...", "message": "..."}
func parseError(statusCode int, body []byte) error {
	se := &ServerError{StatusCode: statusCode}
	var errResp Response
	if err := json.Unmarshal(body, &errResp); err == nil {
		se.Status = ParseStatus(string(errResp.Status))
		se.Message = errResp.Message
	}
	return se
}
