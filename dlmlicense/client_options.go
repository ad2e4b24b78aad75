package dlmlicense

import (
	"net/http"
	"time"
)

// ClientOption configures the control-layer Client.
type ClientOption func(*Client)

// WithHTTPClient sends requests through c, for example to add a proxy or
// custom TLS roots. Its Timeout is replaced by the Client's request timeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout bounds each control-layer round trip. A non-positive d keeps
// the 15 second default so a request can never wait forever.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent sent to the control layer. An empty
// value omits the header.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}
