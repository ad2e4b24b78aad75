package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.lemonsqueezy.com/v1/licenses/"

	defaultTimeout = 15 * time.Second
	jsonAPIType    = "application/vnd.api+json"
)

type validateBody struct {
	Data validateData `json:"data"`
}

type validateData struct {
	Type       string             `json:"type"`
	Attributes validateAttributes `json:"attributes"`
}

type validateAttributes struct {
	LicenseKey string `json:"license_key"`
	VariantID  string `json:"variant_id"`
}

type validateResult struct {
	Data struct {
		Attributes map[string]any `json:"attributes"`
	} `json:"data"`
}

type errorResult struct {
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

// LemonSqueezyOption configures a LemonSqueezy client.
type LemonSqueezyOption func(*LemonSqueezy)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) LemonSqueezyOption {
	return func(c *LemonSqueezy) {
		c.client.SetBaseURL(u)
	}
}

// WithTimeout overrides the 15 second request timeout.
func WithTimeout(d time.Duration) LemonSqueezyOption {
	return func(c *LemonSqueezy) {
		c.client.SetTimeout(d)
	}
}

// LemonSqueezy is a Provider backed by the Lemon Squeezy licenses API.
type LemonSqueezy struct {
	client *resty.Client
}

// NewLemonSqueezy creates a client authenticating with apiKey.
func NewLemonSqueezy(apiKey string, opts ...LemonSqueezyOption) *LemonSqueezy {
	client := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(defaultTimeout).
		SetAuthToken(apiKey).
		SetHeader("Accept", jsonAPIType).
		SetHeader("Content-Type", jsonAPIType).
		SetHeader("User-Agent", "dlm-license-api")
	c := &LemonSqueezy{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate posts a JSON:API validate request. A non-200 reply returns a
// *ProviderError with the first error detail; network, timeout and decode
// failures match ErrTransport.
func (c *LemonSqueezy) Validate(ctx context.Context, licenseKey, variantID string) (*Validation, error) {
	body := validateBody{Data: validateData{
		Type: "licenses",
		Attributes: validateAttributes{
			LicenseKey: licenseKey,
			VariantID:  variantID,
		},
	}}

	var result validateResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		ForceContentType("application/json").
		Post("validate")
	if err != nil {
		return nil, &transportError{op: "validate license", err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		pe := &ProviderError{StatusCode: resp.StatusCode()}
		var errResult errorResult
		if json.Unmarshal(resp.Body(), &errResult) == nil && len(errResult.Errors) > 0 {
			pe.Detail = errResult.Errors[0].Detail
		}
		return nil, pe
	}

	v := &Validation{Attributes: result.Data.Attributes}
	if s, ok := result.Data.Attributes["status"].(string); ok {
		v.Status = s
	}
	return v, nil
}
