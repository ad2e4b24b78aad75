// Package upstream talks to the third-party licensing provider behind the
// control layer.
package upstream

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport marks network, timeout and decoding failures.
var ErrTransport = errors.New("upstream unreachable")

// Provider status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
	StatusDisabled = "disabled"
)

// Validation is the provider's view of a license key.
type Validation struct {
	Status     string
	Attributes map[string]any
}

// Provider validates a license key for a product variant.
type Provider interface {
	Validate(ctx context.Context, licenseKey, variantID string) (*Validation, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, licenseKey, variantID string) (*Validation, error)

func (f ProviderFunc) Validate(ctx context.Context, licenseKey, variantID string) (*Validation, error) {
	return f(ctx, licenseKey, variantID)
}

// ProviderError is a non-200 reply from the provider.
type ProviderError struct {
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Detail)
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *transportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *transportError) Unwrap() error {
	return e.err
}
