package dlmlicense

import (
	"errors"
	"fmt"
)

// Sentinel errors describing the failure class of a license operation.
var (
	ErrValidation = errors.New("invalid input")
	ErrTransport  = errors.New("license server unreachable")
	ErrBusiness   = errors.New("license rejected")
	ErrServer     = errors.New("license server error")
)

// ServerError represents a non-2xx response from the license control layer.
// The control layer returns errors in the format: {"success": false, "message": "..."}.
type ServerError struct {
	StatusCode int
	Status     Status
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// TransportError wraps a network, timeout or decoding failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// rejectedError wraps ErrBusiness with the message returned by the control layer.
type rejectedError struct {
	message string
}

func (e *rejectedError) Error() string {
	if e.message == "" {
		return ErrBusiness.Error()
	}
	return fmt.Sprintf("%s: %s", ErrBusiness, e.message)
}

func (e *rejectedError) Unwrap() error {
	return ErrBusiness
}

// providerMessages maps provider error codes to user-facing messages.
var providerMessages = map[string]string{
	"expired":             "Your license key has expired.",
	"revoked":             "Your license key has been revoked.",
	"missing":             "Invalid license key.",
	"invalid":             "Invalid license key.",
	"site_inactive":       "License is not active for this site.",
	"item_name_mismatch":  "License key does not match this product.",
	"no_activations_left": "No activations left for this license key.",
}

// friendlyMessage translates a known provider error code, or returns msg unchanged.
func friendlyMessage(msg string) string {
	if m, ok := providerMessages[msg]; ok {
		return m
	}
	return msg
}
