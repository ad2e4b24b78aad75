package dlmlicense

import (
	"strings"
	"time"
)

// Status is the normalized license status shared by the client and the control layer.
type Status string

const (
	StatusValid    Status = "valid"
	StatusInvalid  Status = "invalid"
	StatusExpired  Status = "expired"
	StatusInactive Status = "inactive"
	StatusNone     Status = "none"  // no key on file
	StatusError    Status = "error" // transient network/API failure
)

// ParseStatus normalizes a status received over the wire.
// Unknown non-empty values become StatusInvalid; an empty value stays empty.
func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusValid, StatusInvalid, StatusExpired, StatusInactive, StatusNone, StatusError:
		return st
	case "":
		return ""
	default:
		return StatusInvalid
	}
}

// Action is the operation requested from the control layer.
type Action string

const (
	ActionCheck      Action = "check"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

// Actions lists every action the control layer accepts.
var Actions = []Action{ActionCheck, ActionActivate, ActionDeactivate}

// Request is the JSON body posted to the control layer.
type Request struct {
	Action     Action `json:"action"`
	Plugin     string `json:"plugin"`
	LicenseKey string `json:"license_key"`
	SiteURL    string `json:"site_url"`
}

// Response is the JSON body returned by the control layer.
type Response struct {
	Success bool   `json:"success"`
	Status  Status `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Record is the persisted license of a site.
// Activated is a unix timestamp in seconds.
type Record struct {
	Key       string `json:"key"`
	Activated int64  `json:"activated"`
}

// ActivatedAt returns the activation time.
func (r Record) ActivatedAt() time.Time {
	return time.Unix(r.Activated, 0)
}

// CachedStatus is the persisted result of the last successful check.
// Timestamp is a unix timestamp in seconds.
type CachedStatus struct {
	Status    Status `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// FreshAt reports whether the cached status is younger than ttl at now.
func (c CachedStatus) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(c.Timestamp, 0)) < ttl
}

// Result is returned by Activate and Deactivate. Err carries the failure
// class (see ErrValidation, ErrTransport, ErrBusiness, ErrServer) and is nil
// on success.
type Result struct {
	Success bool
	Status  Status
	Message string
	Err     error
}
