// Package optionstore provides site-scoped key/value persistence for the
// license record and its cached status.
package optionstore

import (
	"context"
	"errors"
	"regexp"
)

// DefaultSite is the scope used when no site id is configured.
const DefaultSite = "default"

// ErrNotFound is returned by Get when the option does not exist.
var ErrNotFound = errors.New("option not found")

// validIdentifier matches safe table/collection names (letters, digits, underscores).
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Store persists opaque option values by name for a single site.
type Store interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Set creates or replaces the value (last write wins).
	Set(ctx context.Context, name string, value []byte) error

	// Delete removes the option. Deleting a missing option is not an error.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

func siteOrDefault(site string) string {
	if site == "" {
		return DefaultSite
	}
	return site
}
