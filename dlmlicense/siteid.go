package dlmlicense

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// SiteID produces a deterministic identifier for a site URL, used to scope
// the option store when no explicit site id is configured.
//
// Scheme, a leading "www." and trailing slashes are ignored so that
// "https://www.example.com/" and "http://example.com" share one scope.
// Set DLM_SITE_ID to override entirely.
func SiteID(siteURL string) (string, error) {
	if id := strings.TrimSpace(os.Getenv("DLM_SITE_ID")); id != "" {
		return id, nil
	}

	normalized, err := normalizeSiteURL(siteURL)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(normalized))
	return fmt.Sprintf("%x", h.Sum(nil))[:16], nil
}

// SiteHostname returns the lower-cased host (with port) of siteURL, or "".
func SiteHostname(siteURL string) string {
	u, err := parseSiteURL(siteURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func normalizeSiteURL(siteURL string) (string, error) {
	u, err := parseSiteURL(siteURL)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.EscapedPath(), "/")
	return host + path, nil
}

func parseSiteURL(siteURL string) (*url.URL, error) {
	siteURL = strings.TrimSpace(siteURL)
	if siteURL == "" {
		return nil, fmt.Errorf("site url is empty")
	}
	if !strings.Contains(siteURL, "://") {
		siteURL = "https://" + siteURL
	}
	u, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("site url %q has no host", siteURL)
	}
	return u, nil
}
