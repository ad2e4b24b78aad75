package dlmlicense

import (
	"net"
	"strings"
)

// Fixed control-layer endpoints.
const (
	LocalEndpoint      = "https://scriptsandpixels.local/license-api/"
	ProductionEndpoint = "https://scriptsandpixels.studio/license-api/"
)

// Environment is the explicit input to local-environment detection.
type Environment struct {
	// Hostname is the host the site is served from, with or without a port.
	Hostname string
	// LocalMode forces detection when set; nil means "not configured".
	LocalMode *bool
	// EnvironmentType is the site's declared environment (local, development,
	// staging, production, ...).
	EnvironmentType string
	// Debug reports whether the host application runs with debugging
	// enabled. In debug mode any private or loopback IP and any single-label
	// hostname also count as local.
	Debug bool
}

// Resolution collects everything ResolveEndpoint looks at.
type Resolution struct {
	Override    string
	Hook        func() string
	Environment Environment
}

// localHostSuffixes and localHostPrefixes identify development hostnames.
var (
	localHostSuffixes = []string{".local", ".test", ".dev"}
	localHostPrefixes = []string{"192.168.", "10.0."}
	localHostExact    = []string{"localhost", "127.0.0.1"}
)

// ResolveEndpoint returns the control-layer URL. First match wins:
// explicit override, non-empty hook value, then LocalEndpoint or
// ProductionEndpoint based on IsLocalEnvironment.
func ResolveEndpoint(r Resolution) string {
	if o := strings.TrimSpace(r.Override); o != "" {
		return o
	}
	if r.Hook != nil {
		if h := strings.TrimSpace(r.Hook()); h != "" {
			return h
		}
	}
	if IsLocalEnvironment(r.Environment) {
		return LocalEndpoint
	}
	return ProductionEndpoint
}

// IsLocalEnvironment reports whether env describes a local/dev install.
func IsLocalEnvironment(env Environment) bool {
	if env.LocalMode != nil {
		return *env.LocalMode
	}

	switch strings.ToLower(strings.TrimSpace(env.EnvironmentType)) {
	case "local", "development":
		return true
	case "production":
		return false
	}

	if env.Debug && isDebugHostname(env.Hostname) {
		return true
	}
	return IsLocalHostname(env.Hostname)
}

// isDebugHostname is the wider match used when debugging is enabled: private
// and loopback addresses plus single-label hosts such as "devbox".
func isDebugHostname(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsPrivate() || ip.IsLoopback()
	}
	return !strings.Contains(host, ".")
}

// IsLocalHostname matches host against the known local indicators:
// localhost, *.local, *.test, *.dev, 127.0.0.1, 192.168.*, 10.0.*.
func IsLocalHostname(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return false
	}
	for _, exact := range localHostExact {
		if host == exact || strings.HasSuffix(host, "."+exact) {
			return true
		}
	}
	for _, suffix := range localHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	for _, prefix := range localHostPrefixes {
		if strings.HasPrefix(host, prefix) {
			return true
		}
	}
	return false
}
