package dlmlicense

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense/optionstore"
)

// Option names in the site's option store.
const (
	OptionLicense = "datalayer_manager_license"
	OptionStatus  = "datalayer_manager_license_status"
)

const (
	// DefaultPluginID is the product map key of the DataLayer Manager plugin.
	DefaultPluginID = "datalayer-manager"
	// DefaultCacheTTL is how long a checked status is trusted.
	DefaultCacheTTL = 24 * time.Hour
	// TestLicenseKey is the only key accepted in test mode.
	TestLicenseKey = "TEST-LICENSE-KEY-12345"
)

const (
	msgKeyRequired        = "License key is required."
	msgConnection         = "Error connecting to license server. Please try again later."
	msgServerError        = "License server returned an error. Please try again later."
	msgUnknown            = "Unknown error occurred."
	msgActivated          = "License activated successfully!"
	msgSaveFailed         = "Could not save license key."
	msgTestActivated      = "Test license activated successfully! (Test Mode)"
	msgTestInvalid        = "Invalid test license key. Use: " + TestLicenseKey
	msgNoKey              = "No license key found."
	msgDeactivated        = "License deactivated successfully."
	msgDeactivatedLocally = "License deactivated locally. (Could not reach license server.)"
	msgDeactivatedRefused = "License deactivated locally. (License server returned an error.)"
)

// Gate is the only surface feature code should use to decide whether premium
// functionality is available.
type Gate interface {
	IsPremiumActive(ctx context.Context) bool
}

// Manager is the single source of truth for a site's license: it stores the
// key, caches the last checked status and talks to the control layer.
type Manager struct {
	store            optionstore.Store
	client           *Client
	pluginID         string
	siteURL          string
	testMode         bool
	endpointOverride string
	endpointHook     func() string
	environment      func() Environment
	cacheTTL         time.Duration
	now              func() time.Time
	logger           zerolog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClient sets the control-layer client. Default: NewClient().
func WithClient(c *Client) ManagerOption {
	return func(m *Manager) {
		m.client = c
	}
}

// WithPluginID sets the plugin id sent to the control layer. Default: "datalayer-manager".
func WithPluginID(id string) ManagerOption {
	return func(m *Manager) {
		m.pluginID = id
	}
}

// WithSiteURL sets the site URL sent with every request. Its host also feeds
// the default environment detection.
func WithSiteURL(u string) ManagerOption {
	return func(m *Manager) {
		m.siteURL = u
	}
}

// WithTestMode enables test mode: no network access, only TestLicenseKey is accepted.
func WithTestMode(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.testMode = enabled
	}
}

// WithEndpointOverride forces the control-layer URL.
func WithEndpointOverride(url string) ManagerOption {
	return func(m *Manager) {
		m.endpointOverride = url
	}
}

// WithEndpointHook registers a function consulted when no explicit override
// is set. An empty return value falls through to environment detection.
func WithEndpointHook(hook func() string) ManagerOption {
	return func(m *Manager) {
		m.endpointHook = hook
	}
}

// WithEnvironment sets the environment provider. It is called on every
// remote call. Default: hostname of the site URL only.
func WithEnvironment(fn func() Environment) ManagerOption {
	return func(m *Manager) {
		m.environment = fn
	}
}

// WithCacheTTL overrides the 24h status cache lifetime.
func WithCacheTTL(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.cacheTTL = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the logger for degraded paths. Default: disabled.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a license Manager persisting into store.
func NewManager(store optionstore.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		pluginID: DefaultPluginID,
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.client == nil {
		m.client = NewClient()
	}
	if m.environment == nil {
		m.environment = func() Environment {
			return Environment{Hostname: SiteHostname(m.siteURL)}
		}
	}
	return m
}

// Endpoint returns the control-layer URL for the current environment.
func (m *Manager) Endpoint() string {
	return ResolveEndpoint(Resolution{
		Override:    m.endpointOverride,
		Hook:        m.endpointHook,
		Environment: m.environment(),
	})
}

// GetLicenseKey returns the persisted license key or "".
func (m *Manager) GetLicenseKey(ctx context.Context) string {
	var rec Record
	if !m.load(ctx, OptionLicense, &rec) {
		return ""
	}
	return rec.Key
}

// GetStatus returns the license status.
//
// Without a key on file it returns StatusNone. Otherwise a cached status
// younger than the TTL is returned unless forceCheck is set; a live check
// refreshes the cache. When the live check fails, the cached status is
// returned only while it is still within the TTL, otherwise StatusNone.
func (m *Manager) GetStatus(ctx context.Context, forceCheck bool) Status {
	key := m.GetLicenseKey(ctx)
	if key == "" {
		return StatusNone
	}

	var cached CachedStatus
	fresh := m.load(ctx, OptionStatus, &cached) && cached.Status != "" && cached.FreshAt(m.now(), m.cacheTTL)
	if !forceCheck && fresh {
		return cached.Status
	}

	status, err := m.check(ctx, key)
	if err != nil {
		m.logger.Warn().Err(err).Bool("fresh_cache", fresh).Msg("license check failed")
		if fresh {
			return cached.Status
		}
		return StatusNone
	}

	m.cacheStatus(ctx, status)
	return status
}

// IsValid reports whether GetStatus is exactly StatusValid.
func (m *Manager) IsValid(ctx context.Context) bool {
	return m.GetStatus(ctx, false) == StatusValid
}

// IsPremiumActive implements Gate.
func (m *Manager) IsPremiumActive(ctx context.Context) bool {
	return m.IsValid(ctx)
}

// Activate validates key with the control layer and persists it on success.
func (m *Manager) Activate(ctx context.Context, key string) Result {
	key = strings.TrimSpace(key)
	if key == "" {
		return Result{Message: msgKeyRequired, Err: ErrValidation}
	}

	if m.testMode {
		return m.activateTestKey(ctx, key)
	}

	resp, err := m.client.Do(ctx, m.Endpoint(), m.request(ActionActivate, key))
	if err != nil {
		var se *ServerError
		if errors.As(err, &se) {
			msg := se.Message
			if msg == "" {
				msg = msgServerError
			}
			return Result{Status: se.Status, Message: msg, Err: err}
		}
		m.logger.Warn().Err(err).Msg("license activation request failed")
		return Result{Message: msgConnection, Err: err}
	}

	if !resp.Success {
		msg := friendlyMessage(resp.Message)
		if msg == "" {
			msg = msgUnknown
		}
		return Result{Status: resp.Status, Message: msg, Err: &rejectedError{message: resp.Message}}
	}

	status := resp.Status
	if status == "" {
		status = StatusValid
	}
	if err := m.persist(ctx, key, status); err != nil {
		m.logger.Error().Err(err).Msg("persist license")
		return Result{Status: status, Message: msgSaveFailed, Err: err}
	}

	msg := resp.Message
	if msg == "" {
		msg = msgActivated
	}
	return Result{Success: true, Status: status, Message: msg}
}

// Deactivate notifies the control layer and always removes the local key and
// cached status, whatever the remote outcome.
func (m *Manager) Deactivate(ctx context.Context) Result {
	key := m.GetLicenseKey(ctx)
	if key == "" {
		return Result{Message: msgNoKey, Err: ErrValidation}
	}

	var remoteErr error
	if !m.testMode {
		_, remoteErr = m.client.Do(ctx, m.Endpoint(), m.request(ActionDeactivate, key))
	}

	if err := m.clear(ctx); err != nil {
		m.logger.Error().Err(err).Msg("clear license options")
	}

	if remoteErr != nil {
		m.logger.Warn().Err(remoteErr).Msg("license deactivation request failed")
		msg := msgDeactivatedRefused
		if errors.Is(remoteErr, ErrTransport) {
			msg = msgDeactivatedLocally
		}
		return Result{Success: true, Status: StatusNone, Message: msg, Err: remoteErr}
	}
	return Result{Success: true, Status: StatusNone, Message: msgDeactivated}
}

// Uninstall removes every option the license client created.
func (m *Manager) Uninstall(ctx context.Context) error {
	return m.clear(ctx)
}

func (m *Manager) check(ctx context.Context, key string) (Status, error) {
	if m.testMode {
		if key == TestLicenseKey {
			return StatusValid, nil
		}
		return StatusInvalid, nil
	}

	resp, err := m.client.Do(ctx, m.Endpoint(), m.request(ActionCheck, key))
	if err != nil {
		return "", err
	}
	switch resp.Status {
	case StatusError:
		return "", &TransportError{Op: "check license", Err: errors.New(resp.Message)}
	case "":
		if resp.Success {
			return StatusValid, nil
		}
		return StatusInvalid, nil
	}
	return resp.Status, nil
}

func (m *Manager) activateTestKey(ctx context.Context, key string) Result {
	if key != TestLicenseKey {
		return Result{Status: StatusInvalid, Message: msgTestInvalid, Err: &rejectedError{message: "invalid"}}
	}
	if err := m.persist(ctx, key, StatusValid); err != nil {
		return Result{Status: StatusValid, Message: msgSaveFailed, Err: err}
	}
	return Result{Success: true, Status: StatusValid, Message: msgTestActivated}
}

func (m *Manager) request(action Action, key string) Request {
	return Request{
		Action:     action,
		Plugin:     m.pluginID,
		LicenseKey: key,
		SiteURL:    m.siteURL,
	}
}

func (m *Manager) persist(ctx context.Context, key string, status Status) error {
	rec := Record{Key: key, Activated: m.now().Unix()}
	if err := m.save(ctx, OptionLicense, rec); err != nil {
		return err
	}
	m.cacheStatus(ctx, status)
	return nil
}

func (m *Manager) cacheStatus(ctx context.Context, status Status) {
	entry := CachedStatus{Status: status, Timestamp: m.now().Unix()}
	if err := m.save(ctx, OptionStatus, entry); err != nil {
		m.logger.Warn().Err(err).Msg("cache license status")
	}
}

func (m *Manager) clear(ctx context.Context) error {
	return multierr.Append(
		m.store.Delete(ctx, OptionLicense),
		m.store.Delete(ctx, OptionStatus),
	)
}

// load decodes the named option into dest. Missing, unreadable and corrupt
// options all report false.
func (m *Manager) load(ctx context.Context, name string, dest any) bool {
	raw, err := m.store.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, optionstore.ErrNotFound) {
			m.logger.Warn().Err(err).Str("option", name).Msg("read option")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		m.logger.Warn().Err(err).Str("option", name).Msg("decode option")
		return false
	}
	return true
}

func (m *Manager) save(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, name, raw)
}
