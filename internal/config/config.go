package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Products ProductsConfig
	Client   ClientConfig
	Store    StoreConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DLM_APP_ENV" default:"production"`
	Port         string `envconfig:"DLM_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DLM_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"DLM_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"DLM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

// UpstreamConfig points the control layer at the licensing provider.
type UpstreamConfig struct {
	APIKey  string        `envconfig:"DLM_UPSTREAM_API_KEY"`
	URL     string        `envconfig:"DLM_UPSTREAM_URL" default:"https://api.lemonsqueezy.com/v1/licenses/"`
	Timeout time.Duration `envconfig:"DLM_UPSTREAM_TIMEOUT" default:"15s"`
}

// Validate is called by the control layer only; the CLI never talks upstream.
func (u UpstreamConfig) Validate() error {
	if strings.TrimSpace(u.APIKey) == "" {
		return fmt.Errorf("%s is required", EnvUpstreamAPIKey)
	}
	if strings.TrimSpace(u.URL) == "" {
		return fmt.Errorf("%s is required", EnvUpstreamURL)
	}
	return nil
}

// ProductsConfig maps plugin ids to upstream variant ids, encoded as
// "plugin:variant,plugin2:variant2".
type ProductsConfig struct {
	Map map[string]string `envconfig:"DLM_PRODUCT_MAP" default:"datalayer-manager:"`
}

type ClientConfig struct {
	Endpoint        string        `envconfig:"DLM_LICENSE_ENDPOINT"`
	SiteURL         string        `envconfig:"DLM_SITE_URL"`
	SiteID          string        `envconfig:"DLM_SITE_ID"`
	PluginID        string        `envconfig:"DLM_PLUGIN_ID" default:"datalayer-manager"`
	TestMode        bool          `envconfig:"DLM_TEST_MODE" default:"false"`
	LocalMode       *bool         `envconfig:"DLM_LOCAL_MODE"`
	EnvironmentType string        `envconfig:"DLM_ENVIRONMENT_TYPE"`
	Debug           bool          `envconfig:"DLM_DEBUG" default:"false"`
	Hostname        string        `envconfig:"DLM_HOSTNAME"`
	Timeout         time.Duration `envconfig:"DLM_CLIENT_TIMEOUT" default:"15s"`
}

// Environment returns the detection input for endpoint resolution. The
// hostname defaults to the host of the site URL.
func (c ClientConfig) Environment() dlmlicense.Environment {
	host := c.Hostname
	if host == "" {
		host = dlmlicense.SiteHostname(c.SiteURL)
	}
	return dlmlicense.Environment{
		Hostname:        host,
		LocalMode:       c.LocalMode,
		EnvironmentType: c.EnvironmentType,
		Debug:           c.Debug,
	}
}

// StoreConfig selects the option store backend.
type StoreConfig struct {
	Driver   string `envconfig:"DLM_STORE_DRIVER" default:"postgres"`
	DSN      string `envconfig:"DLM_STORE_DSN"`
	Database string `envconfig:"DLM_STORE_DATABASE" default:"datalayer_manager"`
	Table    string `envconfig:"DLM_STORE_TABLE" default:"dlm_options"`
}

// Validate normalizes the driver name and checks the DSN. Only the CLI needs
// a store.
func (s *StoreConfig) Validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case StoreDriverMemory:
		return nil
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverRedis:
		if strings.TrimSpace(s.DSN) == "" {
			return fmt.Errorf("%s is required for store driver %q", EnvStoreDSN, s.Driver)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreDriver, s.Driver)
	}
}
