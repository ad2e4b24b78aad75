// Package cli implements the dlm command line: site-side license management
// against a configured option store.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense"
	"github.com/CloudNativeWorks/datalayer-license/dlmlicense/optionstore"
	"github.com/CloudNativeWorks/datalayer-license/internal/config"
	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
)

// Context carries everything a subcommand needs.
type Context struct {
	context.Context

	Command *cobra.Command
	Config  *config.Config
	Logger  *logger.Logger
	Manager *dlmlicense.Manager
	Site    string

	stores *scopedStore
}

// NewContext loads configuration and opens the store for cmd.
func NewContext(cmd *cobra.Command) (*Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}

	logg := logger.New(logger.Options{
		ServiceName: "dlm",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      cmd.ErrOrStderr(),
	})

	site, err := siteScope(cfg.Client)
	if err != nil {
		return nil, err
	}

	stores, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	return &Context{
		Context: ctx,
		Command: cmd,
		Config:  cfg,
		Logger:  logg,
		Manager: newManager(cfg.Client, stores.forSite(site), logg),
		Site:    site,
		stores:  stores,
	}, nil
}

// ForSite returns a Manager persisting into another site's scope.
func (c *Context) ForSite(site string) *dlmlicense.Manager {
	return newManager(c.Config.Client, c.stores.forSite(site), c.Logger)
}

// Close releases the store.
func (c *Context) Close() error {
	return c.stores.close(c)
}

func newManager(cc config.ClientConfig, store optionstore.Store, logg *logger.Logger) *dlmlicense.Manager {
	env := cc.Environment()
	return dlmlicense.NewManager(store,
		dlmlicense.WithClient(dlmlicense.NewClient(dlmlicense.WithTimeout(cc.Timeout))),
		dlmlicense.WithPluginID(cc.PluginID),
		dlmlicense.WithSiteURL(cc.SiteURL),
		dlmlicense.WithTestMode(cc.TestMode),
		dlmlicense.WithEndpointOverride(cc.Endpoint),
		dlmlicense.WithEnvironment(func() dlmlicense.Environment { return env }),
		dlmlicense.WithLogger(logg.Zerolog()),
	)
}

// siteScope picks the option store scope: an explicit site id, else one
// derived from the site URL, else the default scope.
func siteScope(cc config.ClientConfig) (string, error) {
	if id := strings.TrimSpace(cc.SiteID); id != "" {
		return id, nil
	}
	if strings.TrimSpace(cc.SiteURL) == "" {
		return optionstore.DefaultSite, nil
	}
	id, err := dlmlicense.SiteID(cc.SiteURL)
	if err != nil {
		return "", fmt.Errorf("derive site id: %w", err)
	}
	return id, nil
}

// NewCommand wires run into cmd with a Context that is closed afterwards.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, run func(ctx *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)
	cmd.SilenceUsage = true
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		ctx, err := NewContext(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, ctx.Close())
		}()
		return run(ctx, args)
	}
	return cmd
}
