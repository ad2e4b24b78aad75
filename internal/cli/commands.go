package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/CloudNativeWorks/datalayer-license/datalayer"
)

// Status creates the command that prints the site's license state.
func Status() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "status [flags]",
			Short: "Show the license status for this site",
			Long: `Show the stored license key and its status.

The cached status is used while it is fresh. Use --force to ask the
license server again.

Examples:
  dlm status
  dlm status --force
`,
			Args: cobra.NoArgs,
		},
		[]commandLineFlag{forceFlag},
		runStatus,
	)
}

func runStatus(ctx *Context, _ []string) error {
	force, _ := ctx.Command.Flags().GetBool("force")
	out := ctx.Command.OutOrStdout()

	key := ctx.Manager.GetLicenseKey(ctx)
	status := ctx.Manager.GetStatus(ctx, force)

	premium := "inactive"
	if ctx.Manager.IsPremiumActive(ctx) {
		premium = "active"
	}

	fmt.Fprintf(out, "Site:        %s\n", ctx.Site)
	fmt.Fprintf(out, "License key: %s\n", maskKey(key))
	fmt.Fprintf(out, "Status:      %s\n", status)
	fmt.Fprintf(out, "Premium:     %s\n", premium)
	return nil
}

// Activate creates the command that activates a license key.
func Activate() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "activate <license key>",
			Short: "Activate a license key for this site",
			Args:  cobra.ExactArgs(1),
		},
		nil,
		runActivate,
	)
}

func runActivate(ctx *Context, args []string) error {
	res := ctx.Manager.Activate(ctx, args[0])
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintln(ctx.Command.OutOrStdout(), res.Message)
	return nil
}

// Deactivate creates the command that removes the site's license.
func Deactivate() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "deactivate",
			Short: "Deactivate the license for this site",
			Long: `Deactivate the license for this site.

Local license data is always removed, even when the license server cannot
be reached.
`,
			Args: cobra.NoArgs,
		},
		nil,
		runDeactivate,
	)
}

func runDeactivate(ctx *Context, _ []string) error {
	res := ctx.Manager.Deactivate(ctx)
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintln(ctx.Command.OutOrStdout(), res.Message)
	return nil
}

// Uninstall creates the command that deletes all license options.
func Uninstall() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "uninstall [flags]",
			Short: "Delete stored license data",
			Long: `Delete the license key and cached status without contacting the
license server.

Examples:
  dlm uninstall
  dlm uninstall --site 3f2a9c0d1e4b5a6c --site default
`,
			Args: cobra.NoArgs,
		},
		[]commandLineFlag{siteFlag},
		runUninstall,
	)
}

func runUninstall(ctx *Context, _ []string) error {
	extra, _ := ctx.Command.Flags().GetStringSlice("site")

	sites := []string{ctx.Site}
	seen := map[string]bool{ctx.Site: true}
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		sites = append(sites, s)
	}

	var err error
	for _, site := range sites {
		if uerr := ctx.ForSite(site).Uninstall(ctx); uerr != nil {
			err = multierr.Append(err, fmt.Errorf("site %s: %w", site, uerr))
			continue
		}
		fmt.Fprintf(ctx.Command.OutOrStdout(), "Removed license data for site %s\n", site)
	}
	return err
}

// Render creates the command that prints the dataLayer script for a page.
func Render() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "render [flags]",
			Short: "Render the dataLayer script for a page",
			Long: `Render the dataLayer script for a page from JSON variable files.

Custom variables are included only while the license is valid.

Examples:
  dlm render --vars page.json
  dlm render --vars page.json --custom custom.json --debug
`,
			Args: cobra.NoArgs,
		},
		[]commandLineFlag{varsFlag, customFlag, debugFlag},
		runRender,
	)
}

func runRender(ctx *Context, _ []string) error {
	varsPath, _ := ctx.Command.Flags().GetString("vars")
	customPath, _ := ctx.Command.Flags().GetString("custom")
	debug, _ := ctx.Command.Flags().GetBool("debug")

	automatic, err := readVariables(varsPath)
	if err != nil {
		return err
	}
	var custom datalayer.Variables
	if customPath != "" {
		if custom, err = readVariables(customPath); err != nil {
			return err
		}
	}

	inj := datalayer.NewInjector(ctx.Manager, datalayer.WithLogger(ctx.Logger.Zerolog()))
	script, err := inj.Render(ctx, automatic, custom, debug)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Command.OutOrStdout(), script)
	return nil
}

func readVariables(path string) (datalayer.Variables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variables: %w", err)
	}
	var v datalayer.Variables
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse variables %s: %w", path, err)
	}
	return v, nil
}

// maskKey hides all but the last four characters of a license key.
func maskKey(key string) string {
	if key == "" {
		return "(none)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
