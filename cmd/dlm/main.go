package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/CloudNativeWorks/datalayer-license/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "dlm",
	Short: "Manage the DataLayer Manager license for a site",
	Long: `Manage the DataLayer Manager license for a site.

Configuration is read from DLM_* environment variables and an optional
.env file in the working directory.
`,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cli.Status())
	rootCmd.AddCommand(cli.Activate())
	rootCmd.AddCommand(cli.Deactivate())
	rootCmd.AddCommand(cli.Uninstall())
	rootCmd.AddCommand(cli.Render())
}
