// Package sedstartcmder
package sedstartcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/sedstart-action/cmd/sedstart/auth"
	configcmder "github.com/papercomputeco/sedstart-action/cmd/sedstart/config"
	initcmder "github.com/papercomputeco/sedstart-action/cmd/sedstart/init"
	runcmder "github.com/papercomputeco/sedstart-action/cmd/sedstart/run"
	versioncmder "github.com/papercomputeco/sedstart-action/cmd/version"
)

const sedstartLongDesc string = `sedstart triggers SedStart CI test runs and reports their result.

It runs as a GitHub Actions step, reading the action inputs, or locally with
flags, environment variables and a .sedstart/ directory:
  sedstart run               Trigger a run and follow its events
  sedstart init              Initialize a local .sedstart/ directory
  sedstart config            Manage run defaults in config.toml
  sedstart auth              Store API keys for local runs`

const sedstartShortDesc string = "sedstart - SedStart CI runs"

func NewSedstartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sedstart",
		Short: sedstartShortDesc,
		Long:  sedstartLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .sedstart/ config directory")

	// Add subcommands
	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
