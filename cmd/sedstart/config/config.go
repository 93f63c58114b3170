// Package configcmder provides the config command for managing persistent
// sedstart configuration stored in the .sedstart/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent sedstart configuration.

Configuration is stored as config.toml in the .sedstart/ directory and
provides default values for "sedstart run". Flags, action inputs
(INPUT_<NAME>) and SEDSTART_<NAME> environment variables always take
precedence over config file values. The API key is never stored here, see
"sedstart auth".

Keys use dotted notation matching the TOML section structure:
  api.environment, api.base_url, api.auth_scheme,
  run.project_id, run.profile_id, run.test_id, run.suite_id,
  run.browser, run.headless,
  output.transcript, output.log_file

Use subcommands to get, set, or list configuration values:
  sedstart config set <key> <value>    Set a configuration value
  sedstart config get <key>            Get a configuration value
  sedstart config list                 List all configuration values

Examples:
  sedstart config set run.project_id 42
  sedstart config set api.environment qa
  sedstart config get run.browser
  sedstart config list`

const configShortDesc string = "Manage persistent sedstart configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
