package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/config"
)

const setLongDesc string = `Store a default for "sedstart run" in config.toml.

The file lives in the .sedstart/ directory and is created when missing.
Ids must be non-negative integers and run.headless a boolean. An empty
value clears the key, and --unset does the same without a value.

Examples:
  sedstart config set run.suite_id 7
  sedstart config set --unset run.test_id
  sedstart config set api.base_url https://sedstart.example.com`

const setShortDesc string = "Store a configuration value"

func newSetCmd() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:          "set <key> <value>",
		SilenceUsage: true,
		Short:        setShortDesc,
		Long:         setLongDesc,
		Args: func(cmd *cobra.Command, args []string) error {
			if unset {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			value := ""
			if !unset {
				value = args[1]
			}
			return runSet(cmd, args[0], value, configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Clear the key instead of setting it")

	return cmd
}

func runSet(cmd *cobra.Command, key, value, configDir string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if value == "" {
		fmt.Fprintf(w, "  %s Cleared %s %s\n",
			cliui.SuccessMark,
			cliui.KeyStyle.Render(key),
			cliui.DimStyle.Render("in "+cfger.GetTarget()),
		)
		return nil
	}

	fmt.Fprintf(w, "  %s %s = %s %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
		cliui.DimStyle.Render("in "+cfger.GetTarget()),
	)
	return nil
}
