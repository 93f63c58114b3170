package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/config"
)

const getLongDesc string = `Print one or more configuration values.

Values are read from config.toml in the .sedstart/ directory. With
--effective, action inputs and SEDSTART_<NAME> variables are applied on
top, showing what "sedstart run" would use.

Examples:
  sedstart config get run.project_id
  sedstart config get run.browser run.headless
  INPUT_BROWSER=edge sedstart config get --effective run.browser`

const getShortDesc string = "Print configuration values"

func newGetCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:          "get <key> [key...]",
		SilenceUsage: true,
		Short:        getShortDesc,
		Long:         getLongDesc,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runGet(cmd, args, configDir, effective)
		},
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Apply action inputs and SEDSTART_ variables")

	return cmd
}

func runGet(cmd *cobra.Command, keys []string, configDir string, effective bool) error {
	for _, key := range keys {
		if err := checkKey(key); err != nil {
			return err
		}
	}

	vals, err := loadValues(configDir, effective)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	vals.printHeader(w)

	for _, key := range keys {
		value, from, err := vals.get(key)
		if err != nil {
			return err
		}

		shown := cliui.ValueStyle.Render(value)
		if value == "" {
			shown = cliui.DimStyle.Render("<not set>")
		}
		if from != "" {
			shown += "  " + cliui.DimStyle.Render("(from "+from+")")
		}
		fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render(key), shown)
	}
	fmt.Fprintln(w)

	return nil
}
