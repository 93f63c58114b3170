package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/config"
)

const listLongDesc string = `List every configuration key with its value and action input.

With --effective the values are the ones "sedstart run" would resolve,
and keys overridden by the environment name the variable.

Examples:
  sedstart config list
  sedstart config list --effective`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:          "list",
		SilenceUsage: true,
		Short:        listShortDesc,
		Long:         listLongDesc,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(cmd, configDir, effective)
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Apply action inputs and SEDSTART_ variables")

	return cmd
}

func runList(cmd *cobra.Command, configDir string, effective bool) error {
	vals, err := loadValues(configDir, effective)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	vals.printHeader(w)

	keys := config.ValidConfigKeys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	for _, key := range keys {
		value, from, err := vals.get(key)
		if err != nil {
			return err
		}

		shown := fmt.Sprintf("%q", value)
		if value == "" {
			shown = "<not set>"
		}

		note := "input " + config.InputFor(key)
		if from != "" {
			note = "from " + from
		}
		fmt.Fprintf(w, "  %-*s = %s  %s\n", width, key, shown, cliui.DimStyle.Render("("+note+")"))
	}
	fmt.Fprintln(w)

	return nil
}
