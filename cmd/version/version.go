// Package versioncmder
package versioncmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/utils"
)

type VersionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI and the User-Agent it sends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version")

	return cmd
}

func (c *VersionCommander) run(w io.Writer) error {
	if c.short {
		fmt.Fprintln(w, utils.Version)
		return nil
	}

	rows := [][2]string{
		{"Version:", utils.Version},
		{"Sha:", utils.Sha},
		{"Built at:", utils.Buildtime},
		{"User-Agent:", "sedstart-action/" + utils.Version},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render(row[0]), row[1])
	}
	return nil
}
