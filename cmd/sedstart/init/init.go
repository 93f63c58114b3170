// Package initcmder provides the init command for initializing a local
// .sedstart directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/config"
)

const (
	dirName = ".sedstart"

	fetchTimeout = 30 * time.Second
)

const initLongDesc string = `Initialize a new .sedstart/ directory in the current working directory.

Creates a local .sedstart/ directory holding config.toml. It takes precedence
over the default ~/.sedstart/ directory, which is useful for keeping run
defaults per repository.

Without --preset a default config.toml is written unless one already exists.
A preset always overwrites config.toml. It is either an environment name
(prod, qa) or an http(s) URL serving a config.toml.

Examples:
  sedstart init
  sedstart init --preset qa
  sedstart init --preset https://example.com/sedstart/config.toml`

const initShortDesc string = "Initialize a local .sedstart/ directory"

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		"Environment preset ("+strings.Join(config.ValidPresetNames(), ", ")+") or URL of a config.toml")

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .sedstart directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfgPath := cfger.GetTarget()
	_, statErr := os.Stat(cfgPath)
	exists := statErr == nil

	if c.preset == "" && exists {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	cfg, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("  %s Initialized .sedstart directory: %s\n", cliui.SuccessMark, dir)
	if c.preset != "" {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("preset: "+c.preset))
	}
	return nil
}

// resolve returns the config to write for the chosen preset.
func (c *initCommander) resolve(ctx context.Context) (*config.Config, error) {
	preset := strings.TrimSpace(c.preset)

	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil

	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchRemoteConfig(ctx, preset)

	default:
		return config.PresetConfig(preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
