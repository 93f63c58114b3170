package configcmder

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/config"
)

// values holds the config a subcommand reads keys from. With effective set
// it is the config "sedstart run" would resolve, environment included.
type values struct {
	target    string
	cfg       *config.Config
	effective bool
	getenv    func(string) string
}

func loadValues(configDir string, effective bool) (*values, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	vals := &values{
		target:    cfger.GetTarget(),
		effective: effective,
		getenv:    os.Getenv,
	}

	if !effective {
		vals.cfg, err = cfger.LoadConfig()
		if err != nil {
			return nil, err
		}
		return vals, nil
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	vals.cfg, err = config.EffectiveConfig(v)
	if err != nil {
		return nil, err
	}

	return vals, nil
}

// get returns the value of key and, in effective mode, the environment
// variable it came from.
func (v *values) get(key string) (value, from string, err error) {
	value, err = config.ConfigValue(v.cfg, key)
	if err != nil {
		return "", "", err
	}

	if v.effective {
		for _, name := range config.EnvVarsFor(key) {
			if strings.TrimSpace(v.getenv(name)) != "" {
				from = name
				break
			}
		}
	}

	return value, from, nil
}

func (v *values) printHeader(w io.Writer) {
	if v.target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(v.target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}

func checkKey(key string) error {
	if config.IsValidConfigKey(key) {
		return nil
	}
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}
