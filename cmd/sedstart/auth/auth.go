// Package authcmder provides the auth command for storing SedStart API keys
// used by local runs.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/credentials"
)

const authLongDesc string = `Store SedStart API keys for local runs.

Keys are stored per environment in credentials.toml in the .sedstart/
directory with 0600 permissions. "sedstart run" falls back to the stored key
for the selected environment when neither --api-key, INPUT_API_KEY nor
SEDSTART_API_KEY is set. Inside GitHub Actions pass the key as a secret
input instead.

Supported environments: prod, qa (default prod)

Examples:
  sedstart auth                  Prompt for the prod API key
  sedstart auth qa               Prompt for the qa API key
  sedstart auth --list           List stored credentials
  sedstart auth --remove qa      Remove the stored qa key
  echo $KEY | sedstart auth      Pipe the API key from stdin`

const authShortDesc string = "Store SedStart API keys for local runs"

type authCommander struct {
	configDir string
	in        io.Reader
	out       io.Writer
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [environment]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()

			switch {
			case listFlag:
				return cmder.list()
			case removeFlag != "":
				return cmder.remove(removeFlag)
			default:
				environment := credentials.EnvironmentProd
				if len(args) == 1 {
					environment = args[0]
				}
				return cmder.store(environment)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedEnvironments(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for an environment")

	return cmd
}

func (c *authCommander) store(environment string) error {
	environment, err := checkEnvironment(environment)
	if err != nil {
		return err
	}

	apiKey, err := c.readAPIKey(environment)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(environment, apiKey); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Stored %s API key %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(environment),
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)

	return nil
}

// list prints every supported environment, marking the ones with a stored key.
func (c *authCommander) list() error {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	stored, err := mgr.ListEnvironments()
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render("Credentials"),
		cliui.DimStyle.Render(mgr.GetTarget()),
	)

	for _, env := range credentials.SupportedEnvironments() {
		var missing error
		if !slices.Contains(stored, env) {
			missing = errNotStored
		}

		line := "  " + cliui.Mark(missing) + "  " + cliui.NameStyle.Render(env)
		if missing != nil {
			line += "  " + cliui.DimStyle.Render("not stored, run 'sedstart auth "+env+"'")
		}
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out)

	return nil
}

func (c *authCommander) remove(environment string) error {
	environment, err := checkEnvironment(environment)
	if err != nil {
		return err
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(environment); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(environment))

	return nil
}

var errNotStored = errors.New("not stored")

func checkEnvironment(environment string) (string, error) {
	environment = strings.ToLower(strings.TrimSpace(environment))
	if !credentials.IsSupportedEnvironment(environment) {
		return "", fmt.Errorf("unsupported environment: %q\n\nSupported environments: %s",
			environment, strings.Join(credentials.SupportedEnvironments(), ", "))
	}
	return environment, nil
}

// readAPIKey reads an API key from the command input. A terminal gets a
// hidden prompt; anything else, such as a pipe, is read up to the first
// newline.
func (c *authCommander) readAPIKey(environment string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.out, "Enter SedStart API key for %s: ", environment)

		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}

		return string(keyBytes), nil
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
