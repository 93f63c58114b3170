// Package runcmder provides the run command, which triggers a SedStart CI run
// and follows its event stream to a pass or fail result.
package runcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/sedstart-action/pkg/actions"
	"github.com/papercomputeco/sedstart-action/pkg/cliui"
	"github.com/papercomputeco/sedstart-action/pkg/config"
	"github.com/papercomputeco/sedstart-action/pkg/credentials"
	"github.com/papercomputeco/sedstart-action/pkg/git"
	"github.com/papercomputeco/sedstart-action/pkg/logger"
	"github.com/papercomputeco/sedstart-action/pkg/runner"
	"github.com/papercomputeco/sedstart-action/pkg/sedstart"
	"github.com/papercomputeco/sedstart-action/pkg/utils"
)

const runLongDesc string = `Trigger a SedStart CI run and stream its progress.

Sends one run request for a test or a suite, prints every event the server
streams back, and exits 0 when the last reported status is PASS or SUCCESS.
Any other final status, an HTTP error or a broken stream exits 1.

Every setting resolves in this order:
  1. flags (--project-id, ...)
  2. action inputs (INPUT_PROJECT_ID, ...)
  3. environment variables (SEDSTART_PROJECT_ID, ...)
  4. config.toml in the .sedstart/ directory
  5. defaults

The API key falls back to the key stored with "sedstart auth" for the selected
environment.

Inside GitHub Actions the final status is published as the "result" output,
a run summary is added to the job summary and the API key is masked.

Examples:
  sedstart run --project-id 12 --profile-id 3 --test-id 45 --browser chrome
  sedstart run -p 12 --profile-id 3 -s 7 -b firefox --headless -e qa
  INPUT_API_KEY=... INPUT_PROJECT_ID=12 ... sedstart run`

const runShortDesc string = "Trigger a SedStart CI run"

const userAgentPrefix = "sedstart-action/"

var runFlags = []string{
	config.FlagAPIKey,
	config.FlagProjectID,
	config.FlagProfileID,
	config.FlagTestID,
	config.FlagSuiteID,
	config.FlagBrowser,
	config.FlagHeadless,
	config.FlagEnvironment,
	config.FlagBaseURL,
	config.FlagAuthScheme,
	config.FlagTranscript,
	config.FlagLogFile,
}

type runCommander struct {
	flags struct {
		apiKey      string
		projectID   string
		profileID   string
		testID      string
		suiteID     string
		browser     string
		headless    bool
		environment string
		baseURL     string
		authScheme  string
		transcript  string
		logFile     string
	}

	debug     bool
	configDir string

	viper  *viper.Viper
	logger *slog.Logger
	gha    *actions.Runner
	out    io.Writer
	errOut io.Writer
	getenv func(string) string
}

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:          "run",
		Short:        runShortDesc,
		Long:         runLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			var err error
			cmder.viper, err = config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("%w: %w", runner.ErrConfig, err)
			}
			config.BindRegisteredFlags(cmder.viper, cmd, config.RunFlags, runFlags)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	f := &cmder.flags
	config.AddStringFlag(cmd, config.RunFlags, config.FlagAPIKey, &f.apiKey)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagProjectID, &f.projectID)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagProfileID, &f.profileID)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagTestID, &f.testID)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagSuiteID, &f.suiteID)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagBrowser, &f.browser)
	config.AddBoolFlag(cmd, config.RunFlags, config.FlagHeadless, &f.headless)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagEnvironment, &f.environment)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagBaseURL, &f.baseURL)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagAuthScheme, &f.authScheme)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagTranscript, &f.transcript)
	config.AddStringFlag(cmd, config.RunFlags, config.FlagLogFile, &f.logFile)

	return cmd
}

func (c *runCommander) run(ctx context.Context) error {
	c.gha = actions.New(actions.WithGetenv(c.getenv), actions.WithWriter(c.out))

	err := c.execute(ctx)
	if err != nil {
		c.gha.Error(errorTitle(err), err.Error())
	}
	return err
}

func (c *runCommander) execute(ctx context.Context) error {
	c.logger = c.newLogger()

	in, err := config.LoadInputs(c.viper)
	if err != nil {
		return fmt.Errorf("%w: %w", runner.ErrConfig, err)
	}

	if in.LogFile != "" {
		f, err := os.Create(in.LogFile)
		if err != nil {
			return fmt.Errorf("%w: creating log file: %w", runner.ErrConfig, err)
		}
		defer f.Close()
		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithJSON(true),
			logger.WithDebug(true),
			logger.WithSource(true),
			logger.WithWriter(f),
		))
	}

	apiKey, err := c.resolveAPIKey(in)
	if err != nil {
		return err
	}
	c.gha.Mask(apiKey)

	client, err := c.newClient(in, apiKey)
	if err != nil {
		return err
	}

	req := &sedstart.RunRequest{
		ProjectID: in.ProjectID,
		ProfileID: in.ProfileID,
		TestID:    in.TestID,
		SuiteID:   in.SuiteID,
		Browser:   in.Browser,
		Headless:  in.Headless,
	}

	opts := []runner.Option{
		runner.WithLogger(c.logger),
		runner.WithOutput(c.out),
	}

	if in.Transcript != "" {
		f, err := os.Create(in.Transcript)
		if err != nil {
			return fmt.Errorf("%w: creating transcript: %w", runner.ErrConfig, err)
		}
		defer f.Close()
		opts = append(opts, runner.WithTranscript(f))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.logger.Info("starting run",
		"target", req.Target(),
		"project_id", req.ProjectID,
		"browser", req.Browser,
		"headless", req.Headless,
	)

	endGroup := c.gha.Group("SedStart " + req.Target())
	outcome, runErr := runner.New(client, opts...).Run(ctx, req)
	endGroup()

	if outcome != nil {
		c.logger.Debug("run finished",
			"status", outcome.FinalStatus,
			"events", outcome.Events,
			"malformed", outcome.Malformed,
			"request_id", outcome.RequestID,
			"duration", outcome.Duration,
		)
		outcome.Repository = git.Repository(c.getenv)
		c.publishSummary(outcome)
	}

	if runErr != nil {
		return runErr
	}

	c.gha.SetResult(outcome.FinalStatus)
	fmt.Fprintf(c.out, "\n  %s Test finished with status: %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(outcome.FinalStatus),
		cliui.DimStyle.Render("("+cliui.FormatDuration(outcome.Duration)+")"),
	)

	return nil
}

func (c *runCommander) newLogger() *slog.Logger {
	debug := c.debug || c.getenv("RUNNER_DEBUG") == "1"

	profile := cliui.ColorProfile(c.getenv, false)
	if f, ok := c.errOut.(*os.File); ok {
		profile = cliui.ConfigureColor(f)
	}

	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithColorProfile(profile),
		logger.WithWriter(c.errOut),
	)
}

// resolveAPIKey falls back to the credentials store when no input carries
// the key.
func (c *runCommander) resolveAPIKey(in *config.Inputs) (string, error) {
	if in.APIKey != "" {
		return in.APIKey, nil
	}

	key, err := credentials.FindKey(c.configDir, in.Environment)
	if err != nil {
		c.logger.Debug("could not read stored credentials", "error", err)
	}
	if key == "" {
		return "", fmt.Errorf("%w: api_key is required", runner.ErrConfig)
	}

	c.logger.Debug("using stored API key", "environment", credentials.NormalizeEnvironment(in.Environment))
	return key, nil
}

func (c *runCommander) newClient(in *config.Inputs, apiKey string) (*sedstart.Client, error) {
	scheme, err := sedstart.ParseAuthScheme(in.AuthScheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runner.ErrConfig, err)
	}

	baseURL := in.BaseURL
	if baseURL == "" {
		baseURL = sedstart.BaseURLFor(in.Environment)
	}

	client, err := sedstart.NewClient(&sedstart.Config{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		AuthScheme: scheme,
		UserAgent:  userAgentPrefix + utils.Version,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runner.ErrConfig, err)
	}

	return client, nil
}

// publishSummary adds the outcome to the job summary, or prints it when
// running outside of Actions.
func (c *runCommander) publishSummary(outcome *runner.Outcome) {
	md := outcome.Markdown()
	if c.gha.AddSummary(md) || c.gha.InActions() {
		return
	}

	rendered, err := cliui.RenderMarkdown(md)
	if err != nil {
		c.logger.Debug("could not render summary", "error", err)
	}
	fmt.Fprint(c.out, rendered)
}

func errorTitle(err error) string {
	var httpErr *sedstart.HTTPError
	switch {
	case errors.Is(err, runner.ErrConfig):
		return "SedStart configuration error"
	case errors.As(err, &httpErr):
		return "SedStart request rejected"
	case errors.Is(err, runner.ErrStream):
		return "SedStart stream error"
	case errors.Is(err, runner.ErrTestFailed):
		return "SedStart test failed"
	default:
		return "SedStart run failed"
	}
}
