package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/deixis/idleguard/internal/action"
	"github.com/deixis/idleguard/internal/config"
	"github.com/deixis/idleguard/internal/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// workspaceEnv names the checkout directory on hosted runners.
const workspaceEnv = "GITHUB_WORKSPACE"

func newRunCmd() *cobra.Command {
	flags := action.MapInputs{}
	var run, shellName, timeout, dir string

	cmd := &cobra.Command{
		Use:   "run [command]",
		Short: "Run a command under the idle-output watchdog",
		Long: `Run a command under the idle-output watchdog.

Inputs come from flags, a positional command, or INPUT_<NAME> environment
variables, in that order. Outputs are written to $GITHUB_OUTPUT when set and
as ::set-output commands otherwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if run == "" && len(args) == 1 {
				run = args[0]
			}
			flags[action.InputRun] = run
			flags[action.InputShell] = shellName
			flags[action.InputNoOutputTimeout] = timeout
			flags[action.InputWorkingDirectory] = dir

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runMain(ctx, action.Overlay{flags, action.EnvInputs{}}, action.NewCommandReporter())
		},
	}
	cmd.Flags().StringVar(&run, action.InputRun, "", "command text to execute")
	cmd.Flags().StringVar(&shellName, "shell", "", "shell to run the command with (default from config, else bash)")
	cmd.Flags().StringVar(&timeout, "no-output-timeout", "", "idle timeout: milliseconds or a duration such as 30s; 0 disables")
	cmd.Flags().StringVar(&dir, "working-directory", "", "directory to run in, relative to the workspace")
	return cmd
}

func runMain(ctx context.Context, in action.Inputs, rep *action.CommandReporter) error {
	eng, err := newEngine(rep.Passthrough())
	if err != nil {
		rep.SetFailed(err.Error())
		return fmt.Errorf("%w: %w", errReported, err)
	}

	res, err := eng.Invoke(ctx, in, rep)
	if rep.Failed() {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	log.Debug().Str("run_id", res.RunID).Dur("duration", res.Duration).Msg("run succeeded")
	return nil
}

func workspaceDir() (string, error) {
	if ws := os.Getenv(workspaceEnv); ws != "" {
		return ws, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining workspace: %w", err)
	}
	return wd, nil
}

func loadConfig(workspace string) (*config.Config, error) {
	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if loaded.Path != "" {
		log.Debug().Str("path", loaded.Path).Msg("config loaded")
	}
	return loaded.Config, nil
}

func newEngine(stdout io.Writer) (*action.Engine, error) {
	workspace, err := workspaceDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(workspace)
	if err != nil {
		return nil, err
	}

	return &action.Engine{
		Config: cfg,
		Runner: &runner.Runner{
			Workspace: workspace,
			MaxOutput: cfg.MaxOutputBytes(),
			WaitDelay: cfg.WaitDelay(),
			Stdout:    stdout,
		},
	}, nil
}
