package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"legacss/config"
	"legacss/extract"
	"legacss/misc"
	"legacss/state"
	"legacss/unicodefix"
)

// errLogged is set when final error went to the log, otherwise main prints it
// to stderr.
var errLogged bool

// setup runs after command line is parsed and before any command.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// help will be shown, nothing to prepare
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	cfgPath := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(cfgPath); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(cfgPath) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(cfgPath), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()),
	)
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()), zap.String("id", env.Rpt.ID()))
	}
	if len(cfgPath) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

// teardown runs after command, even when it failed.
func teardown(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	// logs are synced and may go to the report, from here on errors could
	// only be printed
	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}

	if env.Cfg == nil || len(env.Cfg.Logging.FileLogger.Destination) == 0 {
		return err
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	panicLog := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
	if fi, er := os.Stat(panicLog); er == nil && fi.Size() == 0 {
		if er := os.Remove(panicLog); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", panicLog, er))
		}
	}
	return err
}

// logExitError is called before teardown, so error could still be logged.
// Commands return regular errors, cli.Exit is not used.
func logExitError(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errLogged = true
	}
}

func usageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func unknownCommand(ctx context.Context, _ *cli.Command, name string) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Warn("Unknown command, nothing to do", zap.String("command", name))
		return
	}
	fmt.Fprintf(os.Stderr, "Unknown command %q, nothing to do\n", name)
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:         "extract",
			Usage:        "Flattens cascade layers and rewrites stylesheet for older rendering engines",
			OnUsageError: usageError,
			Action:       extract.Run,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "containers", Usage: "write container query rules to `FILE` instead of derived name"},
				&cli.BoolFlag{Name: "no-colors", Usage: "do not produce static fallbacks for oklab/oklch colors and gradients"},
			},
			ArgsUsage: "[SOURCE [DESTINATION]]",
			CustomHelpTemplate: cli.CommandHelpTemplate + `
SOURCE:
    stylesheet with cascade layers, if absent - taken from configuration

DESTINATION:
    resulting base stylesheet, if absent - taken from configuration

    Container queries are converted to media queries and written next to
    DESTINATION, file name is derived from it unless --containers is used.
    Stylesheet failing validation is saved with "invalid" suffix instead.
`,
		},
		{
			Name:         "escape-unicode",
			Usage:        "Escapes zero width joiners in script files",
			OnUsageError: usageError,
			Action:       unicodefix.Run,
			ArgsUsage:    "[DIR]",
			CustomHelpTemplate: cli.CommandHelpTemplate + `
DIR:
    directory with files to change in place, subdirectories are not visited
    if absent - taken from configuration
`,
		},
		{
			Name:  "dumpconfig",
			Usage: "Dumps either default or actual configuration (YAML)",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
			},
			OnUsageError: usageError,
			Action:       dumpConfig,
			ArgsUsage:    "[DESTINATION]",
			CustomHelpTemplate: cli.CommandHelpTemplate + `
DESTINATION:
    file name to write configuration to, if absent - STDOUT

Actual configuration is embedded defaults with configuration file values
applied on top, use --default to see defaults only.
`,
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "produces legacy browser compatible stylesheets from layered CSS",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          setup,
		After:           teardown,
		OnUsageError:    usageError,
		ExitErrHandler:  logExitError,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: commands(),
	}

	var err error
	// os.Exit skips deferred calls, this must stay the only deferred function
	defer func() {
		stop()
		if err != nil {
			if !errLogged {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
