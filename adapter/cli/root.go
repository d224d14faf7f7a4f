package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	internalApp "github.com/felixgeelhaar/cadence/internal/app"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/spf13/cobra"
)

// skipAppAnnotation marks commands that run without a database.
const skipAppAnnotation = "cadence/skip-app"

var (
	cfgFile  string
	logLevel string
	logger   *slog.Logger

	// container is set when the root command opened the database itself.
	container *internalApp.Container
)

type commandTimerKey struct{}

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence - a personal habit tracker",
	Long: `Cadence tracks daily and weekly habits.

Record completions as you go and ask which habits hold the longest
unbroken streak and which are overdue for their periodicity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = observability.WithCorrelationID(ctx, "")
		ctx = observability.WithOperation(ctx, cmd.CommandPath())

		if needsApp(cmd) && GetApp() == nil {
			if err := bootstrap(ctx); err != nil {
				return err
			}
		}
		if logger == nil {
			logger = slog.Default()
		}

		var metrics observability.Metrics = observability.NoopMetrics{}
		if app := GetApp(); app != nil && app.Metrics != nil {
			metrics = app.Metrics
		}
		timer := observability.StartTimer(metrics, observability.MetricCommandDuration,
			observability.T("command", cmd.Name()))
		ctx = context.WithValue(ctx, commandTimerKey{}, timer)
		cmd.SetContext(ctx)

		logger.InfoContext(ctx, "command start", "command", cmd.CommandPath())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		timer, ok := ctx.Value(commandTimerKey{}).(*observability.Timer)
		if !ok {
			return
		}
		elapsed := timer.Stop()
		logger.InfoContext(ctx, "command end",
			"command", cmd.CommandPath(),
			observability.DurationKey, elapsed.Milliseconds(),
		)
	},
}

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := Close(); closeErr != nil && logger != nil {
		logger.Warn("failed to close resources", "error", closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// AddCommand adds commands to the root command in listing order.
func AddCommand(cmds ...*cobra.Command) {
	rootCmd.AddCommand(cmds...)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Close releases the container opened by the root command.
func Close() error {
	if container == nil {
		return nil
	}
	err := container.Close()
	container = nil
	SetApp(nil)
	return err
}

// LoadConfig reads configuration honouring the --config and --log-level flags.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	return cfg, nil
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level, err := observability.ParseLogLevel(cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}
	logCfg := observability.DefaultLogConfig()
	logCfg.Level = level
	logCfg.Format = observability.ParseLogFormat(cfg.App.LogFormat)
	logCfg.Output = out
	logCfg.ServiceVersion = Version
	return observability.NewLogger(logCfg), nil
}

func bootstrap(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	l, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	logger = l

	c, err := internalApp.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	container = c
	SetApp(NewApp(c))
	return nil
}

func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipAppAnnotation]; ok {
			return false
		}
	}
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return !strings.HasPrefix(cmd.CommandPath(), "cadence completion")
}

// SkipApp marks cmd and its children as runnable without a database.
func SkipApp(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[skipAppAnnotation] = "true"
	return cmd
}

// RequireApp returns the application or an error when it is not wired.
func RequireApp() (*App, error) {
	app := GetApp()
	if app == nil {
		return nil, errors.New("habit tracking requires a database connection")
	}
	return app, nil
}
