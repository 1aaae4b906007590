// Package main implements the logkit CLI for emitting records through a
// configured pipeline and running it as a long-lived, reloadable process.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/logkit/internal/config"
	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

var (
	// version information
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "logkit",
		Short: "Structured JSON logging pipeline",
		Long: `logkit writes structured JSON records to the console and to hourly
log files named YYYY_M_D_H.log.

Configuration is read from a YAML or TOML file (--config) and LOGKIT_*
environment variables.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to logkit.yaml or logkit.toml")

	rootCmd.AddCommand(newEmitCmd(&configPath))
	rootCmd.AddCommand(newPathCmd(&configPath))
	rootCmd.AddCommand(newWatchCmd(&configPath))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "logkit by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}

// newDiagLogger builds logkit's own operational logger. It writes to w and
// never goes through the pipeline it reports on.
func newDiagLogger(cfg config.DiagnosticsConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid diagnostics level: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" {
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core).With(zap.String("component", "logkit")), nil
}

// pipeline bundles a configured manager with its diagnostics and metrics.
type pipeline struct {
	cfg      *config.Config
	manager  *logging.Manager
	diag     *zap.Logger
	registry *prometheus.Registry
}

// newPipeline loads configuration and builds a manager with it active.
// Console output goes to the command's streams; diagnostics go to stderr.
func newPipeline(cmd *cobra.Command, configPath string) (*pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	diag, err := newDiagLogger(cfg.Diagnostics, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("failed to build options: %w", err)
	}

	reg := prometheus.NewRegistry()
	mgr := logging.NewManager(
		logging.WithStdout(cmd.OutOrStdout()),
		logging.WithStderr(cmd.ErrOrStderr()),
		logging.WithDiagnostics(diag),
		logging.WithMetrics(logging.NewMetrics(reg)),
		logging.WithQueueSize(cfg.Writer.QueueSize),
	)
	mgr.Configure(opts)

	return &pipeline{cfg: cfg, manager: mgr, diag: diag, registry: reg}, nil
}
