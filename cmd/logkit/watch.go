package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/logkit/internal/config"
	ophttp "github.com/fyrsmithlabs/logkit/internal/http"
)

func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep a pipeline running and reconfigure it when the config file changes",
		Long: `Keep a pipeline running and reconfigure it whenever the config file
changes. Loggers created before a change follow the new options.

When ops.enabled is set, /health, /metrics and /api/v1/status are served on
ops.addr. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *configPath == "" {
				return fmt.Errorf("--config is required for watch")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, *configPath)
		},
	}
}

// runWatch blocks until ctx is done.
func runWatch(ctx context.Context, cmd *cobra.Command, configPath string) error {
	p, err := newPipeline(cmd, configPath)
	if err != nil {
		return err
	}
	defer p.manager.Close()
	defer p.diag.Sync() //nolint:errcheck

	logger := p.manager.CreateLogger(map[string]string{"component": "logkit-watch"})
	_ = logger.Info("watching configuration " + configPath)

	if p.cfg.Ops.Enabled {
		server, err := ophttp.NewServer(p.manager, p.registry, p.diag, &ophttp.Config{Addr: p.cfg.Ops.Addr})
		if err != nil {
			return fmt.Errorf("failed to create ops server: %w", err)
		}
		go func() {
			if err := server.Start(ctx); err != nil {
				p.diag.Error("ops server stopped", zap.Error(err))
			}
		}()
	}

	err = config.Watch(ctx, configPath, func(cfg *config.Config, err error) {
		if err != nil {
			p.diag.Warn("config reload failed, keeping previous options", zap.Error(err))
			return
		}
		opts, err := cfg.Options()
		if err != nil {
			p.diag.Warn("config reload produced invalid options", zap.Error(err))
			return
		}
		p.manager.Configure(opts)
		p.diag.Info("configuration reloaded",
			zap.Bool("console_enabled", opts.Console.Enabled),
			zap.Bool("file_enabled", opts.File.Enabled),
			zap.String("base_path", opts.File.BasePath),
		)
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
