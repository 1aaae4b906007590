package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/logkit/internal/config"
	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

func newPathCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the log file the next record would be appended to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.File.Enabled {
				fmt.Fprintln(cmd.ErrOrStderr(), "file output is disabled")
			}
			fmt.Fprintln(cmd.OutOrStdout(), logging.FilePath(cfg.File.BasePath, time.Now()))
			return nil
		},
	}
}
