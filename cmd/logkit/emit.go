package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

type emitFlags struct {
	severity  string
	asJSON    bool
	errorMsg  string
	requestID string
}

func newEmitCmd(configPath *string) *cobra.Command {
	var flags emitFlags

	cmd := &cobra.Command{
		Use:   "emit [message]",
		Short: "Write one record through the configured pipeline",
		Long: `Write one record through the configured pipeline and wait for the
file writer to apply it.

Examples:
  # Plain message at Info
  logkit emit "service started"

  # Structured record
  logkit emit --json '{"message":"order placed","order_id":42}' --severity warn

  # Error with a cause, logged at Error
  logkit emit "payment failed" --error "card declined"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(cmd, *configPath, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.severity, "severity", "s", "info", "record severity (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "treat the argument as a JSON object")
	cmd.Flags().StringVar(&flags.errorMsg, "error", "", "attach an error cause; implies --severity error")
	cmd.Flags().StringVar(&flags.requestID, "request-id", "", "request id to correlate the record with")
	return cmd
}

func runEmit(cmd *cobra.Command, configPath string, flags emitFlags, args []string) error {
	sev, err := logging.ParseSeverity(flags.severity)
	if err != nil {
		return err
	}

	if flags.requestID != "" {
		if err := logging.ValidateRequestID(flags.requestID); err != nil {
			return err
		}
	}

	var payload any = ""
	if len(args) == 1 {
		payload = args[0]
	}
	if flags.asJSON {
		if len(args) == 0 {
			return fmt.Errorf("--json requires a JSON object argument")
		}
		var rec logging.Record
		if err := json.Unmarshal([]byte(args[0]), &rec); err != nil {
			return fmt.Errorf("invalid JSON payload: %w", err)
		}
		payload = rec
	}

	p, err := newPipeline(cmd, configPath)
	if err != nil {
		return err
	}
	defer p.manager.Close()

	data := context.Background()
	if flags.requestID != "" {
		data = logging.WithRequestID(data, flags.requestID)
	}
	logger := p.manager.CreateLogger(data)

	if flags.errorMsg != "" {
		err = logger.Error(payload, errors.New(flags.errorMsg))
	} else {
		err = logger.Log(payload, sev)
	}
	if err != nil {
		return fmt.Errorf("failed to emit record: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), p.cfg.Writer.FlushTimeout.Duration())
	defer cancel()
	if err := p.manager.Flush(ctx); err != nil {
		p.diag.Warn("file writer did not drain", zap.Error(err))
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}
