// Package config loads logkit configuration.
//
// Configuration is read from a YAML or TOML file and overridden by LOGKIT_*
// environment variables. It is consumed by the logkit binary; the logging
// library itself takes plain logging.Options.
package config

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

// Config holds the complete logkit configuration.
type Config struct {
	Console     logging.ConsoleOptions  `koanf:"console"`
	File        logging.FileOptions     `koanf:"file"`
	Fields      map[string]string       `koanf:"fields"`
	InstanceID  bool                    `koanf:"instance_id"`
	Redaction   logging.RedactionConfig `koanf:"redaction"`
	Writer      WriterConfig            `koanf:"writer"`
	Ops         OpsConfig               `koanf:"ops"`
	Diagnostics DiagnosticsConfig       `koanf:"diagnostics"`
}

// WriterConfig tunes the background file writer.
type WriterConfig struct {
	QueueSize    int      `koanf:"queue_size"`
	FlushTimeout Duration `koanf:"flush_timeout"`
}

// OpsConfig controls the health/metrics HTTP endpoint.
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// DiagnosticsConfig controls logkit's own operational log, which is separate
// from the pipeline it runs.
type DiagnosticsConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// instanceIDHook is shared by every reload so the id stays fixed for the
// process.
var instanceIDHook = sync.OnceValue(logging.InstanceID)

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.File.Enabled && strings.TrimSpace(c.File.BasePath) == "" {
		return fmt.Errorf("file.base_path is required when file output is enabled")
	}
	if c.Writer.QueueSize <= 0 {
		return fmt.Errorf("writer.queue_size must be > 0, got %d", c.Writer.QueueSize)
	}
	if c.Writer.FlushTimeout.Duration() <= 0 {
		return fmt.Errorf("writer.flush_timeout must be > 0")
	}
	if c.Ops.Enabled && c.Ops.Addr == "" {
		return fmt.Errorf("ops.addr is required when ops endpoint is enabled")
	}
	if _, err := zapcore.ParseLevel(c.Diagnostics.Level); err != nil {
		return fmt.Errorf("invalid diagnostics.level %q: %w", c.Diagnostics.Level, err)
	}
	if c.Diagnostics.Format != "json" && c.Diagnostics.Format != "console" {
		return fmt.Errorf("diagnostics.format must be 'json' or 'console', got %q", c.Diagnostics.Format)
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	if _, err := logging.Redact(c.Redaction); err != nil {
		return err
	}
	return nil
}

// Options builds the pipeline options described by c. Hooks run in this
// order: context correlation, logger data, constant fields, instance id,
// redaction. Redaction runs last so it sees every field.
func (c *Config) Options() (logging.Options, error) {
	redact, err := logging.Redact(c.Redaction)
	if err != nil {
		return logging.Options{}, err
	}

	hooks := []logging.Hook{
		logging.ContextFields(),
		logging.DataFields(),
		logging.StaticFields(c.Fields),
	}
	if c.InstanceID {
		hooks = append(hooks, instanceIDHook())
	}
	hooks = append(hooks, redact)

	return logging.Options{
		Hook:    logging.Chain(hooks...),
		Console: c.Console,
		File:    c.File,
	}, nil
}
