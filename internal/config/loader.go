// internal/config/loader.go
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix is stripped from environment variable names before mapping.
	EnvPrefix = "LOGKIT_"
)

// defaultConfig is loaded first so that every other source only overrides.
// Booleans cannot be defaulted after unmarshaling, hence YAML.
const defaultConfig = `
console:
  enabled: true
file:
  enabled: false
  base_path: ./
instance_id: false
writer:
  queue_size: 1024
  flush_timeout: 5s
ops:
  enabled: false
  addr: 127.0.0.1:9464
diagnostics:
  level: info
  format: json
`

// Load loads configuration from an optional YAML or TOML file, then
// overrides it with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (LOGKIT_FILE_BASE_PATH, LOGKIT_CONSOLE_ENABLED, etc.)
//  2. Config file (YAML, or TOML when the path ends in .toml)
//  3. Built-in defaults
//
// An empty configPath skips the file. A path that does not exist is an
// error: a missing file usually means a typo.
//
// # Environment Variable Mapping
//
// The LOGKIT_ prefix is stripped, the name lowercased, and the first
// underscore becomes the section separator:
//
//	LOGKIT_FILE_BASE_PATH   -> file.base_path
//	LOGKIT_CONSOLE_ENABLED  -> console.enabled
//	LOGKIT_WRITER_QUEUE_SIZE -> writer.queue_size
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaultConfig)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := setRedactionDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), parserFor(configPath)); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setRedactionDefaults seeds the redaction section from
// logging.DefaultRedactionConfig.
func setRedactionDefaults(k *koanf.Koanf) error {
	def := logging.DefaultRedactionConfig()
	for key, val := range map[string]any{
		"redaction.enabled":  def.Enabled,
		"redaction.fields":   def.Fields,
		"redaction.patterns": def.Patterns,
	} {
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// envKey maps LOGKIT_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

// parserFor picks the koanf parser from the file extension.
func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOMLParser()
	}
	return yaml.Parser()
}

// readConfigFile opens the file once and checks its size through the open
// descriptor before reading it.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
