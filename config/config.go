// Package config loads harness configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/errors"
	"github.com/wippyai/wasm-spectest/spectest"
)

// Environment variables that override file values.
const (
	EnvLogLevel         = "SPECTEST_LOG_LEVEL"
	EnvParallelism      = "SPECTEST_PARALLELISM"
	EnvMemoryLimitPages = "SPECTEST_MEMORY_LIMIT_PAGES"
	EnvTimeout          = "SPECTEST_TIMEOUT"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "spectest.yaml"

// Config holds the complete harness configuration
type Config struct {
	Log    LogConfig       `yaml:"log"`
	Engine EngineConfig    `yaml:"engine"`
	Env    spectest.Config `yaml:"env"`
	Run    RunConfig       `yaml:"run"`
}

// LogConfig selects the logger
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// EngineConfig configures the wazero runtime
type EngineConfig struct {
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
	Threads          bool   `yaml:"threads"`
	Interpreter      bool   `yaml:"interpreter"`
}

// RunConfig configures the script runner
type RunConfig struct {
	Parallelism int           `yaml:"parallelism"`
	Timeout     time.Duration `yaml:"timeout"`
	Skip        []string      `yaml:"skip"` // file:line locations
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Env: spectest.DefaultConfig(),
		Run: RunConfig{Parallelism: 4, Timeout: 5 * time.Minute},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path uses DefaultPath when it exists and the defaults otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case !explicit && os.IsNotExist(err):
		data = nil
	default:
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Detail("read config file %s", path).Cause(err).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Detail("parse YAML config").Cause(err).Build()
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvParallelism); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envErr(EnvParallelism, v, err)
		}
		c.Run.Parallelism = n
	}
	if v, ok := lookup(EnvMemoryLimitPages); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return envErr(EnvMemoryLimitPages, v, err)
		}
		c.Engine.MemoryLimitPages = uint32(n)
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envErr(EnvTimeout, v, err)
		}
		c.Run.Timeout = d
	}
	return nil
}

func envErr(key, value string, cause error) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Detail("%s=%q", key, value).Cause(cause).Build()
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log.format %q", c.Log.Format))
	}
	if c.Run.Parallelism < 1 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("run.parallelism must be positive, got %d", c.Run.Parallelism))
	}
	if c.Run.Timeout < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "run.timeout must not be negative")
	}
	for _, loc := range c.Run.Skip {
		if i := strings.LastIndexByte(loc, ':'); i <= 0 || i == len(loc)-1 {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("run.skip entry %q is not file:line", loc))
		}
	}
	if err := c.Env.Validate(); err != nil {
		return err
	}
	return nil
}

// EngineConfig returns the wazero runtime configuration. Runs with a
// timeout close modules when their context is done.
func (c *Config) EngineConfig() *engine.Config {
	return &engine.Config{
		MemoryLimitPages:   c.Engine.MemoryLimitPages,
		EnableThreads:      c.Engine.Threads,
		Interpreter:        c.Engine.Interpreter,
		CloseOnContextDone: c.Run.Timeout > 0,
	}
}

// Logger builds the configured zap logger.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("log.level %q", c.Log.Level))
	}

	zc := zap.NewDevelopmentConfig()
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
