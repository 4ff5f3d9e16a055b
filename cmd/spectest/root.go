package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-spectest/config"
	"github.com/wippyai/wasm-spectest/engine"
	"github.com/wippyai/wasm-spectest/harness"
)

// Exit codes.
const (
	exitSuccess      = 0
	exitFailure      = 1 // a script or assertion failed
	exitCommandError = 2 // bad arguments, unreadable files, bad config
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code    int
	message string
	err     error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newExitError(code int, message string, err error) *exitError {
	return &exitError{code: code, message: message, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitFailure
}

// rootOptions holds global flags and what they load.
type rootOptions struct {
	configPath string
	logLevel   string

	config *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "spectest",
		Short:         "WebAssembly conformance harness for wazero",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath+" if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newInspectCommand(opts))
	cmd.AddCommand(newExploreCommand(opts))

	return cmd
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return newExitError(exitCommandError, "load config", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return newExitError(exitCommandError, "invalid --log-level", err)
		}
	}

	logger, err := cfg.Logger()
	if err != nil {
		return newExitError(exitCommandError, "build logger", err)
	}
	engine.SetLogger(logger.Named("engine"))

	o.config = cfg
	o.logger = logger
	return nil
}

// harnessOptions returns the harness configuration selected by the config.
func (o *rootOptions) harnessOptions() []harness.Option {
	return []harness.Option{
		harness.WithEngineConfig(o.config.EngineConfig()),
		harness.WithEnvConfig(o.config.Env),
	}
}
