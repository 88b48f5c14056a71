// Copyright © 2024 The moqls authors

package cmd

import (
	"io"
	"os"

	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (LintCommand,
// CompleteCommand, RulesCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

// WithConfig injects a loaded configuration. Without it the command loads
// the configuration from viper (config file and MOQLS_ environment) when
// it runs.
func WithConfig(cfg *config.Config) Option {
	return func(c *cmdConfig) { c.cfg = cfg }
}

// WithOutput redirects the command's standard output and error streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *cmdConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

func newCmdConfig(opts []Option) *cmdConfig {
	c := &cmdConfig{stdout: os.Stdout, stderr: os.Stderr}
	for _, o := range opts {
		o(c)
	}
	return c
}

// resolveConfig returns the injected configuration or loads it.
func (c *cmdConfig) resolveConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	return config.Load(viper.GetViper())
}
