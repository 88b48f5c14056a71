// Copyright © 2024 The moqls authors

// Package config holds the settings shared by the CLI and the language
// server. A Config is loaded once at startup and treated as read-only.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Config describes how mock call chains are recognised and how
// suggestions are rendered.
type Config struct {
	Setup    SetupConfig    `mapstructure:"setup"`
	Callback CallbackConfig `mapstructure:"callback"`
	Suggest  SuggestConfig  `mapstructure:"suggest"`

	// ImplicitUsings are namespaces treated as imported in every file,
	// in addition to the file's own using directives.
	ImplicitUsings []string `mapstructure:"implicit_usings"`

	// Rules maps a rule name to a severity override: "error", "warning",
	// "info", "hint" or "off".
	Rules map[string]string `mapstructure:"rules"`
}

// SetupConfig recognises setup invocations.
type SetupConfig struct {
	Names   []string `mapstructure:"names"`
	Pattern string   `mapstructure:"pattern"`
}

// CallbackConfig recognises callback and return-value invocations.
type CallbackConfig struct {
	Names    []string `mapstructure:"names"`
	Prefixes []string `mapstructure:"prefixes"`
}

// SuggestConfig controls the text of generated suggestions.
type SuggestConfig struct {
	// Matcher is a format string with a single %s for the argument type.
	Matcher string `mapstructure:"matcher"`
	// MockType is the constructed-from identity of the mock type.
	MockType string `mapstructure:"mock_type"`
	// MockSuffix is appended to derived mock variable names.
	MockSuffix string `mapstructure:"mock_suffix"`
}

// Default returns the configuration for the Moq library.
func Default() *Config {
	return &Config{
		Setup: SetupConfig{
			Names:   []string{"Setup"},
			Pattern: `^Moq\.Mock<.*>\.Setup.*`,
		},
		Callback: CallbackConfig{
			Names:    []string{"Callback", "Returns"},
			Prefixes: []string{"Moq.Language.ICallback", "Moq.Language.IReturns"},
		},
		Suggest: SuggestConfig{
			Matcher:    "It.IsAny<%s>()",
			MockType:   "Moq.Mock<T>",
			MockSuffix: "Mock",
		},
		ImplicitUsings: []string{
			"System",
			"System.Collections.Generic",
			"System.Linq",
			"System.Threading.Tasks",
		},
		Rules: map[string]string{},
	}
}

// SetDefaults registers the default values with v so that environment
// variables and config files only need to name what they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("setup.names", d.Setup.Names)
	v.SetDefault("setup.pattern", d.Setup.Pattern)
	v.SetDefault("callback.names", d.Callback.Names)
	v.SetDefault("callback.prefixes", d.Callback.Prefixes)
	v.SetDefault("suggest.matcher", d.Suggest.Matcher)
	v.SetDefault("suggest.mock_type", d.Suggest.MockType)
	v.SetDefault("suggest.mock_suffix", d.Suggest.MockSuffix)
	v.SetDefault("implicit_usings", d.ImplicitUsings)
}

// Load decodes the configuration held by v and validates it. Defaults are
// registered first, so keys absent from v keep their default values.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var severities = map[string]bool{"error": true, "warning": true, "info": true, "hint": true, "off": true}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	if len(c.Setup.Names) == 0 {
		return fmt.Errorf("%w: setup.names is empty", ErrInvalid)
	}
	if _, err := regexp.Compile(c.Setup.Pattern); err != nil {
		return fmt.Errorf("%w: setup.pattern: %v", ErrInvalid, err)
	}
	if len(c.Callback.Names) == 0 || len(c.Callback.Prefixes) == 0 {
		return fmt.Errorf("%w: callback.names and callback.prefixes are required", ErrInvalid)
	}
	if strings.Count(c.Suggest.Matcher, "%s") != 1 {
		return fmt.Errorf("%w: suggest.matcher must contain exactly one %%s", ErrInvalid)
	}
	if !strings.HasSuffix(c.Suggest.MockType, ">") || !strings.Contains(c.Suggest.MockType, "<") {
		return fmt.Errorf("%w: suggest.mock_type %q is not a generic type", ErrInvalid, c.Suggest.MockType)
	}
	if c.Suggest.MockSuffix == "" {
		return fmt.Errorf("%w: suggest.mock_suffix is empty", ErrInvalid)
	}
	for rule, sev := range c.Rules {
		if !severities[strings.ToLower(sev)] {
			return fmt.Errorf("%w: rules.%s: unknown severity %q", ErrInvalid, rule, sev)
		}
	}
	return nil
}
