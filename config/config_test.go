// Copyright © 2024 The moqls authors

package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"Setup"}, cfg.Setup.Names)
	assert.Equal(t, "It.IsAny<%s>()", cfg.Suggest.Matcher)
	assert.Equal(t, "Mock", cfg.Suggest.MockSuffix)
	assert.Contains(t, cfg.ImplicitUsings, "System")
}

func TestLoad_YAML(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
suggest:
  mock_suffix: Stub
implicit_usings: [System, Moq]
rules:
  callback-type: error
`)))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Stub", cfg.Suggest.MockSuffix)
	assert.Equal(t, "It.IsAny<%s>()", cfg.Suggest.Matcher, "unset keys keep defaults")
	assert.Equal(t, []string{"System", "Moq"}, cfg.ImplicitUsings)
	assert.Equal(t, "error", cfg.Rules["callback-type"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no setup names", func(c *Config) { c.Setup.Names = nil }},
		{"bad pattern", func(c *Config) { c.Setup.Pattern = "(" }},
		{"no callback prefixes", func(c *Config) { c.Callback.Prefixes = nil }},
		{"matcher without verb", func(c *Config) { c.Suggest.Matcher = "It.IsAny()" }},
		{"matcher with two verbs", func(c *Config) { c.Suggest.Matcher = "%s%s" }},
		{"mock type not generic", func(c *Config) { c.Suggest.MockType = "Moq.Mock" }},
		{"empty suffix", func(c *Config) { c.Suggest.MockSuffix = "" }},
		{"bad severity", func(c *Config) { c.Rules = map[string]string{"callback-arity": "loud"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
