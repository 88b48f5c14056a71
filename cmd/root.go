// Copyright © 2024 The moqls authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	cfgFile   string
	colorFlag string
	verbose   int
	logFile   string
)

// errFindings is returned by commands that completed but found problems.
// It maps to exit status 1; every other error maps to 2.
var errFindings = errors.New("problems found")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moqls",
	Short: "Completion and callback checks for Moq test code",
	Long: `moqls understands Moq call chains in C# test code. It suggests callback
lambdas, argument matchers and mock names while typing, and it reports
Callback and Returns lambdas whose parameters do not match the mocked method.

Getting started:
  moqls lsp                         Start the language server on stdio
  moqls lint ./...                  Check every .cs file below the current directory
  moqls complete FooTests.cs 42:17  Show the suggestions at a position
  moqls rules                       Describe the checks

Configuration is read from $HOME/.moqls.yaml (or --config) and from
MOQLS_ environment variables, for example MOQLS_SUGGEST_MOCK_SUFFIX=Fake.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitStatus(err))
	}
}

// exitStatus prints err and returns the process exit status for it.
func exitStatus(err error) int {
	if errors.Is(err, errFindings) {
		return 1
	}
	fmt.Fprintln(os.Stderr, "moqls:", err)
	return 2
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.moqls.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug).")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Write logs to this file instead of stderr.")

	rootCmd.AddCommand(
		LintCommand(),
		CompleteCommand(),
		RulesCommand(),
		LSPCommand(),
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configureLogging()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".moqls" (without extension).
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".moqls")
	}

	viper.SetEnvPrefix("MOQLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		commonlog.GetLogger("moqls.cmd").Infof("using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "moqls: reading %s: %v\n", cfgFile, err)
		os.Exit(2)
	}
}

// configureLogging maps the -v count onto commonlog verbosity. Without -v
// only errors and warnings are logged.
func configureLogging() {
	verbosity := verbose
	if verbosity == 0 {
		verbosity = -1
	}
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbosity, path)
}
