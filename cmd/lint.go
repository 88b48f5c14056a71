// Copyright © 2024 The moqls authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/lint"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// LintCommand creates the "lint" cobra command.
func LintCommand(opts ...Option) *cobra.Command {
	c := newCmdConfig(opts)

	var (
		jsonOut  bool
		checks   string
		listAll  bool
		excludes []string
		jobs     int
	)

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Check Moq callbacks in C# source files",
		Long: `Check Moq callbacks in C# source files.

The linter reports Callback and Returns lambdas whose parameters do not match
the method mocked by the setup they belong to. Such lambdas compile, but Moq
throws when it invokes them.

With no files, reads from stdin. Arguments may be files, glob patterns
("tests/**/*Tests.cs") or a directory followed by "/..." for every .cs file
below it. Files are checked concurrently.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files, invalid config)

To suppress a specific diagnostic, add a comment on the same line:
  .Callback((int a) => { }); // nolint:callback-arity

To suppress all checks on a line:
  .Callback((int a) => { }); // nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  moqls lint FooTests.cs                         # Lint a single file
  moqls lint ./...                               # Lint every .cs file below .
  moqls lint 'tests/**/*Tests.cs'                # Lint files matching a glob
  moqls lint --json ./...                        # Output diagnostics as JSON
  moqls lint --checks=callback-type ./...        # Run only specific checks
  moqls lint --list                              # List available checks
  moqls lint --exclude='obj' --exclude='bin' ./...  # Exclude directories
  cat FooTests.cs | moqls lint                   # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(c.stdout, name)
				}
				return nil
			}

			analyzers, err := selectAnalyzers(checks)
			if err != nil {
				return err
			}
			cfg, err := c.resolveConfig()
			if err != nil {
				return err
			}
			patterns, err := moq.Compile(cfg)
			if err != nil {
				return err
			}
			l := &lint.Linter{Analyzers: analyzers, Config: cfg, Engine: moq.NewEngine(patterns)}

			var diags []lint.Diagnostic
			if len(args) == 0 {
				src, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				diags, err = l.LintFile(src, "<stdin>")
				if err != nil {
					return err
				}
			} else {
				paths, err := expandArgs(args, excludes)
				if err != nil {
					return err
				}
				diags, err = lintFiles(cmd.Context(), l, paths, jobs)
				if err != nil {
					return err
				}
			}

			if len(diags) == 0 {
				return nil
			}
			if jsonOut {
				if err := lint.FormatJSON(c.stdout, diags); err != nil {
					return err
				}
			} else if err := renderLintDiagnostics(c.stderr, newRenderer(), diags); err != nil {
				return err
			}
			return errFindings
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringVar(&checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&listAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0),
		"Number of files to check concurrently.")

	return cmd
}

// selectAnalyzers returns the analyzers named in the comma-separated list,
// or all of them when the list is empty.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	analyzers := lint.DefaultAnalyzers()
	if checks == "" {
		return analyzers, nil
	}
	var selected []*lint.Analyzer
	for _, name := range strings.Split(checks, ",") {
		a, ok := lint.LookupAnalyzer(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown check: %s", name)
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// lintFiles lints paths with at most jobs files in flight. The result is
// sorted by position; the first read or parse error cancels the rest.
func lintFiles(ctx context.Context, l *lint.Linter, paths []string, jobs int) ([]lint.Diagnostic, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}
	results := make([][]lint.Diagnostic, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			diags, err := lintFile(l, path)
			if err != nil {
				return err
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []lint.Diagnostic
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].Pos, all[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return all, nil
}

func lintFile(l *lint.Linter, path string) ([]lint.Diagnostic, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l.LintFile(src, path)
}
