// Copyright © 2024 The moqls authors

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/analysis"
	"github.com/rjmurillo/moq.autocomplete/csharp"
	"github.com/rjmurillo/moq.autocomplete/moq"
	"github.com/rjmurillo/moq.autocomplete/syntax"
	"github.com/spf13/cobra"
)

// completion is the JSON form of a suggestion.
type completion struct {
	Text     string `json:"text"`
	Kind     string `json:"kind"`
	Priority string `json:"priority"`
}

// CompleteCommand creates the "complete" cobra command, which prints the
// suggestions the language server would offer at a position.
func CompleteCommand(opts ...Option) *cobra.Command {
	c := newCmdConfig(opts)
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "complete [flags] FILE POSITION | FILE:LINE:COL",
		Short: "Print the suggestions at a position in a C# file",
		Long: `Print the suggestions moqls offers at a position in a C# file.

POSITION is a byte offset, or LINE:COL with both counted from 1 and COL
counted in bytes, the same columns lint reports. The position
is where the cursor sits, directly after the character just typed (an open
parenthesis, a comma or the closing > of Mock<T>).

Suggestions are printed in the order they are generated, one per line. The
preselected suggestion is marked with "*".

Examples:
  moqls complete FooTests.cs 1042
  moqls complete FooTests.cs 27:62
  moqls complete --json FooTests.cs:27:62`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			file, pos, err := splitPosition(args)
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

			src, err := os.ReadFile(file) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				return err
			}
			tree, err := csharp.Parse(file, src)
			if err != nil {
				return err
			}
			offset, err := resolveOffset(tree, pos)
			if err != nil {
				return err
			}

			engine := moq.NewEngine(patterns, moq.WithReparser(analysis.Reparser(cfg)))
			suggestions := engine.Suggest(tree, analysis.Build(tree, cfg), offset)

			if jsonOut {
				out := make([]completion, 0, len(suggestions))
				for _, s := range suggestions {
					out = append(out, completion{Text: s.Text, Kind: s.Kind.String(), Priority: s.Priority.String()})
				}
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, s := range suggestions {
				mark := " "
				if s.Priority == moq.Preselect {
					mark = "*"
				}
				fmt.Fprintf(c.stdout, "%s %s\n", mark, s.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output suggestions as JSON.")
	return cmd
}

// splitPosition separates the file from the position in either argument
// form.
func splitPosition(args []string) (file, pos string, err error) {
	if len(args) == 2 {
		return args[0], args[1], nil
	}
	// FILE:LINE:COL
	arg := args[0]
	colSep := strings.LastIndexByte(arg, ':')
	if colSep > 0 {
		lineSep := strings.LastIndexByte(arg[:colSep], ':')
		if lineSep > 0 {
			return arg[:lineSep], arg[lineSep+1:], nil
		}
	}
	return "", "", fmt.Errorf("%s: want FILE POSITION or FILE:LINE:COL", arg)
}

// resolveOffset converts an offset or a 1-based LINE:COL, with COL in
// bytes, into a byte offset of tree.
func resolveOffset(tree *syntax.Tree, pos string) (int, error) {
	if line, col, ok := strings.Cut(pos, ":"); ok {
		l, err := strconv.Atoi(line)
		if err != nil || l < 1 {
			return 0, fmt.Errorf("invalid line %q", line)
		}
		c, err := strconv.Atoi(col)
		if err != nil || c < 1 {
			return 0, fmt.Errorf("invalid column %q", col)
		}
		return tree.Offset(syntax.Position{Line: l, Col: c}), nil
	}
	offset, err := strconv.Atoi(pos)
	if err != nil || offset < 0 || offset > len(tree.Source) {
		return 0, fmt.Errorf("invalid offset %q", pos)
	}
	return offset, nil
}
