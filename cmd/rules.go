// Copyright © 2024 The moqls authors

package cmd

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/rjmurillo/moq.autocomplete/docs"
	"github.com/rjmurillo/moq.autocomplete/lint"
	"github.com/spf13/cobra"
)

// RulesCommand creates the "rules" cobra command.
func RulesCommand(opts ...Option) *cobra.Command {
	c := newCmdConfig(opts)
	var width int

	cmd := &cobra.Command{
		Use:   "rules [RULE]",
		Short: "Describe the checks moqls runs",
		Long: `Describe the checks moqls runs.

Without arguments, prints the full rule reference. With a rule name, prints
that rule's documentation and examples.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: lint.AnalyzerNames(),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(c.stdout, wrapMarkdown(docs.Rules, width))
				return nil
			}
			a, ok := lint.LookupAnalyzer(args[0])
			if !ok {
				return fmt.Errorf("unknown rule %q (available: %s)", args[0], strings.Join(lint.AnalyzerNames(), ", "))
			}
			fmt.Fprint(c.stdout, lint.AnalyzerLongDoc(a, width))
			if section, ok := docs.RuleSection(a.Name); ok {
				fmt.Fprint(c.stdout, "\n", wrapMarkdown(section, width))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "Wrap text at this many columns.")
	return cmd
}

// wrapMarkdown reflows prose paragraphs to width. Headings, list items and
// fenced code blocks are kept as written.
func wrapMarkdown(md string, width int) string {
	var b strings.Builder
	var para []string
	flush := func() {
		if len(para) > 0 {
			b.WriteString(wordwrap.String(strings.Join(para, " "), width))
			b.WriteString("\n")
			para = nil
		}
	}
	inFence := false
	for _, line := range strings.Split(strings.TrimRight(md, "\n"), "\n") {
		fence := strings.HasPrefix(line, "```")
		switch {
		case fence || inFence:
			flush()
			b.WriteString(line + "\n")
			if fence {
				inFence = !inFence
			}
		case strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "- "):
			flush()
			b.WriteString(line + "\n")
		default:
			para = append(para, strings.TrimSpace(line))
		}
	}
	flush()
	return b.String()
}
