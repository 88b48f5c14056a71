// Copyright © 2024 The moqls authors

// Package docs embeds the moqls rule reference for use by the CLI.
package docs

import (
	_ "embed"
	"strings"
)

//go:embed rules.md
var Rules string

// RuleSection returns the section of Rules describing rule, without its
// heading. It returns false when the reference has no such section.
func RuleSection(rule string) (string, bool) {
	heading := "\n## " + rule + "\n"
	i := strings.Index(Rules, heading)
	if i < 0 {
		return "", false
	}
	section := Rules[i+len(heading):]
	if end := strings.Index(section, "\n## "); end >= 0 {
		section = section[:end]
	}
	return strings.TrimSpace(section), true
}
