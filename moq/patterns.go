// Copyright © 2024 The moqls authors

package moq

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rjmurillo/moq.autocomplete/config"
)

// Patterns is the compiled form of a config.Config. It is built once at
// startup and shared read-only between requests.
type Patterns struct {
	setupNames       map[string]bool
	setup            *regexp.Regexp
	callbackNames    map[string]bool
	callbackPrefixes []string
	mockType         string
	matcher          string
	mockSuffix       string
}

// Compile validates cfg and compiles its patterns. A nil cfg compiles the
// defaults.
func Compile(cfg *config.Config) (*Patterns, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(cfg.Setup.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling setup pattern: %w", err)
	}
	return &Patterns{
		setupNames:       nameSet(cfg.Setup.Names),
		setup:            re,
		callbackNames:    nameSet(cfg.Callback.Names),
		callbackPrefixes: append([]string(nil), cfg.Callback.Prefixes...),
		mockType:         cfg.Suggest.MockType,
		matcher:          cfg.Suggest.Matcher,
		mockSuffix:       cfg.Suggest.MockSuffix,
	}, nil
}

// DefaultPatterns returns the patterns for the Moq library.
func DefaultPatterns() *Patterns {
	p, err := Compile(config.Default())
	if err != nil {
		panic(err)
	}
	return p
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// IsSetupName reports whether name is the surface name of a setup call.
func (p *Patterns) IsSetupName(name string) bool { return p.setupNames[name] }

// IsCallbackName reports whether name is the surface name of a callback or
// return-value call.
func (p *Patterns) IsCallbackName(name string) bool { return p.callbackNames[name] }

// IsSetupSymbol reports whether s is a method of the setup family.
func (p *Patterns) IsSetupSymbol(s *Symbol) bool {
	return s != nil && s.Kind == SymbolMethod && p.setup.MatchString(s.QualifiedName)
}

// IsCallbackSymbol reports whether s implements the callback or
// return-value capability.
func (p *Patterns) IsCallbackSymbol(s *Symbol) bool {
	if s == nil || s.Kind != SymbolMethod {
		return false
	}
	for _, prefix := range p.callbackPrefixes {
		if strings.HasPrefix(s.QualifiedName, prefix) {
			return true
		}
	}
	return false
}

// IsMockType reports whether a type constructed from constructedFrom with
// typeArgs is the mock type over a single mocked type.
func (p *Patterns) IsMockType(constructedFrom string, typeArgs []Type) bool {
	return constructedFrom == p.mockType && len(typeArgs) == 1
}

// Matcher renders the any-value matcher for a type display.
func (p *Patterns) Matcher(typeDisplay string) string {
	return fmt.Sprintf(p.matcher, typeDisplay)
}
