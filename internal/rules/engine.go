// Package rules assigns categories to transactions by case-insensitive
// substring match against user-defined rules.
package rules

import (
	"sort"
	"strings"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/statement"
)

// Engine evaluates a fixed rule set. Rules are kept in evaluation order:
// priority descending, ties broken by insertion order.
type Engine struct {
	rules    []repository.Rule
	patterns []string
}

// New builds an engine from rules as listed by the store (insertion order).
// Disabled rules are dropped.
func New(list []repository.Rule) *Engine {
	var enabled []repository.Rule
	for _, r := range list {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority > enabled[j].Priority
	})

	e := &Engine{rules: enabled, patterns: make([]string, len(enabled))}
	for i, r := range enabled {
		e.patterns[i] = strings.ToLower(r.Pattern)
	}
	return e
}

// Len returns the number of enabled rules.
func (e *Engine) Len() int { return len(e.rules) }

// Rules returns the enabled rules in evaluation order.
func (e *Engine) Rules() []repository.Rule {
	out := make([]repository.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Match returns the first rule whose pattern occurs in description.
func (e *Engine) Match(description string) (repository.Rule, bool) {
	desc := strings.ToLower(description)
	for i, p := range e.patterns {
		if strings.Contains(desc, p) {
			return e.rules[i], true
		}
	}
	return repository.Rule{}, false
}

// Categorize sets CategoryID on every candidate whose description matches a
// rule and returns how many were categorized. Candidates without a match are
// left untouched.
func (e *Engine) Categorize(candidates []statement.Candidate, descriptions map[string]string) int {
	n := 0
	for i := range candidates {
		rule, ok := e.Match(descriptions[candidates[i].DedupKey])
		if !ok {
			continue
		}
		categoryID := rule.CategoryID
		candidates[i].CategoryID = &categoryID
		n++
	}
	return n
}
