package model

import (
	"maps"
	"slices"

	"github.com/secmon-lab/augur/pkg/domain/types"
)

// PatternRule maps task descriptions matching Expression to a code template.
// Template placeholders are written {{name}} and filled from the named capture
// groups of Expression.
type PatternRule struct {
	ID          types.RuleID `json:"id"`
	Expression  string       `json:"regex"`
	Priority    int          `json:"priority"`
	Tags        []string     `json:"tags"`
	Template    string       `json:"template"`
	Description string       `json:"description"`
}

// PatternMatch is a rule that matched a task, with its captured groups
type PatternMatch struct {
	RuleID   types.RuleID
	Captures map[string]string
	Template string
	Tags     []string
	Priority int
}

// Clone returns a deep copy of m
func (m PatternMatch) Clone() PatternMatch {
	m.Captures = maps.Clone(m.Captures)
	m.Tags = slices.Clone(m.Tags)
	return m
}
