package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// RuleID identifies a pattern rule
type RuleID string

var ruleIDPattern = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

// Validate checks if the RuleID is valid
func (r RuleID) Validate() error {
	if r == "" {
		return goerr.New("rule ID cannot be empty")
	}
	if !ruleIDPattern.MatchString(string(r)) {
		return goerr.New("rule ID must be lowercase alphanumeric with hyphens or underscores", goerr.V("id", r))
	}
	return nil
}

// String returns the string representation of RuleID
func (r RuleID) String() string {
	return string(r)
}
