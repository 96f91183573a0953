package pattern

import (
	"cmp"
	"regexp"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

type entry struct {
	rule model.PatternRule
	expr *regexp.Regexp
}

// Catalog is an ordered set of pattern rules, highest priority first. Rules
// with equal priority keep their insertion order.
type Catalog struct {
	mu      sync.RWMutex
	entries []entry
}

// New builds a catalog from rules. It stops at the first invalid rule.
func New(rules ...model.PatternRule) (*Catalog, error) {
	c := &Catalog{}
	for _, r := range rules {
		if err := c.Add(r); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compile checks rule and returns its compiled expression
func Compile(rule model.PatternRule) (*regexp.Regexp, error) {
	if err := rule.ID.Validate(); err != nil {
		return nil, model.Classify(model.ErrInvalidPattern, err, "invalid rule id", goerr.V(model.RuleIDKey, rule.ID))
	}
	expr, err := regexp.Compile(rule.Expression)
	if err != nil {
		return nil, model.Classify(model.ErrInvalidPattern, err, "failed to compile rule expression",
			goerr.V(model.RuleIDKey, rule.ID),
			goerr.V("regex", rule.Expression),
		)
	}
	return expr, nil
}

// Add inserts rule, replacing any rule with the same id. An invalid rule
// leaves the catalog unchanged.
func (c *Catalog) Add(rule model.PatternRule) error {
	expr, err := Compile(rule)
	if err != nil {
		return err
	}

	rule.Tags = slices.Clone(rule.Tags)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = slices.DeleteFunc(c.entries, func(e entry) bool { return e.rule.ID == rule.ID })
	c.entries = append(c.entries, entry{rule: rule, expr: expr})
	slices.SortStableFunc(c.entries, func(a, b entry) int {
		return cmp.Compare(b.rule.Priority, a.rule.Priority)
	})
	return nil
}

// Remove deletes the rule with id and reports whether it existed
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = slices.DeleteFunc(c.entries, func(e entry) bool { return string(e.rule.ID) == id })
	return len(c.entries) != n
}

// All returns the rules in match order
func (c *Catalog) All() []model.PatternRule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rules := make([]model.PatternRule, len(c.entries))
	for i, e := range c.entries {
		rules[i] = e.rule
		rules[i].Tags = slices.Clone(e.rule.Tags)
	}
	return rules
}

// Len returns the number of rules
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// MatchTask returns one match per rule whose expression matches text, in
// catalog order. Captures hold the named groups of the leftmost match;
// groups that did not participate are left out.
func (c *Catalog) MatchTask(text string) []model.PatternMatch {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []model.PatternMatch
	for _, e := range c.entries {
		loc := e.expr.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		captures := make(map[string]string)
		for i, name := range e.expr.SubexpNames() {
			if i == 0 || name == "" || loc[2*i] < 0 {
				continue
			}
			captures[name] = text[loc[2*i]:loc[2*i+1]]
		}

		matches = append(matches, model.PatternMatch{
			RuleID:   e.rule.ID,
			Captures: captures,
			Template: e.rule.Template,
			Tags:     slices.Clone(e.rule.Tags),
			Priority: e.rule.Priority,
		})
	}
	return matches
}
