package model

import (
	"time"

	"github.com/secmon-lab/augur/pkg/domain/types"
)

// ReasoningStep is one recorded synthesis: task, code and justification
type ReasoningStep struct {
	Input         string
	Output        string
	Justification string
	CreatedAt     time.Time
}

// Reasoning is the result of synthesising code for a task
type Reasoning struct {
	Code          string
	Justification string
	Matches       []PatternMatch
}

// Matched reports whether any pattern rule matched the task
func (r *Reasoning) Matched() bool {
	return len(r.Matches) > 0
}

// Tags returns the tags of every matched rule
func (r *Reasoning) Tags() []string {
	var tags []string
	for _, m := range r.Matches {
		tags = append(tags, m.Tags...)
	}
	return NormalizeTags(tags)
}

// Plan is validated code for a task plus how it was obtained
type Plan struct {
	Task          string
	Code          string
	Justification string
	Source        types.PlanSource
	Tags          []string
	Context       []*EpisodicRecord
}

// Execution is a plan that has been run and recorded
type Execution struct {
	Plan     *Plan
	Result   string
	RecordID RecordID
}
