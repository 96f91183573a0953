package types

// PlanSource tells which path of the planner produced the code
type PlanSource string

const (
	// PlanSourcePattern is code rendered from a matched pattern rule
	PlanSourcePattern PlanSource = "pattern"
	// PlanSourceGeneric is the generic skeleton used when no rule matched
	PlanSourceGeneric PlanSource = "generic"
	// PlanSourceGenerative is code returned by the generative collaborator
	PlanSourceGenerative PlanSource = "generative"
)

// String returns the string representation of the plan source
func (s PlanSource) String() string {
	return string(s)
}
