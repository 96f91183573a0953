package interfaces

import "context"

// Generator produces free text for a prompt. Its output is untrusted and must
// be validated before use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Executor runs synthesized code and returns its textual result
type Executor interface {
	Execute(ctx context.Context, code string) (string, error)
}
