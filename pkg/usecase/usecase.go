package usecase

import (
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/service/reasoning"
)

const (
	DefaultContextLimit = 5
	DefaultImportance   = 50

	defaultSystemPrompt = "You are an AI assistant that generates symbolic instruction language code to accomplish tasks. Use the symbolic syntax (e.g., !, ↗, 📂, etc.) for all operations."
)

type UseCases struct {
	memory       interfaces.MemoryService
	engine       *reasoning.Engine
	generator    interfaces.Generator
	executor     interfaces.Executor
	contextLimit int
	systemPrompt string
}

type Option func(*UseCases)

// WithGenerator enables the generative fallback of the planner
func WithGenerator(g interfaces.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = g
	}
}

// WithExecutor enables RunTask
func WithExecutor(e interfaces.Executor) Option {
	return func(uc *UseCases) {
		uc.executor = e
	}
}

// WithContextLimit sets how many past executions are retrieved per plan
func WithContextLimit(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.contextLimit = n
		}
	}
}

// WithSystemPrompt replaces the system prompt of the generative fallback
func WithSystemPrompt(prompt string) Option {
	return func(uc *UseCases) {
		if prompt != "" {
			uc.systemPrompt = prompt
		}
	}
}

func New(memory interfaces.MemoryService, engine *reasoning.Engine, opts ...Option) *UseCases {
	uc := &UseCases{
		memory:       memory,
		engine:       engine,
		contextLimit: DefaultContextLimit,
		systemPrompt: defaultSystemPrompt,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Engine returns the reasoning engine plans are synthesized with
func (uc *UseCases) Engine() *reasoning.Engine {
	return uc.engine
}
