package reasoning

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/service/pattern"
	"github.com/secmon-lab/augur/pkg/service/synth"
	"github.com/secmon-lab/augur/pkg/utils/logging"
)

const DefaultMaxHistory = 100

// Engine matches tasks against a pattern catalog, renders code and explains
// it. Every processed task is kept in a bounded history.
type Engine struct {
	// pass serializes synthesis passes; mu guards history and vars
	pass    sync.Mutex
	mu      sync.Mutex
	catalog *pattern.Catalog
	synth   *synth.Synthesizer
	symbols *model.SymbolTable

	history    []model.ReasoningStep
	maxHistory int
	vars       map[string]string

	state   atomic.Int32
	onState func(State)
	now     func() time.Time
}

// Option is a functional option for Engine configuration
type Option func(*Engine)

// WithMaxHistory bounds the history. Non-positive values keep the default.
func WithMaxHistory(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHistory = n
		}
	}
}

// WithSymbols replaces the symbol table used for explanations
func WithSymbols(t *model.SymbolTable) Option {
	return func(e *Engine) {
		e.symbols = t
	}
}

// WithSynthesizer replaces the default synthesizer
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(e *Engine) {
		e.synth = s
	}
}

// WithStateHook registers a callback run on every state change. The hook
// may read history and context variables but must not start another pass
// (Process, ProcessWithReasoning, ProcessCombined) on the same engine.
func WithStateHook(fn func(State)) Option {
	return func(e *Engine) {
		e.onState = fn
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an engine over catalog
func New(catalog *pattern.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:    catalog,
		synth:      synth.New(),
		symbols:    model.DefaultSymbols(),
		maxHistory: DefaultMaxHistory,
		vars:       make(map[string]string),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
	if e.onState != nil {
		e.onState(s)
	}
}

// State returns the phase of the task being processed, or StateIdle
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) record(task, code, justification string) {
	e.history = append(e.history, model.ReasoningStep{
		Input:         task,
		Output:        code,
		Justification: justification,
		CreatedAt:     e.now(),
	})
	if over := len(e.history) - e.maxHistory; over > 0 {
		e.history = slices.Delete(e.history, 0, over)
	}
}

// synthesize runs one pass through the state machine. render picks the code
// from the matches and explain builds the justification.
func (e *Engine) synthesize(ctx context.Context, task string, render func([]model.PatternMatch) string, explain func(code string) string) *model.Reasoning {
	e.pass.Lock()
	defer e.pass.Unlock()
	defer e.setState(StateIdle)

	e.setState(StateMatching)
	matches := e.catalog.MatchTask(task)

	e.setState(StateSynthesizing)
	code := render(matches)

	e.setState(StateExplaining)
	justification := explain(code)

	e.mu.Lock()
	e.record(task, code, justification)
	historyLen := len(e.history)
	e.mu.Unlock()
	e.setState(StateRecorded)

	logging.From(ctx).Debug("Synthesized code",
		"task", task,
		"matches", len(matches),
		"history", historyLen,
	)

	return &model.Reasoning{
		Code:          code,
		Justification: justification,
		Matches:       matches,
	}
}

func (e *Engine) renderTop(task string) func([]model.PatternMatch) string {
	return func(matches []model.PatternMatch) string {
		if len(matches) == 0 {
			return e.synth.RenderGeneric(task)
		}
		return e.synth.Render(task, matches[0])
	}
}

// Process returns code for task and records a brief justification
func (e *Engine) Process(ctx context.Context, task string) string {
	r := e.synthesize(ctx, task, e.renderTop(task), func(string) string {
		return briefJustification(task)
	})
	return r.Code
}

// ProcessWithReasoning renders the top match for task, or the generic
// skeleton, and explains the code line by line.
func (e *Engine) ProcessWithReasoning(ctx context.Context, task string) *model.Reasoning {
	return e.synthesize(ctx, task, e.renderTop(task), func(code string) string {
		return justify(task, code, e.symbols)
	})
}

// ProcessCombined renders every match for task under one entry point
func (e *Engine) ProcessCombined(ctx context.Context, task string) *model.Reasoning {
	return e.synthesize(ctx, task, func(matches []model.PatternMatch) string {
		if len(matches) == 0 {
			return e.synth.RenderGeneric(task)
		}
		return e.synth.RenderCombined(task, matches)
	}, func(code string) string {
		return justify(task, code, e.symbols)
	})
}

// History returns a copy of the recorded steps, oldest first
func (e *Engine) History() []model.ReasoningStep {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}

// SetContextVar sets a variable surfaced to the generative prompt
func (e *Engine) SetContextVar(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[key] = value
}

func (e *Engine) ContextVar(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[key]
	return v, ok
}

// ContextVars returns a snapshot of every context variable
func (e *Engine) ContextVars() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.vars)
}

func (e *Engine) ClearContext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.vars)
}

// Match returns the rules matching task without synthesizing or recording
func (e *Engine) Match(task string) []model.PatternMatch {
	return e.catalog.MatchTask(task)
}

// AddPattern adds rule to the catalog. See pattern.Catalog.Add.
func (e *Engine) AddPattern(rule model.PatternRule) error {
	return e.catalog.Add(rule)
}

func (e *Engine) RemovePattern(id string) bool {
	return e.catalog.Remove(id)
}

func (e *Engine) Patterns() []model.PatternRule {
	return e.catalog.All()
}
