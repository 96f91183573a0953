package usecase_test

import (
	"context"
	"sync"

	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

type mockGenerator struct {
	mu         sync.Mutex
	prompts    []string
	generateFn func(ctx context.Context, prompt string) (string, error)
}

var _ interfaces.Generator = &mockGenerator{}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.generateFn(ctx, prompt)
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

type mockExecutor struct {
	executeFn func(ctx context.Context, code string) (string, error)
}

func (m *mockExecutor) Execute(ctx context.Context, code string) (string, error) {
	return m.executeFn(ctx, code)
}

type storedExecution struct {
	task   string
	code   string
	result string
	tags   []string
}

type mockMemory struct {
	mu         sync.Mutex
	stored     []storedExecution
	retrieveFn func(ctx context.Context, task string, limit int) ([]*model.EpisodicRecord, error)
}

var _ interfaces.MemoryService = &mockMemory{}

func (m *mockMemory) StoreExecution(ctx context.Context, task, code, result string, tags []string, importance int) (model.RecordID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, storedExecution{task: task, code: code, result: result, tags: tags})
	return model.RecordID("rec-1"), nil
}

func (m *mockMemory) RetrieveContext(ctx context.Context, task string, limit int) ([]*model.EpisodicRecord, error) {
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, task, limit)
	}
	return nil, nil
}
