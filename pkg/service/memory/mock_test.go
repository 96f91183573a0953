package memory_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/repository/memory"
)

// mockBlobStore delegates to an in-memory store unless a hook is set
type mockBlobStore struct {
	base  *memory.Memory
	getFn func(ctx context.Context, key string) ([]byte, error)
	putFn func(ctx context.Context, key string, data []byte) error
}

var _ interfaces.BlobStore = &mockBlobStore{}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{base: memory.New()}
}

func (m *mockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return m.base.Get(ctx, key)
}

func (m *mockBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, data)
	}
	return m.base.Put(ctx, key, data)
}

func (m *mockBlobStore) List(ctx context.Context, dir string) ([]string, error) {
	return m.base.List(ctx, dir)
}

var errDiskFull = errors.New("disk full")

// mockEncoder returns fixed embeddings per text, falling back to embedFn
type mockEncoder struct {
	embedFn func(ctx context.Context, text string) (model.Embedding, error)
}

func (m *mockEncoder) Embed(ctx context.Context, text string) (model.Embedding, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return model.Embedding{1, 0}, nil
}

func (m *mockEncoder) Dimension() int {
	return 2
}

// tickingClock returns a clock advancing one second per call
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
