package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

// Memory is a process local BlobStore, used for development and tests
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ interfaces.BlobStore = &Memory{}

func New() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, goerr.Wrap(model.ErrBlobNotFound, "blob not found", goerr.V(model.KeyKey, key))
	}
	return slices.Clone(data), nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if key == "" || strings.HasSuffix(key, "/") {
		return goerr.New("invalid blob key", goerr.V(model.KeyKey, key))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = slices.Clone(data)
	return nil
}

func (m *Memory) List(ctx context.Context, dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.blobs {
		rest, ok := strings.CutPrefix(key, dir)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
