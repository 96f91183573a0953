package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

const (
	factsKey        = "keyvalues.json"
	DefaultMaxFacts = 1000
)

// FactStore is a bounded key/value cache written through to one mapping
// document. Overflow evicts the least recently used key. Recency is not
// persisted; loaded keys start in sorted order.
type FactStore struct {
	store interfaces.BlobStore
	cache *lru.Cache[string, string]
}

func NewFactStore(store interfaces.BlobStore, maxEntries int) (*FactStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxFacts
	}
	cache, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create fact cache", goerr.V("max_entries", maxEntries))
	}
	return &FactStore{store: store, cache: cache}, nil
}

// Load replaces the cache content with the persisted mapping
func (s *FactStore) Load(ctx context.Context) error {
	s.cache.Purge()

	data, err := s.store.Get(ctx, factsKey)
	if err != nil {
		if errors.Is(err, model.ErrBlobNotFound) {
			return nil
		}
		return model.Classify(model.ErrStorageFailure, err, "failed to load facts")
	}

	var facts map[string]string
	if err := json.Unmarshal(data, &facts); err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to decode facts")
	}

	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.cache.Add(k, facts[k])
	}
	return nil
}

func (s *FactStore) save(ctx context.Context) error {
	data, err := json.Marshal(s.All())
	if err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to encode facts")
	}
	if err := s.store.Put(ctx, factsKey, data); err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to save facts", goerr.V("count", s.cache.Len()))
	}
	return nil
}

// Set upserts key, evicting the least recently used key on overflow
func (s *FactStore) Set(ctx context.Context, key, value string) error {
	s.cache.Add(key, value)
	return s.save(ctx)
}

// Get returns the value of key and marks it as recently used
func (s *FactStore) Get(key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", goerr.Wrap(model.ErrKeyNotFound, "fact not found", goerr.V(model.KeyKey, key))
	}
	return v, nil
}

// Delete removes key. Deleting an absent key does nothing.
func (s *FactStore) Delete(ctx context.Context, key string) error {
	if !s.cache.Remove(key) {
		return nil
	}
	return s.save(ctx)
}

// All returns a snapshot of every fact without touching recency
func (s *FactStore) All() map[string]string {
	out := make(map[string]string, s.cache.Len())
	for _, k := range s.cache.Keys() {
		if v, ok := s.cache.Peek(k); ok {
			out[k] = v
		}
	}
	return out
}

// Keys returns the keys from least to most recently used
func (s *FactStore) Keys() []string {
	return s.cache.Keys()
}

func (s *FactStore) Len() int {
	return s.cache.Len()
}
