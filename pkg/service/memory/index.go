package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

const (
	vectorIndexKey    = "vectors.json"
	DefaultMaxVectors = 1000
)

// VectorIndex holds embeddings in insertion order and ranks them for a query.
// It is not safe for concurrent use; Service serialises access.
type VectorIndex struct {
	store    interfaces.BlobStore
	capacity int
	entries  []*model.IndexedVector
}

// NewVectorIndex returns an empty index bounded to capacity entries
func NewVectorIndex(store interfaces.BlobStore, capacity int) *VectorIndex {
	if capacity <= 0 {
		capacity = DefaultMaxVectors
	}
	return &VectorIndex{
		store:    store,
		capacity: capacity,
	}
}

// Load replaces the in-memory entries with the persisted index. A missing
// document leaves the index empty.
func (x *VectorIndex) Load(ctx context.Context) error {
	data, err := x.store.Get(ctx, vectorIndexKey)
	if err != nil {
		if errors.Is(err, model.ErrBlobNotFound) {
			x.entries = nil
			return nil
		}
		return model.Classify(model.ErrStorageFailure, err, "failed to load vector index")
	}

	var entries []*model.IndexedVector
	if err := json.Unmarshal(data, &entries); err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to decode vector index")
	}

	x.entries = entries
	for len(x.entries) > x.capacity {
		x.evictOldest()
	}
	return nil
}

func (x *VectorIndex) save(ctx context.Context) error {
	entries := x.entries
	if entries == nil {
		entries = []*model.IndexedVector{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to encode vector index")
	}
	if err := x.store.Put(ctx, vectorIndexKey, data); err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to save vector index",
			goerr.V("entries", len(x.entries)))
	}
	return nil
}

func (x *VectorIndex) find(id string) int {
	for i, v := range x.entries {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// evictOldest drops the entry with the lowest CreatedAt; the earliest
// inserted wins a tie.
func (x *VectorIndex) evictOldest() {
	if len(x.entries) == 0 {
		return
	}
	oldest := 0
	for i, v := range x.entries[1:] {
		if v.CreatedAt.Before(x.entries[oldest].CreatedAt) {
			oldest = i + 1
		}
	}
	x.entries = append(x.entries[:oldest], x.entries[oldest+1:]...)
}

// Add inserts v, or replaces the content, embedding and metadata of the entry
// with the same ID. The index is persisted before returning.
func (x *VectorIndex) Add(ctx context.Context, v *model.IndexedVector) error {
	if v == nil || v.ID == "" {
		return goerr.New("vector ID is required")
	}
	v = v.Clone()

	if i := x.find(v.ID); i >= 0 {
		existing := x.entries[i]
		existing.Embedding = v.Embedding
		existing.Content = v.Content
		existing.Metadata = v.Metadata
	} else {
		if len(x.entries) >= x.capacity {
			x.evictOldest()
		}
		x.entries = append(x.entries, v)
	}

	return x.save(ctx)
}

// FindSimilar returns up to limit entries ordered by cosine similarity to
// query, highest first. Equal scores keep insertion order.
func (x *VectorIndex) FindSimilar(query model.Embedding, limit int) []*model.IndexedVector {
	if limit <= 0 || len(x.entries) == 0 {
		return nil
	}

	type scored struct {
		v     *model.IndexedVector
		score float64
	}
	ranked := make([]scored, len(x.entries))
	for i, v := range x.entries {
		ranked[i] = scored{v: v, score: model.CosineSimilarity(query, v.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := min(limit, len(ranked))
	out := make([]*model.IndexedVector, n)
	for i := range n {
		out[i] = ranked[i].v.Clone()
	}
	return out
}

// SearchByText returns up to limit entries whose content contains query,
// ignoring case, ordered by the number of occurrences.
func (x *VectorIndex) SearchByText(query string, limit int) []*model.IndexedVector {
	query = strings.ToLower(query)
	if query == "" || limit <= 0 {
		return nil
	}

	type counted struct {
		v     *model.IndexedVector
		count int
	}
	var hits []counted
	for _, v := range x.entries {
		if n := strings.Count(strings.ToLower(v.Content), query); n > 0 {
			hits = append(hits, counted{v: v, count: n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].count > hits[j].count
	})

	n := min(limit, len(hits))
	out := make([]*model.IndexedVector, n)
	for i := range n {
		out[i] = hits[i].v.Clone()
	}
	return out
}

// Remove deletes the entry with id and reports whether it existed
func (x *VectorIndex) Remove(ctx context.Context, id string) (bool, error) {
	i := x.find(id)
	if i < 0 {
		return false, nil
	}
	x.entries = append(x.entries[:i], x.entries[i+1:]...)
	return true, x.save(ctx)
}

// All returns a copy of every entry
func (x *VectorIndex) All() []*model.IndexedVector {
	out := make([]*model.IndexedVector, len(x.entries))
	for i, v := range x.entries {
		out[i] = v.Clone()
	}
	return out
}

// Clear removes every entry
func (x *VectorIndex) Clear(ctx context.Context) error {
	x.entries = nil
	return x.save(ctx)
}

func (x *VectorIndex) Len() int {
	return len(x.entries)
}

func (x *VectorIndex) Capacity() int {
	return x.capacity
}
