package model

import (
	"maps"
	"slices"
	"time"
)

// IndexedVector is one entry of the vector index
type IndexedVector struct {
	ID        string            `json:"id"`
	Embedding Embedding         `json:"embedding"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Clone returns a deep copy of v
func (v *IndexedVector) Clone() *IndexedVector {
	if v == nil {
		return nil
	}
	c := *v
	c.Embedding = slices.Clone(v.Embedding)
	c.Metadata = maps.Clone(v.Metadata)
	return &c
}
