package interfaces

import (
	"context"

	"github.com/secmon-lab/augur/pkg/domain/model"
)

// BlobStore is a key addressable whole-document store. Keys are slash separated
// paths such as "entries/<id>.json".
type BlobStore interface {
	// Get returns the document stored at key, or an error wrapping
	// model.ErrBlobNotFound when there is none
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the document at key
	Put(ctx context.Context, key string, data []byte) error

	// List returns the sorted keys directly under dir. dir is either empty
	// (top level) or ends with a slash; keys in deeper directories are not
	// returned.
	List(ctx context.Context, dir string) ([]string, error)
}

// Encoder turns text into an embedding. All embeddings produced by one encoder
// must have the same length.
type Encoder interface {
	Embed(ctx context.Context, text string) (model.Embedding, error)
	Dimension() int
}

// MemoryService is the part of the memory service used by the planner
type MemoryService interface {
	StoreExecution(ctx context.Context, task, code, result string, tags []string, importance int) (model.RecordID, error)
	RetrieveContext(ctx context.Context, task string, limit int) ([]*model.EpisodicRecord, error)
}
