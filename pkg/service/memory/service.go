package memory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/utils/logging"
)

// Service owns the vector index, the record store and the fact store. One
// mutex serialises every operation because retrieval also mutates records.
type Service struct {
	mu      sync.Mutex
	encoder interfaces.Encoder
	index   *VectorIndex
	records *RecordStore
	facts   *FactStore
	now     func() time.Time
}

var _ interfaces.MemoryService = &Service{}

type config struct {
	maxVectors int
	maxFacts   int
	now        func() time.Time
}

// Option is a functional option for Service configuration
type Option func(*config)

// WithMaxVectors bounds the vector index
func WithMaxVectors(n int) Option {
	return func(c *config) {
		c.maxVectors = n
	}
}

// WithMaxFacts bounds the fact cache
func WithMaxFacts(n int) Option {
	return func(c *config) {
		c.maxFacts = n
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New builds a Service on store and loads the persisted index and facts
func New(ctx context.Context, store interfaces.BlobStore, encoder interfaces.Encoder, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, goerr.New("blob store is required")
	}
	if encoder == nil {
		return nil, goerr.New("encoder is required")
	}

	cfg := &config{
		maxVectors: DefaultMaxVectors,
		maxFacts:   DefaultMaxFacts,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	facts, err := NewFactStore(store, cfg.maxFacts)
	if err != nil {
		return nil, err
	}

	s := &Service{
		encoder: encoder,
		index:   NewVectorIndex(store, cfg.maxVectors),
		records: NewRecordStore(store),
		facts:   facts,
		now:     cfg.now,
	}

	if err := s.index.Load(ctx); err != nil {
		return nil, err
	}
	if err := s.facts.Load(ctx); err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("Memory service loaded",
		"vectors", s.index.Len(),
		"facts", s.facts.Len(),
	)
	return s, nil
}

// StoreExecution records one execution and indexes task + " " + result
func (s *Service) StoreExecution(ctx context.Context, task, code, result string, tags []string, importance int) (model.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := model.NewEpisodicRecord(task, code, result, tags, importance, s.now())

	emb, err := s.encoder.Embed(ctx, rec.Content())
	if err != nil {
		return "", model.Classify(model.ErrStorageFailure, err, "failed to embed record", goerr.V(model.TaskKey, task))
	}

	if err := s.records.Save(ctx, rec); err != nil {
		return "", err
	}

	vec := &model.IndexedVector{
		ID:        string(rec.ID),
		Embedding: emb,
		Content:   rec.Content(),
		Metadata: map[string]string{
			"task":       rec.Task,
			"tags":       strings.Join(rec.Tags, ","),
			"importance": strconv.Itoa(rec.Importance),
		},
		CreatedAt: rec.CreatedAt,
	}
	if err := s.index.Add(ctx, vec); err != nil {
		return "", err
	}

	logging.From(ctx).Debug("Stored execution", "record_id", rec.ID, "tags", rec.Tags)
	return rec.ID, nil
}

// resolve loads the records behind hits, skipping ids without a record, and
// bumps the access stats of the ones returned.
func (s *Service) resolve(ctx context.Context, hits []*model.IndexedVector, limit int, keep func(*model.EpisodicRecord) bool) ([]*model.EpisodicRecord, error) {
	records := make([]*model.EpisodicRecord, 0, min(len(hits), max(limit, 0)))
	now := s.now()

	for _, hit := range hits {
		if len(records) >= limit {
			break
		}

		rec, err := s.records.Get(ctx, model.RecordID(hit.ID))
		if err != nil {
			if errors.Is(err, model.ErrBlobNotFound) {
				logging.From(ctx).Debug("Skip dangling index entry", "record_id", hit.ID)
				continue
			}
			return nil, model.Classify(model.ErrStorageFailure, err, "failed to load record", goerr.V(model.RecordIDKey, hit.ID))
		}
		if keep != nil && !keep(rec) {
			continue
		}

		rec.Touch(now)
		if err := s.records.Save(ctx, rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// RetrieveContext returns up to limit records most similar to task
func (s *Service) RetrieveContext(ctx context.Context, task string, limit int) ([]*model.EpisodicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || s.index.Len() == 0 {
		return []*model.EpisodicRecord{}, nil
	}

	emb, err := s.encoder.Embed(ctx, task)
	if err != nil {
		return nil, model.Classify(model.ErrStorageFailure, err, "failed to embed query", goerr.V(model.TaskKey, task))
	}

	// rank the whole index so dangling entries do not shrink the result
	return s.resolve(ctx, s.index.FindSimilar(emb, s.index.Len()), limit, nil)
}

// SearchByTags returns up to limit records tagged with every tag in tags
func (s *Service) SearchByTags(ctx context.Context, tags []string, limit int) ([]*model.EpisodicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags = model.NormalizeTags(tags)
	return s.resolve(ctx, s.index.All(), limit, func(r *model.EpisodicRecord) bool {
		return r.HasTags(tags)
	})
}

// SearchByText returns up to limit records whose indexed content contains query
func (s *Service) SearchByText(ctx context.Context, query string, limit int) ([]*model.EpisodicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolve(ctx, s.index.SearchByText(query, s.index.Len()), limit, nil)
}

// Records returns every persisted record, including ones no longer indexed.
// Access stats are left untouched.
func (s *Service) Records(ctx context.Context) ([]*model.EpisodicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.records.List(ctx)
}

// SetFact upserts a fact
func (s *Service) SetFact(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.facts.Set(ctx, key, value)
}

// GetFact returns the value of key or an error wrapping model.ErrKeyNotFound
func (s *Service) GetFact(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.facts.Get(key)
}

// DeleteFact removes key if present
func (s *Service) DeleteFact(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.facts.Delete(ctx, key)
}

// Facts returns a snapshot of every fact
func (s *Service) Facts(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.facts.All()
}

// IndexLen returns the number of indexed vectors
func (s *Service) IndexLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.Len()
}
