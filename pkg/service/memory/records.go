package memory

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

const recordDir = "entries/"

func recordKey(id model.RecordID) string {
	return recordDir + string(id) + ".json"
}

// RecordStore persists one document per episodic record
type RecordStore struct {
	store interfaces.BlobStore
}

func NewRecordStore(store interfaces.BlobStore) *RecordStore {
	return &RecordStore{store: store}
}

// Save overwrites the persisted copy of r
func (s *RecordStore) Save(ctx context.Context, r *model.EpisodicRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to encode record", goerr.V(model.RecordIDKey, r.ID))
	}
	if err := s.store.Put(ctx, recordKey(r.ID), data); err != nil {
		return model.Classify(model.ErrStorageFailure, err, "failed to save record", goerr.V(model.RecordIDKey, r.ID))
	}
	return nil
}

// Get loads the record with id. A missing record is returned as an error
// wrapping model.ErrBlobNotFound.
func (s *RecordStore) Get(ctx context.Context, id model.RecordID) (*model.EpisodicRecord, error) {
	data, err := s.store.Get(ctx, recordKey(id))
	if err != nil {
		return nil, err
	}

	var r model.EpisodicRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, model.Classify(model.ErrStorageFailure, err, "failed to decode record", goerr.V(model.RecordIDKey, id))
	}
	return &r, nil
}

// List loads every persisted record in key order
func (s *RecordStore) List(ctx context.Context) ([]*model.EpisodicRecord, error) {
	keys, err := s.store.List(ctx, recordDir)
	if err != nil {
		return nil, model.Classify(model.ErrStorageFailure, err, "failed to list records")
	}

	records := make([]*model.EpisodicRecord, 0, len(keys))
	for _, key := range keys {
		id, ok := strings.CutSuffix(strings.TrimPrefix(key, recordDir), ".json")
		if !ok {
			continue
		}
		r, err := s.Get(ctx, model.RecordID(id))
		if err != nil {
			return nil, model.Classify(model.ErrStorageFailure, err, "failed to load record", goerr.V(model.KeyKey, key))
		}
		records = append(records, r)
	}
	return records, nil
}
