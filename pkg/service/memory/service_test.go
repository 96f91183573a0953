package memory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/augur/pkg/domain/model"
	repomemory "github.com/secmon-lab/augur/pkg/repository/memory"
	"github.com/secmon-lab/augur/pkg/service/embedding"
	"github.com/secmon-lab/augur/pkg/service/memory"
)

func newService(t *testing.T, opts ...memory.Option) *memory.Service {
	t.Helper()
	opts = append([]memory.Option{memory.WithClock(tickingClock())}, opts...)
	svc, err := memory.New(context.Background(), repomemory.New(), embedding.NewHashEncoder(), opts...)
	gt.NoError(t, err).Required()
	return svc
}

func TestNew_RequiresCollaborators(t *testing.T) {
	ctx := context.Background()
	_, err := memory.New(ctx, nil, embedding.NewHashEncoder())
	gt.Value(t, err).NotNil()
	_, err = memory.New(ctx, repomemory.New(), nil)
	gt.Value(t, err).NotNil()
}

func TestService_StoreAndRetrieve(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	id, err := svc.StoreExecution(ctx, "list files in /tmp", "ƒmain() { ⌽(📂(\"/tmp\")); }", "a.txt b.txt", []string{"file"}, 70)
	gt.NoError(t, err).Required()
	gt.String(t, string(id)).NotEqual("")

	got, err := svc.RetrieveContext(ctx, "list files in /tmp", 1)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(1).Required()

	rec := got[0]
	gt.Value(t, rec.ID).Equal(id)
	gt.Value(t, rec.Task).Equal("list files in /tmp")
	gt.Value(t, rec.Code).Equal("ƒmain() { ⌽(📂(\"/tmp\")); }")
	gt.Value(t, rec.Result).Equal("a.txt b.txt")
	gt.Value(t, rec.AccessCount).Equal(1)
	gt.Bool(t, rec.LastAccess.After(rec.CreatedAt)).True()

	t.Run("access count persists across retrievals", func(t *testing.T) {
		again, err := svc.RetrieveContext(ctx, "list files", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, again).Length(1).Required()
		gt.Value(t, again[0].AccessCount).Equal(2)
	})
}

func TestService_RetrieveContext(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields empty context", func(t *testing.T) {
		svc := newService(t)
		got, err := svc.RetrieveContext(ctx, "anything", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})

	t.Run("orders by similarity and honours limit", func(t *testing.T) {
		embeddings := map[string]model.Embedding{
			"alpha ok": {1, 0},
			"beta ok":  {0, 1},
			"gamma ok": {0.9, 0.1},
			"alpha":    {1, 0},
		}
		enc := &mockEncoder{embedFn: func(ctx context.Context, text string) (model.Embedding, error) {
			return embeddings[text], nil
		}}
		svc, err := memory.New(ctx, repomemory.New(), enc, memory.WithClock(tickingClock()))
		gt.NoError(t, err).Required()

		for _, task := range []string{"beta", "gamma", "alpha"} {
			_, err := svc.StoreExecution(ctx, task, "code", "ok", nil, 50)
			gt.NoError(t, err).Required()
		}

		got, err := svc.RetrieveContext(ctx, "alpha", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].Task).Equal("alpha")
		gt.Value(t, got[1].Task).Equal("gamma")
	})

	t.Run("dangling index entries are skipped", func(t *testing.T) {
		store := newMockBlobStore()
		svc, err := memory.New(ctx, store, embedding.NewHashEncoder(), memory.WithClock(tickingClock()))
		gt.NoError(t, err).Required()

		lost, err := svc.StoreExecution(ctx, "fetch page", "code", "200", nil, 50)
		gt.NoError(t, err).Required()
		kept, err := svc.StoreExecution(ctx, "fetch page again", "code", "200", nil, 50)
		gt.NoError(t, err).Required()

		store.getFn = func(ctx context.Context, key string) ([]byte, error) {
			if strings.Contains(key, string(lost)) {
				return nil, fmt.Errorf("gone: %w", model.ErrBlobNotFound)
			}
			return store.base.Get(ctx, key)
		}

		got, err := svc.RetrieveContext(ctx, "fetch page", 5)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].ID).Equal(kept)
	})

	t.Run("read failure is a storage failure", func(t *testing.T) {
		store := newMockBlobStore()
		svc, err := memory.New(ctx, store, embedding.NewHashEncoder())
		gt.NoError(t, err).Required()
		_, err = svc.StoreExecution(ctx, "task", "code", "result", nil, 50)
		gt.NoError(t, err).Required()

		store.getFn = func(ctx context.Context, key string) ([]byte, error) {
			return nil, errDiskFull
		}
		_, err = svc.RetrieveContext(ctx, "task", 5)
		gt.Error(t, err).Is(model.ErrStorageFailure)
	})
}

func TestService_StoreExecution_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("encoder failure", func(t *testing.T) {
		encErr := errors.New("model offline")
		enc := &mockEncoder{embedFn: func(ctx context.Context, text string) (model.Embedding, error) {
			return nil, encErr
		}}
		svc, err := memory.New(ctx, repomemory.New(), enc)
		gt.NoError(t, err).Required()

		_, err = svc.StoreExecution(ctx, "task", "code", "result", nil, 50)
		gt.Error(t, err).Is(model.ErrStorageFailure)
		gt.Error(t, err).Is(encErr)
		gt.Value(t, svc.IndexLen()).Equal(0)
	})

	t.Run("record write failure", func(t *testing.T) {
		store := newMockBlobStore()
		svc, err := memory.New(ctx, store, embedding.NewHashEncoder())
		gt.NoError(t, err).Required()

		store.putFn = func(ctx context.Context, key string, data []byte) error {
			return errDiskFull
		}
		_, err = svc.StoreExecution(ctx, "task", "code", "result", nil, 50)
		gt.Error(t, err).Is(model.ErrStorageFailure)
	})
}

func TestService_SearchByTags(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	store := func(task string, tags ...string) {
		_, err := svc.StoreExecution(ctx, task, "code", "ok", tags, 50)
		gt.NoError(t, err).Required()
	}
	store("read config", "file", "read")
	store("download page", "network")
	store("write report", "file", "write")
	store("read and write", "file", "read", "write")

	t.Run("superset match in enumeration order", func(t *testing.T) {
		got, err := svc.SearchByTags(ctx, []string{"file", "read"}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].Task).Equal("read config")
		gt.Value(t, got[1].Task).Equal("read and write")
		gt.Value(t, got[0].AccessCount).Equal(1)
	})

	t.Run("capped at limit", func(t *testing.T) {
		got, err := svc.SearchByTags(ctx, []string{"file"}, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := svc.SearchByTags(ctx, []string{"memory"}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})
}

func TestService_SearchByText(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.StoreExecution(ctx, "Fetch weather", "code", "sunny", nil, 50)
	gt.NoError(t, err).Required()
	_, err = svc.StoreExecution(ctx, "list files", "code", "none", nil, 50)
	gt.NoError(t, err).Required()

	got, err := svc.SearchByText(ctx, "WEATHER", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(1).Required()
	gt.Value(t, got[0].Task).Equal("Fetch weather")
	gt.Value(t, got[0].AccessCount).Equal(1)

	t.Run("dangling entries do not shrink the result", func(t *testing.T) {
		store := newMockBlobStore()
		svc, err := memory.New(ctx, store, embedding.NewHashEncoder(), memory.WithClock(tickingClock()))
		gt.NoError(t, err).Required()

		lost, err := svc.StoreExecution(ctx, "fetch page", "code", "200", nil, 50)
		gt.NoError(t, err).Required()
		kept, err := svc.StoreExecution(ctx, "fetch page again", "code", "200", nil, 50)
		gt.NoError(t, err).Required()

		store.getFn = func(ctx context.Context, key string) ([]byte, error) {
			if strings.Contains(key, string(lost)) {
				return nil, fmt.Errorf("gone: %w", model.ErrBlobNotFound)
			}
			return store.base.Get(ctx, key)
		}

		got, err := svc.SearchByText(ctx, "page", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].ID).Equal(kept)

		got, err = svc.RetrieveContext(ctx, "fetch page", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].ID).Equal(kept)
	})
}

func TestService_Records(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, memory.WithMaxVectors(1))

	for i := range 3 {
		_, err := svc.StoreExecution(ctx, fmt.Sprintf("task %d", i), "code", "ok", nil, 50)
		gt.NoError(t, err).Required()
	}

	gt.Value(t, svc.IndexLen()).Equal(1)

	records, err := svc.Records(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(3)
	for _, r := range records {
		gt.Value(t, r.AccessCount).Equal(0)
	}
}

func TestService_Facts(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	gt.NoError(t, svc.SetFact(ctx, "k", "v")).Required()
	v, err := svc.GetFact(ctx, "k")
	gt.NoError(t, err).Required()
	gt.Value(t, v).Equal("v")
	gt.Value(t, svc.Facts(ctx)).Equal(map[string]string{"k": "v"})

	gt.NoError(t, svc.DeleteFact(ctx, "k")).Required()
	_, err = svc.GetFact(ctx, "k")
	gt.Error(t, err).Is(model.ErrKeyNotFound)

	gt.NoError(t, svc.DeleteFact(ctx, "k")).Required()
}

func TestService_Reload(t *testing.T) {
	ctx := context.Background()
	store := repomemory.New()
	enc := embedding.NewHashEncoder()

	svc, err := memory.New(ctx, store, enc)
	gt.NoError(t, err).Required()
	_, err = svc.StoreExecution(ctx, "remember the user name", "code", "stored", []string{"memory"}, 80)
	gt.NoError(t, err).Required()
	gt.NoError(t, svc.SetFact(ctx, "user", "alice")).Required()

	reloaded, err := memory.New(ctx, store, enc)
	gt.NoError(t, err).Required()
	gt.Value(t, reloaded.IndexLen()).Equal(1)

	v, err := reloaded.GetFact(ctx, "user")
	gt.NoError(t, err).Required()
	gt.Value(t, v).Equal("alice")

	got, err := reloaded.RetrieveContext(ctx, "remember the user name", 1)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(1).Required()
	gt.Value(t, got[0].Importance).Equal(80)
	gt.Value(t, got[0].Tags).Equal([]string{"memory"})
}

func TestService_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.StoreExecution(ctx, fmt.Sprintf("task %d", i), "code", "ok", nil, 50)
			gt.NoError(t, err)
			_, err = svc.RetrieveContext(ctx, "task", 3)
			gt.NoError(t, err)
			gt.NoError(t, svc.SetFact(ctx, fmt.Sprintf("k%d", i), "v"))
		}(i)
	}
	wg.Wait()

	gt.Value(t, svc.IndexLen()).Equal(20)
	gt.Value(t, len(svc.Facts(ctx))).Equal(20)
}
