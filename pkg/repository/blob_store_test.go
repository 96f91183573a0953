package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/repository/file"
	"github.com/secmon-lab/augur/pkg/repository/firestore"
	"github.com/secmon-lab/augur/pkg/repository/gcs"
	"github.com/secmon-lab/augur/pkg/repository/memory"
	"github.com/secmon-lab/augur/pkg/repository/postgres"
	"github.com/spf13/afero"
)

func runBlobStoreTest(t *testing.T, newStore func(t *testing.T) interfaces.BlobStore) {
	t.Helper()

	t.Run("Get returns stored data", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.NoError(t, store.Put(ctx, "keyvalues.json", []byte(`{"k":"v"}`))).Required()

		data, err := store.Get(ctx, "keyvalues.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`{"k":"v"}`)
	})

	t.Run("Put overwrites whole document", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.NoError(t, store.Put(ctx, "vectors.json", []byte(`[1,2,3,4,5]`))).Required()
		gt.NoError(t, store.Put(ctx, "vectors.json", []byte(`[]`))).Required()

		data, err := store.Get(ctx, "vectors.json")
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`[]`)
	})

	t.Run("Get missing key returns ErrBlobNotFound", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Get(ctx, fmt.Sprintf("entries/missing-%d.json", time.Now().UnixNano()))
		gt.Error(t, err).Is(model.ErrBlobNotFound)
	})

	t.Run("Put rejects empty and directory keys", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.Value(t, store.Put(ctx, "", []byte("x"))).NotNil()
		gt.Value(t, store.Put(ctx, "entries/", []byte("x"))).NotNil()
	})

	t.Run("List returns sorted keys directly under dir", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		dir := fmt.Sprintf("entries-%d/", time.Now().UnixNano())
		for _, key := range []string{dir + "b.json", dir + "a.json", dir + "nested/c.json"} {
			gt.NoError(t, store.Put(ctx, key, []byte("{}"))).Required()
		}

		keys, err := store.List(ctx, dir)
		gt.NoError(t, err).Required()
		gt.Value(t, keys).Equal([]string{dir + "a.json", dir + "b.json"})

		nested, err := store.List(ctx, dir+"nested/")
		gt.NoError(t, err).Required()
		gt.Value(t, nested).Equal([]string{dir + "nested/c.json"})
	})

	t.Run("List of unknown dir is empty", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		keys, err := store.List(ctx, fmt.Sprintf("nothing-%d/", time.Now().UnixNano()))
		gt.NoError(t, err).Required()
		gt.Array(t, keys).Length(0)
	})
}

func TestMemoryBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		return memory.New()
	})
}

func TestFileBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		return file.NewWithFs(afero.NewMemMapFs())
	})
}

func TestFileBlobStoreOnDisk(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		store, err := file.New(t.TempDir())
		gt.NoError(t, err).Required()
		return store
	})
}

func TestFirestoreBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		t.Helper()

		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
		}
		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
		if databaseID == "" {
			t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
		}

		ctx := context.Background()
		store, err := firestore.New(ctx, projectID, databaseID,
			firestore.WithCollection(fmt.Sprintf("test_blobs_%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, store.Close())
		})
		return store
	})
}

func TestGCSBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		t.Helper()

		bucket := os.Getenv("TEST_GCS_BUCKET")
		if bucket == "" {
			t.Skip("TEST_GCS_BUCKET not set")
		}

		ctx := context.Background()
		store, err := gcs.New(ctx, bucket, gcs.WithPrefix(fmt.Sprintf("test/%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, store.Close())
		})
		return store
	})
}

func TestPostgresBlobStore(t *testing.T) {
	runBlobStoreTest(t, func(t *testing.T) interfaces.BlobStore {
		t.Helper()

		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			t.Skip("TEST_POSTGRES_DSN not set")
		}

		ctx := context.Background()
		store, err := postgres.New(ctx, dsn, postgres.WithTable(fmt.Sprintf("test_blobs_%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, store.Close())
		})
		return store
	})
}
