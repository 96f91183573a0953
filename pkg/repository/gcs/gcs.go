package gcs

import (
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/secmon-lab/augur/pkg/utils/safe"
	"google.golang.org/api/iterator"
)

// GCS is a BlobStore keeping one object per key under an optional prefix
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.BlobStore = &GCS{}

type Option func(*GCS)

// WithPrefix places every object under prefix, e.g. "augur/"
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		prefix = strings.Trim(prefix, "/")
		if prefix != "" {
			g.prefix = prefix + "/"
		}
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	g := &GCS{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GCS) objectName(key string) string {
	return path.Join(g.prefix, key)
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(g.objectName(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(model.ErrBlobNotFound, "blob not found", goerr.V(model.KeyKey, key))
		}
		return nil, goerr.Wrap(err, "failed to open object", goerr.V(model.KeyKey, key), goerr.V("bucket", g.bucket))
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V(model.KeyKey, key), goerr.V("bucket", g.bucket))
	}
	return data, nil
}

func (g *GCS) Put(ctx context.Context, key string, data []byte) error {
	if key == "" || strings.HasSuffix(key, "/") {
		return goerr.New("invalid blob key", goerr.V(model.KeyKey, key))
	}

	w := g.client.Bucket(g.bucket).Object(g.objectName(key)).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V(model.KeyKey, key), goerr.V("bucket", g.bucket))
	}
	// The object is committed on Close
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit object", goerr.V(model.KeyKey, key), goerr.V("bucket", g.bucket))
	}
	return nil
}

func (g *GCS) List(ctx context.Context, dir string) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{
		Prefix:    g.prefix + dir,
		Delimiter: "/",
	})

	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects", goerr.V("dir", dir), goerr.V("bucket", g.bucket))
		}
		// Synthetic directory entries only carry Prefix
		if attrs.Name == "" {
			continue
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, g.prefix))
	}

	sort.Strings(keys)
	return keys, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
