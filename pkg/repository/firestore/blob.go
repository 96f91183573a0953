package firestore

import (
	"context"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// blobDoc is the Firestore document representation of one blob.
// Dir and Key back the (Dir ASC, Key ASC) composite index used by List.
type blobDoc struct {
	Key       string    `firestore:"Key"`
	Dir       string    `firestore:"Dir"`
	Data      []byte    `firestore:"Data"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

// docID maps a slash separated key to a valid document ID
func docID(key string) string {
	return url.QueryEscape(key)
}

func dirOf(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[:i+1]
	}
	return ""
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := f.client.Collection(f.collection).Doc(docID(key)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrBlobNotFound, "blob not found", goerr.V(model.KeyKey, key))
		}
		return nil, goerr.Wrap(err, "failed to get blob", goerr.V(model.KeyKey, key))
	}

	var d blobDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal blob", goerr.V(model.KeyKey, key))
	}

	return d.Data, nil
}

func (f *Firestore) Put(ctx context.Context, key string, data []byte) error {
	if key == "" || strings.HasSuffix(key, "/") {
		return goerr.New("invalid blob key", goerr.V(model.KeyKey, key))
	}

	doc := &blobDoc{
		Key:       key,
		Dir:       dirOf(key),
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.client.Collection(f.collection).Doc(docID(key)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put blob", goerr.V(model.KeyKey, key))
	}

	return nil
}

func (f *Firestore) List(ctx context.Context, dir string) ([]string, error) {
	iter := f.client.Collection(f.collection).
		Where("Dir", "==", dir).
		OrderBy("Key", firestore.Asc).
		Select("Key").
		Documents(ctx)
	defer iter.Stop()

	keys := make([]string, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate blobs", goerr.V("dir", dir))
		}

		var d blobDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal blob key", goerr.V("dir", dir))
		}
		keys = append(keys, d.Key)
	}

	return keys, nil
}
