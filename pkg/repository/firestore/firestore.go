package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
)

// DefaultCollection is the collection holding blob documents
const DefaultCollection = "augur_blobs"

// Firestore is a BlobStore keeping one document per blob key
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.BlobStore = &Firestore{}

type Option func(*Firestore)

// WithCollection overrides the collection name
func WithCollection(name string) Option {
	return func(f *Firestore) {
		if name != "" {
			f.collection = name
		}
	}
}

// New connects to databaseID of projectID. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Collection returns the collection name in use
func (f *Firestore) Collection() string {
	return f.collection
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
