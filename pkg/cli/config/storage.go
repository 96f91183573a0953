package config

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/repository/file"
	"github.com/secmon-lab/augur/pkg/repository/firestore"
	"github.com/secmon-lab/augur/pkg/repository/gcs"
	"github.com/secmon-lab/augur/pkg/repository/memory"
	"github.com/secmon-lab/augur/pkg/repository/postgres"
	"github.com/secmon-lab/augur/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage backends
const (
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendGCS       = "gcs"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

const defaultStoragePath = ".augur"

// Storage holds CLI flags for the blob store backing the memory service
type Storage struct {
	backend string
	path    string

	gcsBucket string
	gcsPrefix string

	firestoreProjectID  string
	firestoreDatabaseID string
	firestoreCollection string

	postgresDSN string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Category:    "Storage",
			Usage:       "Storage backend (file, memory, gcs, firestore, postgres)",
			Value:       BackendFile,
			Sources:     cli.EnvVars("AUGUR_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-path",
			Category:    "Storage",
			Usage:       "Directory of the file backend",
			Value:       defaultStoragePath,
			Sources:     cli.EnvVars("AUGUR_STORAGE_PATH"),
			Destination: &s.path,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Category:    "Storage",
			Usage:       "Bucket of the gcs backend",
			Sources:     cli.EnvVars("AUGUR_GCS_BUCKET"),
			Destination: &s.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Category:    "Storage",
			Usage:       "Object name prefix of the gcs backend",
			Sources:     cli.EnvVars("AUGUR_GCS_PREFIX"),
			Destination: &s.gcsPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Storage",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("AUGUR_FIRESTORE_PROJECT_ID"),
			Destination: &s.firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Storage",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("AUGUR_FIRESTORE_DATABASE_ID"),
			Destination: &s.firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Category:    "Storage",
			Usage:       "Firestore collection holding blob documents",
			Value:       firestore.DefaultCollection,
			Sources:     cli.EnvVars("AUGUR_FIRESTORE_COLLECTION"),
			Destination: &s.firestoreCollection,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Category:    "Storage",
			Usage:       "PostgreSQL connection string of the postgres backend",
			Sources:     cli.EnvVars("AUGUR_POSTGRES_DSN"),
			Destination: &s.postgresDSN,
		},
	}
}

func (s *Storage) Backend() string {
	return s.backend
}

// LogValue implements slog.LogValuer. The DSN is never logged.
func (s *Storage) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", s.backend)}
	switch s.backend {
	case BackendFile:
		attrs = append(attrs, slog.String("path", s.path))
	case BackendGCS:
		attrs = append(attrs, slog.String("bucket", s.gcsBucket), slog.String("prefix", s.gcsPrefix))
	case BackendFirestore:
		attrs = append(attrs,
			slog.String("project_id", s.firestoreProjectID),
			slog.String("database_id", s.firestoreDatabaseID),
			slog.String("collection", s.firestoreCollection),
		)
	case BackendPostgres:
		attrs = append(attrs, slog.Bool("dsn_set", s.postgresDSN != ""))
	}
	return slog.GroupValue(attrs...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Configure opens the configured blob store. The caller must close the
// returned closer once the store is no longer used.
func (s *Storage) Configure(ctx context.Context) (interfaces.BlobStore, io.Closer, error) {
	logger := logging.From(ctx)

	switch s.backend {
	case BackendFile:
		store, err := file.New(s.path)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize file storage", goerr.V("path", s.path))
		}
		logger.Debug("Using file storage", "path", s.path)
		return store, nopCloser{}, nil

	case BackendMemory:
		logger.Info("Using in-memory storage, nothing will be persisted")
		return memory.New(), nopCloser{}, nil

	case BackendGCS:
		if s.gcsBucket == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "gcs-bucket is required when using gcs backend")
		}
		store, err := gcs.New(ctx, s.gcsBucket, gcs.WithPrefix(s.gcsPrefix))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize gcs storage")
		}
		logger.Debug("Using GCS storage", "bucket", s.gcsBucket, "prefix", s.gcsPrefix)
		return store, store, nil

	case BackendFirestore:
		if s.firestoreProjectID == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend")
		}
		store, err := firestore.New(ctx, s.firestoreProjectID, s.firestoreDatabaseID, firestore.WithCollection(s.firestoreCollection))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize firestore storage")
		}
		logger.Debug("Using Firestore storage",
			"project_id", s.firestoreProjectID,
			"database_id", s.firestoreDatabaseID,
			"collection", store.Collection(),
		)
		return store, store, nil

	case BackendPostgres:
		if s.postgresDSN == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "postgres-dsn is required when using postgres backend")
		}
		store, err := postgres.New(ctx, s.postgresDSN)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize postgres storage")
		}
		logger.Debug("Using PostgreSQL storage")
		return store, store, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid storage backend", goerr.V("backend", s.backend))
	}
}
