package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	// registers the "postgres" driver
	_ "github.com/lib/pq"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

// DefaultTable is the table holding blobs
const DefaultTable = "augur_blobs"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Postgres is a BlobStore keeping one row per key
type Postgres struct {
	db    *sql.DB
	table string
}

var _ interfaces.BlobStore = &Postgres{}

type Option func(*Postgres)

// WithTable overrides the table name
func WithTable(name string) Option {
	return func(p *Postgres) {
		if name != "" {
			p.table = name
		}
	}
}

// New opens dsn and creates the blob table if it does not exist
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	p := &Postgres{table: DefaultTable}
	for _, opt := range opts {
		opt(p)
	}
	if !tableNamePattern.MatchString(p.table) {
		return nil, goerr.New("invalid table name", goerr.V("table", p.table))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}
	p.db = db

	if err := p.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			dir TEXT NOT NULL,
			data BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_dir_key_idx ON %s (dir, key)`, p.table, p.table),
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to migrate blob table", goerr.V("table", p.table))
		}
	}
	return nil
}

func dirOf(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[:i+1]
	}
	return ""
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	query := fmt.Sprintf(`SELECT data FROM %s WHERE key = $1`, p.table)
	if err := p.db.QueryRowContext(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrBlobNotFound, "blob not found", goerr.V(model.KeyKey, key))
		}
		return nil, goerr.Wrap(err, "failed to get blob", goerr.V(model.KeyKey, key))
	}
	return data, nil
}

func (p *Postgres) Put(ctx context.Context, key string, data []byte) error {
	if key == "" || strings.HasSuffix(key, "/") {
		return goerr.New("invalid blob key", goerr.V(model.KeyKey, key))
	}
	if data == nil {
		data = []byte{}
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (key, dir, data, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, p.table)
	if _, err := p.db.ExecContext(ctx, stmt, key, dirOf(key), data); err != nil {
		return goerr.Wrap(err, "failed to put blob", goerr.V(model.KeyKey, key))
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, dir string) ([]string, error) {
	query := fmt.Sprintf(`SELECT key FROM %s WHERE dir = $1 ORDER BY key COLLATE "C"`, p.table)
	rows, err := p.db.QueryContext(ctx, query, dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list blobs", goerr.V("dir", dir))
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, goerr.Wrap(err, "failed to scan blob key", goerr.V("dir", dir))
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate blob keys", goerr.V("dir", dir))
	}
	return keys, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
