package file

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/interfaces"
	"github.com/secmon-lab/augur/pkg/domain/model"
	"github.com/spf13/afero"
)

// File is a BlobStore keeping one file per key on an afero filesystem
type File struct {
	fs afero.Fs
}

var _ interfaces.BlobStore = &File{}

// New stores blobs below root on the OS filesystem. root is created if missing.
func New(root string) (*File, error) {
	if root == "" {
		return nil, goerr.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage root", goerr.V("root", root))
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewWithFs stores blobs on fs, e.g. afero.NewMemMapFs() in tests
func NewWithFs(fs afero.Fs) *File {
	return &File{fs: fs}
}

func toPath(key string) string {
	return filepath.FromSlash(path.Clean("/" + key))
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, toPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(model.ErrBlobNotFound, "blob not found", goerr.V(model.KeyKey, key))
		}
		return nil, goerr.Wrap(err, "failed to read blob", goerr.V(model.KeyKey, key))
	}
	return data, nil
}

func (f *File) Put(ctx context.Context, key string, data []byte) error {
	if key == "" || strings.HasSuffix(key, "/") {
		return goerr.New("invalid blob key", goerr.V(model.KeyKey, key))
	}

	p := toPath(key)
	if err := f.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return goerr.Wrap(err, "failed to create blob directory", goerr.V(model.KeyKey, key))
	}

	// Write to a sibling file and rename so readers never see a torn document
	tmp := p + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write blob", goerr.V(model.KeyKey, key))
	}
	if err := f.fs.Rename(tmp, p); err != nil {
		return goerr.Wrap(err, "failed to replace blob", goerr.V(model.KeyKey, key))
	}
	return nil
}

func (f *File) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := afero.ReadDir(f.fs, toPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to list blobs", goerr.V("dir", dir))
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		keys = append(keys, dir+e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}
