package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/playsift/levelscope/internal/utils"
)

// Local is a directory-backed Store. Blob names map to file names; nested
// names are rejected so a blob can never escape the store directory.
type Local struct {
	dir string
	log zerolog.Logger
}

// NewLocal opens (creating if needed) a local store rooted at dir.
func NewLocal(dir string, log zerolog.Logger) (*Local, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	return &Local{dir: dir, log: log}, nil
}

// Dir returns the store's root directory.
func (l *Local) Dir() string { return l.dir }

// List returns blob names in sorted order, manifest excluded.
func (l *Local) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list store: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == manifestFileName {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Download reads a blob.
func (l *Local) Download(name string) ([]byte, error) {
	path, err := l.blobPath(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("download %q: %w", name, err)
	}
	return b, nil
}

// Upload writes a blob atomically, replacing any previous version.
func (l *Local) Upload(name string, data []byte) error {
	path, err := l.blobPath(name)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("upload %q: %w", name, err)
	}
	l.log.Debug().Str("blob", name).Int("bytes", len(data)).Msg("uploaded blob")
	return nil
}

func (l *Local) blobPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(l.dir, name), nil
}
