package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/playsift/levelscope/internal/utils"
)

const manifestFileName = "exports.json"

// Export records one cached export blob in the manifest.
type Export struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ViewID    string    `json:"view_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Rows      int       `json:"rows"`
}

// Manifest tracks the exports cached in a local store.
type Manifest struct {
	Exports   map[string]*Export `json:"exports"`
	UpdatedAt time.Time          `json:"updated_at"`

	// Not serialized: on-disk location of the manifest.
	dir string `json:"-"`
}

// LoadManifest reads exports.json from the store directory. A missing file
// yields an empty manifest.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Manifest{Exports: make(map[string]*Export), dir: dir}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Exports == nil {
		m.Exports = make(map[string]*Export)
	}
	m.dir = dir
	return &m, nil
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("manifest directory not set")
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.dir, manifestFileName), data)
}

// Add records a cached export, replacing any entry with the same blob name.
func (m *Manifest) Add(name, viewID string, rows int) *Export {
	for id, e := range m.Exports {
		if e.Name == name {
			delete(m.Exports, id)
		}
	}
	e := &Export{
		ID:        uuid.NewString(),
		Name:      name,
		ViewID:    viewID,
		FetchedAt: time.Now(),
		Rows:      rows,
	}
	m.Exports[e.ID] = e
	return e
}

// ByName finds the manifest entry for a blob name.
func (m *Manifest) ByName(name string) (*Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Sorted returns the entries newest-first.
func (m *Manifest) Sorted() []*Export {
	out := make([]*Export, 0, len(m.Exports))
	for _, e := range m.Exports {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FetchedAt.Equal(out[j].FetchedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].FetchedAt.After(out[j].FetchedAt)
	})
	return out
}
