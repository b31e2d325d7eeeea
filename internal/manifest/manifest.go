// Package manifest is the on-disk catalog of tables and indexes an engine
// handle has created: name, identity, schema or order, and the backing
// file path each maps to. It persists as a single YAML file,
// manifest.yaml, inside the data directory.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/relstore/engine/internal/record"
)

const fileName = "manifest.yaml"

var (
	ErrTableExists    = errors.New("manifest: table already registered")
	ErrTableNotFound  = errors.New("manifest: table not registered")
	ErrIndexExists    = errors.New("manifest: index already registered")
	ErrIndexNotFound  = errors.New("manifest: index not registered")
)

// TableEntry describes one catalogued table.
type TableEntry struct {
	ID        uuid.UUID     `yaml:"id"`
	Name      string        `yaml:"name"`
	Schema    record.Schema `yaml:"schema"`
	FilePath  string        `yaml:"file_path"`
	CreatedAt time.Time     `yaml:"created_at"`
}

// IndexEntry describes one catalogued B+-tree index.
type IndexEntry struct {
	ID        uuid.UUID `yaml:"id"`
	Name      string    `yaml:"name"`
	Order     int       `yaml:"order"`
	FilePath  string    `yaml:"file_path"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Manifest is a loaded catalog. It is not safe for concurrent use; the
// engine package serializes access to it the same way it serializes
// access to everything else (§5: single-client, single-threaded).
type Manifest struct {
	Dir     string                `yaml:"-"`
	Tables  map[string]TableEntry `yaml:"tables"`
	Indexes map[string]IndexEntry `yaml:"indexes"`
}

func path(dir string) string { return filepath.Join(dir, fileName) }

// Load reads dir's manifest.yaml, or returns a fresh empty Manifest if
// none exists yet.
func Load(dir string) (*Manifest, error) {
	m := &Manifest{Dir: dir, Tables: map[string]TableEntry{}, Indexes: map[string]IndexEntry{}}

	data, err := os.ReadFile(path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path(dir), err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", path(dir), err)
	}
	m.Dir = dir
	if m.Tables == nil {
		m.Tables = map[string]TableEntry{}
	}
	if m.Indexes == nil {
		m.Indexes = map[string]IndexEntry{}
	}
	return m, nil
}

// Save overwrites dir's manifest.yaml with the catalog's current state.
func (m *Manifest) Save() error {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("manifest: mkdir %s: %w", m.Dir, err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := os.WriteFile(path(m.Dir), data, 0o644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path(m.Dir), err)
	}
	return nil
}

// AddTable registers a new table and persists the catalog.
func (m *Manifest) AddTable(name string, schema record.Schema, filePath string) (TableEntry, error) {
	if _, ok := m.Tables[name]; ok {
		return TableEntry{}, ErrTableExists
	}
	e := TableEntry{ID: uuid.New(), Name: name, Schema: schema, FilePath: filePath, CreatedAt: time.Now()}
	m.Tables[name] = e
	return e, m.Save()
}

// RemoveTable drops a table's catalog entry and persists the catalog.
func (m *Manifest) RemoveTable(name string) error {
	if _, ok := m.Tables[name]; !ok {
		return ErrTableNotFound
	}
	delete(m.Tables, name)
	return m.Save()
}

// GetTable looks up a table's catalog entry.
func (m *Manifest) GetTable(name string) (TableEntry, error) {
	e, ok := m.Tables[name]
	if !ok {
		return TableEntry{}, ErrTableNotFound
	}
	return e, nil
}

// AddIndex registers a new index and persists the catalog.
func (m *Manifest) AddIndex(name string, order int, filePath string) (IndexEntry, error) {
	if _, ok := m.Indexes[name]; ok {
		return IndexEntry{}, ErrIndexExists
	}
	e := IndexEntry{ID: uuid.New(), Name: name, Order: order, FilePath: filePath, CreatedAt: time.Now()}
	m.Indexes[name] = e
	return e, m.Save()
}

// RemoveIndex drops an index's catalog entry and persists the catalog.
func (m *Manifest) RemoveIndex(name string) error {
	if _, ok := m.Indexes[name]; !ok {
		return ErrIndexNotFound
	}
	delete(m.Indexes, name)
	return m.Save()
}

// GetIndex looks up an index's catalog entry.
func (m *Manifest) GetIndex(name string) (IndexEntry, error) {
	e, ok := m.Indexes[name]
	if !ok {
		return IndexEntry{}, ErrIndexNotFound
	}
	return e, nil
}
