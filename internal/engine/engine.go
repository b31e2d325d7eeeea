// Package engine is the top-level facade: it wires the catalog
// (internal/manifest), the slotted-page record manager (internal/record)
// and the B+-tree index (internal/btree) together behind a single handle
// a CLI driver or any other caller can hold.
package engine

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/relstore/engine/internal/btree"
	"github.com/relstore/engine/internal/config"
	"github.com/relstore/engine/internal/manifest"
	"github.com/relstore/engine/internal/record"
)

// Engine is an open handle over one data directory's tables and indexes.
// It is not safe for concurrent use: §5 of the design this follows scopes
// the whole storage stack to a single client.
type Engine struct {
	cfg      config.Config
	Manifest *manifest.Manifest

	tables  map[string]*record.Table
	indexes map[string]*btree.Tree
}

// Open loads (or initializes) the catalog at cfg.Storage.DataDir.
func Open(cfg config.Config) (*Engine, error) {
	m, err := manifest.Load(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		Manifest: m,
		tables:   make(map[string]*record.Table),
		indexes:  make(map[string]*btree.Tree),
	}, nil
}

func (e *Engine) tablePath(name string) string {
	return filepath.Join(e.cfg.Storage.DataDir, "tables", name+".tbl")
}

func (e *Engine) indexPath(name string) string {
	return filepath.Join(e.cfg.Storage.DataDir, "indexes", name+".btr")
}

// CreateTable creates a new table on disk and registers it in the
// catalog.
func (e *Engine) CreateTable(name string, schema record.Schema) error {
	path := e.tablePath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := record.CreateTable(path, schema, e.cfg.Storage.PageSize); err != nil {
		return err
	}
	if _, err := e.Manifest.AddTable(name, schema, path); err != nil {
		return err
	}
	slog.Debug("engine: created table", "name", name)
	return nil
}

// OpenTable opens (or returns the already-open handle for) a catalogued
// table.
func (e *Engine) OpenTable(name string) (*record.Table, error) {
	if tbl, ok := e.tables[name]; ok {
		return tbl, nil
	}
	entry, err := e.Manifest.GetTable(name)
	if err != nil {
		return nil, err
	}
	tbl, err := record.OpenTable(entry.FilePath, e.cfg.BufferPool.Capacity, e.cfg.Strategy())
	if err != nil {
		return nil, err
	}
	e.tables[name] = tbl
	return tbl, nil
}

// CloseTable closes a table's open handle, if any.
func (e *Engine) CloseTable(name string) error {
	tbl, ok := e.tables[name]
	if !ok {
		return nil
	}
	delete(e.tables, name)
	return tbl.CloseTable()
}

// DropTable closes a table (if open) and removes it from disk and the
// catalog.
func (e *Engine) DropTable(name string) error {
	if err := e.CloseTable(name); err != nil {
		return err
	}
	entry, err := e.Manifest.GetTable(name)
	if err != nil {
		return err
	}
	if err := record.DeleteTable(entry.FilePath); err != nil {
		return err
	}
	return e.Manifest.RemoveTable(name)
}

// CreateIndex creates a new B+-tree index on disk and registers it in the
// catalog.
func (e *Engine) CreateIndex(name string, order int) error {
	path := e.indexPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := btree.CreateBtree(path, btree.KeyTypeInt, order); err != nil {
		return err
	}
	if _, err := e.Manifest.AddIndex(name, order, path); err != nil {
		return err
	}
	slog.Debug("engine: created index", "name", name, "order", order)
	return nil
}

// OpenIndex opens (or returns the already-open handle for) a catalogued
// index.
func (e *Engine) OpenIndex(name string) (*btree.Tree, error) {
	if tr, ok := e.indexes[name]; ok {
		return tr, nil
	}
	entry, err := e.Manifest.GetIndex(name)
	if err != nil {
		return nil, err
	}
	tr, err := btree.OpenBtree(entry.FilePath)
	if err != nil {
		return nil, err
	}
	e.indexes[name] = tr
	return tr, nil
}

// CloseIndex closes an index's open handle, if any.
func (e *Engine) CloseIndex(name string) error {
	tr, ok := e.indexes[name]
	if !ok {
		return nil
	}
	delete(e.indexes, name)
	return tr.CloseBtree()
}

// DropIndex closes an index (if open) and removes it from disk and the
// catalog.
func (e *Engine) DropIndex(name string) error {
	if err := e.CloseIndex(name); err != nil {
		return err
	}
	entry, err := e.Manifest.GetIndex(name)
	if err != nil {
		return err
	}
	if err := btree.DeleteBtree(entry.FilePath); err != nil {
		return err
	}
	return e.Manifest.RemoveIndex(name)
}

// Close closes every table and index this handle has opened.
func (e *Engine) Close() error {
	for name := range e.tables {
		if err := e.CloseTable(name); err != nil {
			return err
		}
	}
	for name := range e.indexes {
		if err := e.CloseIndex(name); err != nil {
			return err
		}
	}
	return nil
}
