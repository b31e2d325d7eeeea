// Package record implements the slotted-page record manager: schema-driven
// tuple storage with tombstones, free-page tracking, and a
// condition-evaluating scan iterator, layered on top of internal/bufferpool.
package record

import (
	"log/slog"

	"github.com/relstore/engine/internal/bufferpool"
	"github.com/relstore/engine/internal/pagefile"
)

const logPrefix = "record: "

// Table is a paged file holding one schema's tuples. Page 0 holds the
// header (tuple count, page count, free-page hint, schema); pages >= 1 are
// slotted pages, each partitioned into floor(PageSize/RecordSize) equal
// fixed-width slots.
type Table struct {
	Name         string
	Schema       Schema
	RecordSize   int
	PageSize     int
	SlotsPerPage int

	pool *bufferpool.Pool
	file pagefile.File

	NumTuples uint32
	NumPages  uint32
	FreePage  uint32

	closed bool
}

// CreateTable writes a fresh page-0 header for name and closes it. The
// table is not left open; call OpenTable to use it.
func CreateTable(name string, schema Schema, pageSize int) error {
	if pageSize <= 0 {
		pageSize = pagefile.DefaultPageSize
	}
	if err := pagefile.Create(name, pageSize); err != nil {
		return ErrCreateTableFailed
	}
	f, err := pagefile.Open(name, pageSize)
	if err != nil {
		return ErrCreateTableFailed
	}
	defer f.Close()

	h := tableHeader{
		numTuples: 0,
		numPages:  0,
		freePage:  1,
		numAttr:   uint32(len(schema.Attrs)),
		keySize:   uint32(schema.RecordSize()),
		schema:    schema,
	}
	buf := make([]byte, pageSize)
	copy(buf, encodeHeader(h))
	if err := f.WriteBlock(0, buf); err != nil {
		return ErrCreateTableFailed
	}
	return nil
}

// OpenTable opens an existing table, loads its header and boots a buffer
// pool of the given capacity and replacement strategy over its file.
func OpenTable(name string, poolCapacity int, strategy bufferpool.Strategy) (*Table, error) {
	pageSize := pagefile.DefaultPageSize
	file, err := pagefile.Open(name, pageSize)
	if err != nil {
		return nil, ErrTableNotFound
	}

	pool, err := bufferpool.Init(file, poolCapacity, strategy)
	if err != nil {
		file.Close()
		return nil, err
	}

	frame, err := pool.Pin(0)
	if err != nil {
		file.Close()
		return nil, err
	}
	h, err := decodeHeader(frame.Bytes())
	if err != nil {
		_ = pool.Unpin(0, false)
		file.Close()
		return nil, err
	}
	if err := pool.Unpin(0, false); err != nil {
		file.Close()
		return nil, err
	}

	t := &Table{
		Name:         name,
		Schema:       h.schema,
		RecordSize:   int(h.keySize),
		PageSize:     pageSize,
		SlotsPerPage: pageSize / int(h.keySize),
		pool:         pool,
		file:         file,
		NumTuples:    h.numTuples,
		NumPages:     h.numPages,
		FreePage:     h.freePage,
	}
	slog.Debug(logPrefix+"open", "table", name, "numTuples", t.NumTuples, "numPages", t.NumPages)
	return t, nil
}

// CloseTable rewrites the header, flushes every dirty frame and shuts the
// buffer pool down.
func (t *Table) CloseTable() error {
	if t.closed {
		return nil
	}
	frame, err := t.pool.Pin(0)
	if err != nil {
		return err
	}
	h := tableHeader{
		numTuples: t.NumTuples,
		numPages:  t.NumPages,
		freePage:  t.FreePage,
		numAttr:   uint32(len(t.Schema.Attrs)),
		keySize:   uint32(t.RecordSize),
		schema:    t.Schema,
	}
	copy(frame.Bytes(), encodeHeader(h))
	// zero any tail bytes left over from a previous, larger header.
	for i := headerFixedSize + t.Schema.EncodedSize(); i < len(frame.Bytes()); i++ {
		frame.Bytes()[i] = 0
	}
	if err := t.pool.Unpin(0, true); err != nil {
		return err
	}
	if err := bufferpool.Shutdown(t.pool); err != nil {
		return err
	}
	if err := t.file.Close(); err != nil {
		return err
	}
	t.closed = true
	return nil
}

// DeleteTable removes the table's paged file from disk entirely.
func DeleteTable(name string) error {
	return pagefile.Destroy(name)
}

// GetNumTuples returns the number of live (non-tombstone) records.
func (t *Table) GetNumTuples() uint32 { return t.NumTuples }

func (t *Table) slotOffset(slot uint32) int { return int(slot) * t.RecordSize }

// InsertRecord writes values as a new tuple, choosing the first free slot
// starting from the free-page hint, extending the table with a new page if
// none has room. The hint is advisory: insert always re-verifies slot
// status before trusting it, since a stale hint can point at a full page.
func (t *Table) InsertRecord(values []any) (RID, error) {
	body, err := EncodeBody(t.Schema, values)
	if err != nil {
		return RID{}, err
	}

	pageNum := t.FreePage
	if pageNum == 0 {
		pageNum = 1
	}

	for {
		frame, err := t.pool.Pin(pageNum)
		if err != nil {
			return RID{}, err
		}

		slot, found := findFreeSlot(frame.Bytes(), t.SlotsPerPage, t.RecordSize)
		if !found {
			if err := t.pool.Unpin(pageNum, false); err != nil {
				return RID{}, err
			}
			pageNum++
			continue
		}

		off := t.slotOffset(uint32(slot))
		frame.Bytes()[off] = StatusLive
		copy(frame.Bytes()[off+1:off+t.RecordSize], body)

		if err := t.pool.Unpin(pageNum, true); err != nil {
			return RID{}, err
		}

		t.NumTuples++
		if pageNum > t.NumPages {
			t.NumPages = pageNum
		}
		t.FreePage = pageNum

		return RID{Page: pageNum, Slot: uint32(slot)}, nil
	}
}

// findFreeSlot scans a page's slots in order and returns the first whose
// status byte is not '*' (a tombstone or a never-used slot).
func findFreeSlot(page []byte, slots, recordSize int) (int, bool) {
	for s := 0; s < slots; s++ {
		off := s * recordSize
		if page[off] != StatusLive {
			return s, true
		}
	}
	return 0, false
}

// DeleteRecord marks rid's slot as a tombstone. Record body bytes are left
// undisturbed; they are harmless until overwritten by a future insert.
func (t *Table) DeleteRecord(rid RID) error {
	frame, err := t.pool.Pin(rid.Page)
	if err != nil {
		return err
	}
	off := t.slotOffset(rid.Slot)
	frame.Bytes()[off] = StatusTombstone
	t.FreePage = rid.Page
	t.NumTuples--
	return t.pool.Unpin(rid.Page, true)
}

// UpdateRecord overwrites rid's slot in place with values.
func (t *Table) UpdateRecord(rid RID, values []any) error {
	body, err := EncodeBody(t.Schema, values)
	if err != nil {
		return err
	}
	frame, err := t.pool.Pin(rid.Page)
	if err != nil {
		return err
	}
	off := t.slotOffset(rid.Slot)
	frame.Bytes()[off] = StatusLive
	copy(frame.Bytes()[off+1:off+t.RecordSize], body)
	return t.pool.Unpin(rid.Page, true)
}

// GetRecord reads rid's tuple. A tombstoned or never-used slot returns
// ErrRecordNotFound.
func (t *Table) GetRecord(rid RID) (Record, error) {
	frame, err := t.pool.Pin(rid.Page)
	if err != nil {
		return Record{}, err
	}
	defer func() { _ = t.pool.Unpin(rid.Page, false) }()

	off := t.slotOffset(rid.Slot)
	if frame.Bytes()[off] != StatusLive {
		return Record{}, ErrRecordNotFound
	}
	values, err := DecodeBody(t.Schema, frame.Bytes()[off+1:off+t.RecordSize])
	if err != nil {
		return Record{}, err
	}
	return Record{ID: rid, Values: values}, nil
}

// Flush writes every dirty frame of the table's buffer pool to disk.
func (t *Table) Flush() error {
	return bufferpool.FlushAll(t.pool)
}
