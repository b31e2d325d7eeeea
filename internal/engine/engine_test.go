package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/config"
	"github.com/relstore/engine/internal/manifest"
	"github.com/relstore/engine/internal/record"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.BufferPool.Capacity = 4
	return cfg
}

func testSchema() record.Schema {
	return record.Schema{Attrs: []record.Attribute{
		{Name: "id", Type: record.TypeInt},
		{Name: "name", Type: record.TypeString, Length: 8},
	}}
}

func TestCreateOpenInsertCloseTable(t *testing.T) {
	e, err := Open(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, e.CreateTable("students", testSchema()))

	tbl, err := e.OpenTable("students")
	require.NoError(t, err)

	rid, err := tbl.InsertRecord([]any{int32(1), "ada"})
	require.NoError(t, err)

	require.NoError(t, e.CloseTable("students"))

	tbl2, err := e.OpenTable("students")
	require.NoError(t, err)
	defer e.CloseTable("students")

	rec, err := tbl2.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, []any{int32(1), "ada"}, rec.Values)
}

func TestDropTableRemovesFromCatalog(t *testing.T) {
	e, err := Open(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, e.CreateTable("students", testSchema()))
	_, err = e.OpenTable("students")
	require.NoError(t, err)

	require.NoError(t, e.DropTable("students"))

	_, err = e.Manifest.GetTable("students")
	require.ErrorIs(t, err, manifest.ErrTableNotFound)
}

func TestCreateOpenIndexInsertLookup(t *testing.T) {
	e, err := Open(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, e.CreateIndex("students_idx", 4))

	idx, err := e.OpenIndex("students_idx")
	require.NoError(t, err)

	require.NoError(t, idx.InsertKey(1, record.RID{Page: 1, Slot: 0}))

	got, err := idx.FindKey(1)
	require.NoError(t, err)
	require.Equal(t, record.RID{Page: 1, Slot: 0}, got)

	require.NoError(t, e.Close())
}

func TestReopeningEngineRestoresCatalog(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DataDir = dir
	cfg.BufferPool.Capacity = 4

	e, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, e.CreateTable("students", testSchema()))
	require.NoError(t, e.Close())

	e2, err := Open(cfg)
	require.NoError(t, err)
	entry, err := e2.Manifest.GetTable("students")
	require.NoError(t, err)
	require.Equal(t, testSchema(), entry.Schema)
}
