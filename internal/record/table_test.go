package record

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/bufferpool"
)

func testSchema() Schema {
	return Schema{Attrs: []Attribute{
		{Name: "id", Type: TypeInt},
		{Name: "name", Type: TypeString, Length: 16},
		{Name: "score", Type: TypeFloat},
	}}
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	name := filepath.Join(t.TempDir(), "students.tbl")
	require.NoError(t, CreateTable(name, testSchema(), 0))
	tbl, err := OpenTable(name, 4, bufferpool.FIFO)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.CloseTable() })
	return tbl
}

func TestInsertGetRoundTrip(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.InsertRecord([]any{int32(1), "ada", float32(9.5)})
	require.NoError(t, err)
	require.Equal(t, uint32(1), tbl.GetNumTuples())

	rec, err := tbl.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, []any{int32(1), "ada", float32(9.5)}, rec.Values)
}

func TestDeleteThenGetNotFound(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.InsertRecord([]any{int32(2), "lin", float32(1.0)})
	require.NoError(t, err)

	require.NoError(t, tbl.DeleteRecord(rid))
	require.Equal(t, uint32(0), tbl.GetNumTuples())

	_, err = tbl.GetRecord(rid)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestInsertReusesTombstonedSlot(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.InsertRecord([]any{int32(1), "a", float32(0)})
	require.NoError(t, err)
	require.NoError(t, tbl.DeleteRecord(rid))

	rid2, err := tbl.InsertRecord([]any{int32(2), "b", float32(0)})
	require.NoError(t, err)
	require.Equal(t, rid, rid2)
}

func TestUpdateRecord(t *testing.T) {
	tbl := newTestTable(t)

	rid, err := tbl.InsertRecord([]any{int32(1), "ada", float32(9.5)})
	require.NoError(t, err)

	require.NoError(t, tbl.UpdateRecord(rid, []any{int32(1), "ada2", float32(8.0)}))

	rec, err := tbl.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, []any{int32(1), "ada2", float32(8.0)}, rec.Values)
}

func TestCloseAndReopenPreservesState(t *testing.T) {
	name := filepath.Join(t.TempDir(), "reopen.tbl")
	require.NoError(t, CreateTable(name, testSchema(), 0))

	tbl, err := OpenTable(name, 4, bufferpool.FIFO)
	require.NoError(t, err)
	_, err = tbl.InsertRecord([]any{int32(7), "x", float32(1)})
	require.NoError(t, err)
	require.NoError(t, tbl.CloseTable())

	tbl2, err := OpenTable(name, 4, bufferpool.FIFO)
	require.NoError(t, err)
	defer tbl2.CloseTable()

	require.Equal(t, uint32(1), tbl2.GetNumTuples())
}

// TestScanWithPredicateSkipsTombstonesAndFiltersByCondition reproduces the
// scan scenario: several tuples inserted, one deleted, a predicate selecting
// a subset of the survivors.
func TestScanWithPredicateSkipsTombstonesAndFiltersByCondition(t *testing.T) {
	tbl := newTestTable(t)

	var rids []RID
	for i, name := range []string{"ada", "lin", "kay", "moe"} {
		rid, err := tbl.InsertRecord([]any{int32(i + 1), name, float32(i)})
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	require.NoError(t, tbl.DeleteRecord(rids[1])) // remove "lin"

	s := tbl.StartScan(scoreAbove{min: 1})
	var names []string
	for {
		rec, err := s.Next()
		if err == ErrNoMoreTuples {
			break
		}
		require.NoError(t, err)
		names = append(names, rec.Values[1].(string))
	}
	require.ElementsMatch(t, []string{"kay", "moe"}, names)
}

type scoreAbove struct{ min float32 }

func (p scoreAbove) Eval(rec Record, schema Schema) (bool, error) {
	return rec.Values[schema.AttrIndex("score")].(float32) >= p.min, nil
}

func TestScanStopsAtFirstMatchAndResetsCursor(t *testing.T) {
	tbl := newTestTable(t)
	for i, name := range []string{"a", "b", "c"} {
		_, err := tbl.InsertRecord([]any{int32(i), name, float32(i)})
		require.NoError(t, err)
	}

	s := tbl.StartScan(scoreAbove{min: 2})
	rec, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, "c", rec.Values[1])

	_, err = s.Next()
	require.ErrorIs(t, err, ErrNoMoreTuples)
	require.Equal(t, uint32(0), s.scanned)
}
