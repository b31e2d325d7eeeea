package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/record"
)

func testSchema() record.Schema {
	return record.Schema{Attrs: []record.Attribute{
		{Name: "id", Type: record.TypeInt},
	}}
}

func TestAddTableThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	m, err := Load(dir)
	require.NoError(t, err)

	entry, err := m.AddTable("students", testSchema(), "students.tbl")
	require.NoError(t, err)
	require.NotEqual(t, entry.ID.String(), "")

	reloaded, err := Load(dir)
	require.NoError(t, err)
	got, err := reloaded.GetTable("students")
	require.NoError(t, err)
	require.Equal(t, entry.ID, got.ID)
	require.Equal(t, "students.tbl", got.FilePath)
	require.Equal(t, testSchema(), got.Schema)
}

func TestAddTableTwiceFails(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)

	_, err = m.AddTable("students", testSchema(), "students.tbl")
	require.NoError(t, err)
	_, err = m.AddTable("students", testSchema(), "students.tbl")
	require.ErrorIs(t, err, ErrTableExists)
}

func TestRemoveTable(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)
	_, err = m.AddTable("students", testSchema(), "students.tbl")
	require.NoError(t, err)

	require.NoError(t, m.RemoveTable("students"))
	_, err = m.GetTable("students")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestAddAndRemoveIndex(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)

	_, err = m.AddIndex("students_id_idx", 64, "students_id_idx.btr")
	require.NoError(t, err)

	got, err := m.GetIndex("students_id_idx")
	require.NoError(t, err)
	require.Equal(t, 64, got.Order)

	require.NoError(t, m.RemoveIndex("students_id_idx"))
	_, err = m.GetIndex("students_id_idx")
	require.ErrorIs(t, err, ErrIndexNotFound)
}
