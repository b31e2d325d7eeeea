package btree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/record"
)

func newTestTree(t *testing.T, order int) *Tree {
	t.Helper()
	name := filepath.Join(t.TempDir(), "idx.btr")
	require.NoError(t, CreateBtree(name, KeyTypeInt, order))
	tr, err := OpenBtree(name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.CloseBtree() })
	return tr
}

func rid(n uint32) record.RID { return record.RID{Page: n, Slot: 0} }

func scanKeys(t *testing.T, tr *Tree) []int32 {
	t.Helper()
	s := tr.OpenTreeScan()
	var keys []int32
	for {
		k, _, err := s.NextEntry()
		if err == ErrNoMoreEntries {
			break
		}
		require.NoError(t, err)
		keys = append(keys, k)
	}
	return keys
}

// TestStressScenario reproduces the order-3 insert/delete/scan scenario:
// insert [10,20,30,40,50], findKey(30) succeeds, findKey(25) fails,
// deleteKey(20) then scan yields [10,30,40,50], numEntries == 4.
func TestStressScenario(t *testing.T) {
	tr := newTestTree(t, 3)

	for _, k := range []int32{10, 20, 30, 40, 50} {
		require.NoError(t, tr.InsertKey(k, rid(uint32(k))))
	}

	require.Equal(t, []int32{10, 20, 30, 40, 50}, scanKeys(t, tr))

	got, err := tr.FindKey(30)
	require.NoError(t, err)
	require.Equal(t, rid(30), got)

	_, err = tr.FindKey(25)
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, tr.DeleteKey(20))
	require.Equal(t, []int32{10, 30, 40, 50}, scanKeys(t, tr))
	require.Equal(t, 4, tr.GetNumEntries())
}

func TestInsertDuplicateIsNoOp(t *testing.T) {
	tr := newTestTree(t, 3)
	require.NoError(t, tr.InsertKey(1, rid(100)))
	require.NoError(t, tr.InsertKey(1, rid(999)))

	got, err := tr.FindKey(1)
	require.NoError(t, err)
	require.Equal(t, rid(100), got)
	require.Equal(t, 1, tr.GetNumEntries())
}

func TestDeleteThenFindKeyNotFound(t *testing.T) {
	tr := newTestTree(t, 3)
	require.NoError(t, tr.InsertKey(5, rid(5)))
	require.NoError(t, tr.DeleteKey(5))

	_, err := tr.FindKey(5)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestScanAscendingOrderOnLargerTree(t *testing.T) {
	tr := newTestTree(t, 4)
	keys := []int32{50, 10, 40, 20, 60, 30, 70, 5, 15, 25, 35, 45}
	for _, k := range keys {
		require.NoError(t, tr.InsertKey(k, rid(uint32(k))))
	}

	got := scanKeys(t, tr)
	require.Len(t, got, len(keys))
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1], got[i])
	}
}

func TestCloseAndReopenResetsInMemoryTreeButKeepsHeaderCounts(t *testing.T) {
	name := filepath.Join(t.TempDir(), "idx2.btr")
	require.NoError(t, CreateBtree(name, KeyTypeInt, 3))

	tr, err := OpenBtree(name)
	require.NoError(t, err)
	require.NoError(t, tr.InsertKey(1, rid(1)))
	require.NoError(t, tr.InsertKey(2, rid(2)))
	require.NoError(t, tr.CloseBtree())

	tr2, err := OpenBtree(name)
	require.NoError(t, err)
	defer tr2.CloseBtree()

	// By design (see the package doc comment), node contents do not
	// persist: a fresh empty root greets the reopened tree even though
	// the header on disk still carries the old counters.
	require.Equal(t, 0, tr2.GetNumEntries())
	_, err = tr2.FindKey(1)
	require.ErrorIs(t, err, ErrKeyNotFound)

	frame, err := tr2.pool.Pin(0)
	require.NoError(t, err)
	require.Equal(t, uint32(2), decodeHeader(frame.Bytes()).numEntries)
	require.NoError(t, tr2.pool.Unpin(0, false))
}
