package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/pagefile"
)

func newTestPool(t *testing.T, capacity int, strategy Strategy) *Pool {
	t.Helper()
	mf := pagefile.NewMemFile(pagefile.DefaultPageSize)
	p, err := Init(mf, capacity, strategy)
	require.NoError(t, err)
	return p
}

// TestFIFOReplacementScenario reproduces the spec's concrete FIFO scenario:
// pool size 3, pages pinned-then-unpinned in order 1,2,3, then 4. Final
// frame contents must be [4,2,3], readIO 4, writeIO 0.
func TestFIFOReplacementScenario(t *testing.T) {
	p := newTestPool(t, 3, FIFO)

	for _, page := range []uint32{1, 2, 3} {
		f, err := p.Pin(page)
		require.NoError(t, err)
		require.NoError(t, p.Unpin(f.PageNum(), false))
	}

	f, err := p.Pin(4)
	require.NoError(t, err)
	require.NoError(t, p.Unpin(f.PageNum(), false))

	require.Equal(t, []uint32{4, 2, 3}, p.FrameContents())
	require.Equal(t, uint64(4), p.ReadIO())
	require.Equal(t, uint64(0), p.WriteIO())
}

// TestLRUReplacementScenario reproduces the spec's concrete LRU scenario:
// pool size 3, access sequence 1,2,3,1,4. Final frame contents [1,4,3],
// readIO 4.
func TestLRUReplacementScenario(t *testing.T) {
	p := newTestPool(t, 3, LRU)

	for _, page := range []uint32{1, 2, 3, 1, 4} {
		f, err := p.Pin(page)
		require.NoError(t, err)
		require.NoError(t, p.Unpin(f.PageNum(), false))
	}

	require.Equal(t, []uint32{1, 4, 3}, p.FrameContents())
	require.Equal(t, uint64(4), p.ReadIO())
}

// TestDirtyFlushScenario: pin page 2, markDirty, unpin, flush; reading block
// 2 straight from the backing file returns the written bytes. writeIO == 1.
func TestDirtyFlushScenario(t *testing.T) {
	mf := pagefile.NewMemFile(pagefile.DefaultPageSize)
	p, err := Init(mf, 3, FIFO)
	require.NoError(t, err)

	f, err := p.Pin(2)
	require.NoError(t, err)
	copy(f.Bytes(), []byte("hello world"))
	require.NoError(t, p.MarkDirty(2))
	require.NoError(t, p.Unpin(2, false))
	require.NoError(t, FlushAll(p))

	require.Equal(t, uint64(1), p.WriteIO())
	require.False(t, p.DirtyFlags()[0])

	buf := make([]byte, mf.PageSize())
	require.NoError(t, mf.ReadBlock(2, buf))
	require.Equal(t, []byte("hello world"), buf[:11])
}

func TestShutdownFailsWithPinnedPages(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	_, err := p.Pin(0)
	require.NoError(t, err)

	require.ErrorIs(t, Shutdown(p), ErrPoolHasPinnedPages)
}

func TestUnpinNonResidentPage(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	require.ErrorIs(t, p.Unpin(7, false), ErrPageNotPinned)
	require.ErrorIs(t, p.MarkDirty(7), ErrPageNotPinned)
	require.ErrorIs(t, p.ForcePage(7), ErrPageNotPinned)
}

func TestNoUnpinnedPages(t *testing.T) {
	p := newTestPool(t, 1, FIFO)
	_, err := p.Pin(0)
	require.NoError(t, err)

	_, err = p.Pin(1)
	require.ErrorIs(t, err, ErrNoUnpinnedPages)
}

func TestGuardReleaseIsIdempotent(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	g, err := Acquire(p, 0)
	require.NoError(t, err)
	require.NoError(t, g.Release(true))
	require.NoError(t, g.Release(true))
	require.Equal(t, 0, p.FixCounts()[0])
	require.True(t, p.DirtyFlags()[0])
}
