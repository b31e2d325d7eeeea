package pagefile

import (
	"fmt"
	"io"

	"github.com/dsnet/golib/memfile"
)

// MemFile is an in-memory File backend for tests and benchmarks, so the
// buffer pool and record manager can be exercised without touching disk.
// It is a thin block-addressed wrapper over memfile.File: reads and writes
// go through ReadAt/WriteAt, and memfile.File auto-extends its backing
// buffer on a WriteAt past its current end, so there is no separate
// capacity bookkeeping here beyond the page-count high-water mark.
type MemFile struct {
	mf        *memfile.File
	pageSize  int
	pageCount uint32
}

var _ File = (*MemFile)(nil)

// NewMemFile creates an empty in-memory paged file.
func NewMemFile(pageSize int) *MemFile {
	return &MemFile{
		mf:       memfile.New(nil),
		pageSize: pageSize,
	}
}

func (m *MemFile) PageSize() int     { return m.pageSize }
func (m *MemFile) PageCount() uint32 { return m.pageCount }

func (m *MemFile) ReadBlock(n uint32, buf []byte) error {
	if len(buf) != m.pageSize {
		return fmt.Errorf("pagefile: buf size %d != page size %d", len(buf), m.pageSize)
	}
	if n >= m.pageCount {
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}
	off := int64(n) * int64(m.pageSize)
	if _, err := m.mf.ReadAt(buf, off); err != nil && err != io.EOF {
		return fmt.Errorf("%w: read page %d: %v", ErrReadError, n, err)
	}
	return nil
}

func (m *MemFile) WriteBlock(n uint32, buf []byte) error {
	if len(buf) != m.pageSize {
		return fmt.Errorf("pagefile: buf size %d != page size %d", len(buf), m.pageSize)
	}
	off := int64(n) * int64(m.pageSize)
	if _, err := m.mf.WriteAt(buf, off); err != nil {
		return fmt.Errorf("pagefile: write page %d: %w", n, err)
	}
	if n >= m.pageCount {
		m.pageCount = n + 1
	}
	return nil
}

func (m *MemFile) Close() error {
	return m.mf.Close()
}
