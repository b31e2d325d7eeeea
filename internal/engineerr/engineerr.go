// Package engineerr maps the internal sentinel errors each package returns
// onto the engine's fixed surface error-code set, the shape a CLI driver
// or any other outer caller is expected to branch on.
package engineerr

import (
	"errors"

	"github.com/relstore/engine/internal/btree"
	"github.com/relstore/engine/internal/bufferpool"
	"github.com/relstore/engine/internal/expr"
	"github.com/relstore/engine/internal/manifest"
	"github.com/relstore/engine/internal/pagefile"
	"github.com/relstore/engine/internal/record"
)

// Code is one of the flat surface error kinds. There is no hierarchy:
// every public engine operation returns OK or exactly one Code.
type Code int

const (
	OK Code = iota
	ReadError
	BufferPoolNotInit
	NoUnpinnedPages
	PageNotPinned
	PoolHasPinnedPages
	TableNotFound
	CreateTableFailed
	RecordNotFound
	NoMoreTuples
	NoSuchAttribute
	IMKeyNotFound
	IMNoMoreEntries
	Unknown
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case ReadError:
		return "READ_ERROR"
	case BufferPoolNotInit:
		return "BUFFER_POOL_NOT_INIT"
	case NoUnpinnedPages:
		return "NO_UNPINNED_PAGES"
	case PageNotPinned:
		return "PAGE_NOT_PINNED"
	case PoolHasPinnedPages:
		return "POOL_HAS_PINNED_PAGES"
	case TableNotFound:
		return "TABLE_NOT_FOUND"
	case CreateTableFailed:
		return "CREATE_TABLE_FAILED"
	case RecordNotFound:
		return "RECORD_NOT_FOUND"
	case NoMoreTuples:
		return "NO_MORE_TUPLES"
	case NoSuchAttribute:
		return "NO_SUCH_ATTRIBUTE"
	case IMKeyNotFound:
		return "IM_KEY_NOT_FOUND"
	case IMNoMoreEntries:
		return "IM_NO_MORE_ENTRIES"
	default:
		return "UNKNOWN"
	}
}

// Classify maps err (nil included) to its surface Code.
func Classify(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, pagefile.ErrReadError):
		return ReadError
	case errors.Is(err, bufferpool.ErrBufferPoolNotInit):
		return BufferPoolNotInit
	case errors.Is(err, bufferpool.ErrNoUnpinnedPages):
		return NoUnpinnedPages
	case errors.Is(err, bufferpool.ErrPageNotPinned):
		return PageNotPinned
	case errors.Is(err, bufferpool.ErrPoolHasPinnedPages):
		return PoolHasPinnedPages
	case errors.Is(err, record.ErrTableNotFound), errors.Is(err, manifest.ErrTableNotFound):
		return TableNotFound
	case errors.Is(err, record.ErrCreateTableFailed), errors.Is(err, manifest.ErrTableExists):
		return CreateTableFailed
	case errors.Is(err, record.ErrRecordNotFound):
		return RecordNotFound
	case errors.Is(err, record.ErrNoMoreTuples):
		return NoMoreTuples
	case errors.Is(err, expr.ErrNoSuchAttribute):
		return NoSuchAttribute
	case errors.Is(err, btree.ErrKeyNotFound):
		return IMKeyNotFound
	case errors.Is(err, btree.ErrNoMoreEntries):
		return IMNoMoreEntries
	default:
		return Unknown
	}
}
