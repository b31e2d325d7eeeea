package record

import "errors"

var (
	ErrTableNotFound     = errors.New("record: table not found")
	ErrCreateTableFailed = errors.New("record: create table failed")
	ErrRecordNotFound    = errors.New("record: record not found")
	ErrNoMoreTuples      = errors.New("record: no more tuples")
	ErrTableClosed       = errors.New("record: table is closed")
)
