package record

// Predicate is evaluated once per live tuple visited by a scan. The
// expression-tree implementation lives in internal/expr, which depends on
// this package (not the other way around) so the expression-tree
// collaborator stays a leaf; AlwaysTrue below is the only one defined here.
type Predicate interface {
	Eval(rec Record, schema Schema) (bool, error)
}

// Scan is a sequential, predicate-filtering iterator over a table's live
// tuples. Its cursor starts at (page=1, slot=0); Next advances the slot,
// then the page once a page is exhausted.
type Scan struct {
	table     *Table
	predicate Predicate

	page    uint32
	slot    uint32
	scanned uint32
}

// StartScan begins a new scan of t filtered by pred.
func (t *Table) StartScan(pred Predicate) *Scan {
	return &Scan{table: t, predicate: pred, page: 1, slot: 0}
}

// Next returns the next live tuple satisfying the predicate, or
// ErrNoMoreTuples once every live tuple has been visited. On returning
// ErrNoMoreTuples the cursor is reset to the start of the table.
func (s *Scan) Next() (Record, error) {
	t := s.table
	for s.scanned < t.NumTuples {
		if s.slot >= uint32(t.SlotsPerPage) {
			s.slot = 0
			s.page++
		}

		frame, err := t.pool.Pin(s.page)
		if err != nil {
			return Record{}, err
		}

		off := s.slotOffset()
		if frame.Bytes()[off] != StatusLive {
			if err := t.pool.Unpin(s.page, false); err != nil {
				return Record{}, err
			}
			s.slot++
			continue
		}

		values, err := DecodeBody(t.Schema, frame.Bytes()[off+1:off+t.RecordSize])
		if err != nil {
			_ = t.pool.Unpin(s.page, false)
			return Record{}, err
		}
		rec := Record{ID: RID{Page: s.page, Slot: s.slot}, Values: values}

		s.scanned++
		s.slot++
		if err := t.pool.Unpin(s.page, false); err != nil {
			return Record{}, err
		}

		matched, err := s.predicate.Eval(rec, t.Schema)
		if err != nil {
			return Record{}, err
		}
		if matched {
			return rec, nil
		}
	}

	s.reset()
	return Record{}, ErrNoMoreTuples
}

func (s *Scan) slotOffset() int { return s.table.slotOffset(s.slot) }

func (s *Scan) reset() {
	s.page = 1
	s.slot = 0
	s.scanned = 0
}

// Close ends the scan. It performs no I/O of its own: Next never leaves a
// page pinned between calls.
func (s *Scan) Close() error { return nil }

// AlwaysTrue is a predicate matching every tuple, useful for full scans.
type AlwaysTrue struct{}

func (AlwaysTrue) Eval(Record, Schema) (bool, error) { return true, nil }
