package engineerr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relstore/engine/internal/btree"
	"github.com/relstore/engine/internal/record"
)

func TestClassify(t *testing.T) {
	require.Equal(t, OK, Classify(nil))
	require.Equal(t, RecordNotFound, Classify(record.ErrRecordNotFound))
	require.Equal(t, NoMoreTuples, Classify(record.ErrNoMoreTuples))
	require.Equal(t, IMKeyNotFound, Classify(btree.ErrKeyNotFound))
	require.Equal(t, IMNoMoreEntries, Classify(btree.ErrNoMoreEntries))
	require.Equal(t, "IM_KEY_NOT_FOUND", IMKeyNotFound.String())
}
