package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelCopyFromSource(t *testing.T) {
	rows := make(chan []any, 2)
	rows <- []any{"P-1", "Pump 1"}
	rows <- []any{"P-2", "Pump 2"}
	close(rows)

	src := &channelCopyFromSource{rows: rows}

	var got [][]any
	for src.Next() {
		v, err := src.Values()
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.NoError(t, src.Err())
	assert.Equal(t, [][]any{{"P-1", "Pump 1"}, {"P-2", "Pump 2"}}, got)
}
