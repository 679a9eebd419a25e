package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadCodec(t *testing.T) {
	codec, err := NewPayloadCodec(64)
	require.NoError(t, err)

	t.Run("small payload stays plain", func(t *testing.T) {
		in := []byte(`{"type":"RECEIPT","quantity":"10"}`)
		plain, compressed, algo := codec.Encode(in)

		assert.Equal(t, CompressionNone, algo)
		assert.Nil(t, compressed)
		assert.Equal(t, in, plain)

		out, err := codec.Decode(plain, compressed, algo)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("large payload is compressed", func(t *testing.T) {
		in := append([]byte(`{"reason":"`), bytes.Repeat([]byte("flushing "), 100)...)
		in = append(in, []byte(`"}`)...)
		plain, compressed, algo := codec.Encode(in)

		assert.Equal(t, CompressionZstd, algo)
		assert.Nil(t, plain)
		assert.Less(t, len(compressed), len(in))

		out, err := codec.Decode(plain, compressed, algo)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("corrupt data", func(t *testing.T) {
		_, err := codec.Decode(nil, []byte("not zstd"), CompressionZstd)
		assert.Error(t, err)
	})
}
