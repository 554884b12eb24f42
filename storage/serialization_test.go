package storage

import (
	"testing"

	"github.com/poiesic/hobbyfind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryRoundTrip(t *testing.T) {
	entry := &core.IndexEntry{
		ID:     42,
		Text:   "user_id: 42\nabout: hiking and camping\n",
		Vector: []float32{0.1, -0.5, 0.83, 0},
	}

	data := MarshalEntry(entry)
	require.NotEmpty(t, data)
	assert.Equal(t, len(data), IndexEntrySer.Size(*entry))

	decoded, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, decoded.ID)
	assert.Equal(t, entry.Text, decoded.Text)
	assert.Equal(t, entry.Vector, decoded.Vector)
}

func TestEntrySkip(t *testing.T) {
	entry := &core.IndexEntry{ID: 7, Text: "user_id: 7\nabout: chess\n", Vector: []float32{1, 2, 3}}
	data := MarshalEntry(entry)

	n, err := IndexEntrySer.Skip(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
}

func TestUnmarshalEntry_Corrupt(t *testing.T) {
	_, err := UnmarshalEntry([]byte{0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
