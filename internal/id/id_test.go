package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	for range 1000 {
		id, err := Generate("ses")
		require.NoError(t, err)
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate("ses")
	require.NoError(t, err)

	prefix, rest, ok := strings.Cut(id, "-")
	require.True(t, ok)
	assert.Equal(t, "ses", prefix)
	assert.Len(t, rest, 21)
}

func TestMustGenerate(t *testing.T) {
	assert.True(t, strings.HasPrefix(MustGenerate("evt"), "evt-"))
}

func TestPassage_Deterministic(t *testing.T) {
	a := Passage("rfscVS0vtbw", 3)

	assert.Equal(t, a, Passage("rfscVS0vtbw", 3))
	assert.NotEqual(t, a, Passage("rfscVS0vtbw", 4))
	assert.NotEqual(t, a, Passage("other", 3))

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}
