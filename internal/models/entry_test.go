package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, NormalizeTags("a, b ,,c"))
	assert.Equal(t, []string{"solo"}, NormalizeTags("  solo  "))
	assert.Equal(t, []string{}, NormalizeTags(""))
	assert.Equal(t, []string{}, NormalizeTags(" , ,, "))
}

func TestEnsureTags(t *testing.T) {
	assert.Equal(t, []string{}, EnsureTags(nil))
	assert.Equal(t, []string{"x"}, EnsureTags([]string{"x"}))
}

func TestPersisted(t *testing.T) {
	assert.False(t, JournalEntry{}.Persisted())
	assert.True(t, JournalEntry{ID: "abc"}.Persisted())
}

func TestJournalEntryJSONShape(t *testing.T) {
	data, err := json.Marshal(JournalEntry{Body: "hello", Tags: []string{}})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	// An unpersisted entry must never serialize an id, and tags stay a
	// JSON array even when empty.
	assert.NotContains(t, m, "id")
	assert.NotContains(t, m, "userId")
	assert.NotContains(t, m, "createdAt")
	assert.Equal(t, []any{}, m["tags"])
	assert.Equal(t, "hello", m["body"])
}
