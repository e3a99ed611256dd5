package bestiary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beastforge/beastforge/pkg/errors"
)

const corpusJSON = `{
	"https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf": {
		"title2": "Wolf",
		"senses": {"low-light vision": true, "scent": true}
	},
	"https://aonprd.com/NPCDisplay.aspx?ItemName=Bandit": {
		"title2": "Bandit"
	},
	"https://aonprd.com/MonsterDisplay.aspx?ItemName=Goblin%20Dog": {
		"title2": "Goblin Dog"
	},
}`

func TestParsePreservesRecordOrder(t *testing.T) {
	corpus, err := Parse([]byte(corpusJSON), "test")
	require.NoError(t, err)
	require.Equal(t, 3, corpus.Len())

	entries := corpus.Entries()
	assert.Equal(t, "https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf", entries[0].Key)
	assert.Equal(t, "https://aonprd.com/NPCDisplay.aspx?ItemName=Bandit", entries[1].Key)
	assert.Equal(t, "https://aonprd.com/MonsterDisplay.aspx?ItemName=Goblin%20Dog", entries[2].Key)
}

func TestParsePreservesFieldOrder(t *testing.T) {
	corpus, err := Parse([]byte(corpusJSON), "test")
	require.NoError(t, err)

	entry, err := corpus.At(0)
	require.NoError(t, err)

	senses, ok := entry.Raw.Get("senses")
	require.True(t, ok)
	fields, ok := fieldsFrom(senses)
	require.True(t, ok)
	assert.Equal(t, []string{"low-light vision", "scent"}, fields.Keys())
}

func TestParseToleratesTrailingCommas(t *testing.T) {
	// corpusJSON deliberately carries a trailing comma; a strict JSON
	// decoder would reject it.
	_, err := Parse([]byte(corpusJSON), "test")
	assert.NoError(t, err)
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	_, err := Parse([]byte(`{"key": `), "broken.json")
	assert.Error(t, err)
}

func TestCorpusGet(t *testing.T) {
	corpus, err := Parse([]byte(corpusJSON), "test")
	require.NoError(t, err)

	entry, err := corpus.Get("https://aonprd.com/NPCDisplay.aspx?ItemName=Bandit")
	require.NoError(t, err)
	title, ok := entry.Raw.Get("title2")
	require.True(t, ok)
	assert.Equal(t, "Bandit", title)

	_, err = corpus.Get("https://aonprd.com/MonsterDisplay.aspx?ItemName=Tarrasque")
	assert.True(t, errors.IsNotFound(err))
}

func TestCorpusAt(t *testing.T) {
	corpus, err := Parse([]byte(corpusJSON), "test")
	require.NoError(t, err)

	entry, err := corpus.At(2)
	require.NoError(t, err)
	title, _ := entry.Raw.Get("title2")
	assert.Equal(t, "Goblin Dog", title)

	_, err = corpus.At(3)
	assert.True(t, errors.IsNotFound(err))
	_, err = corpus.At(-1)
	assert.True(t, errors.IsNotFound(err))
}

func TestEntryIsNPC(t *testing.T) {
	assert.True(t, Entry{Key: "https://aonprd.com/NPCDisplay.aspx?ItemName=Bandit"}.IsNPC())
	assert.False(t, Entry{Key: "https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf"}.IsNPC())
}
