package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBasics(t *testing.T) {
	assert := assert.New(t)

	idx := NewIndex(DefaultEntries())
	assert.Equal(len(DefaultEntries()), idx.Size())

	matches := idx.FindAll("you are so stupid")
	require.Len(t, matches, 1)
	assert.Equal("stupid", matches[0].Term)
	assert.Equal("english", matches[0].Language)
	assert.Equal(1, matches[0].Severity)
	assert.Equal(1, TotalSeverity(matches))

	assert.Empty(idx.FindAll("what a lovely day"))
	assert.Empty(idx.FindAll(""))
}

func TestIndexCaseInsensitive(t *testing.T) {
	assert := assert.New(t)

	idx := NewIndex([]Entry{{Phrase: "Loser", Language: "english", Severity: 1}})
	matches := idx.FindAll("LOSER says what")
	require.Len(t, matches, 1)
	assert.Equal("loser", matches[0].Term)
}

func TestIndexOverlappingMatches(t *testing.T) {
	assert := assert.New(t)

	idx := NewIndex([]Entry{
		{Phrase: "i will kill you", Language: "english", Severity: 3},
		{Phrase: "die", Language: "english", Severity: 3},
	})

	matches := idx.FindAll("i will kill you die")
	require.Len(t, matches, 2)
	terms := []string{matches[0].Term, matches[1].Term}
	assert.Contains(terms, "i will kill you")
	assert.Contains(terms, "die")
	assert.Equal(6, TotalSeverity(matches))
}

func TestIndexPrefixPhrases(t *testing.T) {
	// a phrase that is a prefix of a longer phrase matches independently
	assert := assert.New(t)

	idx := NewIndex([]Entry{
		{Phrase: "hate", Language: "english", Severity: 1},
		{Phrase: "hate you", Language: "english", Severity: 3},
	})

	matches := idx.FindAll("i hate you")
	require.Len(t, matches, 2)
	assert.Equal("hate", matches[0].Term)
	assert.Equal("hate you", matches[1].Term)
}

func TestIndexSubstringAnchoring(t *testing.T) {
	// substring matching has no word boundaries: "die" matches inside "diet"
	assert := assert.New(t)

	idx := NewIndex([]Entry{{Phrase: "die", Language: "english", Severity: 3}})
	matches := idx.FindAll("starting a new diet today")
	require.Len(t, matches, 1)
	assert.Equal("die", matches[0].Term)
}

func TestIndexIdempotent(t *testing.T) {
	assert := assert.New(t)

	idx := NewIndex(DefaultEntries())
	text := "you worthless pathetic loser"

	first := idx.FindAll(text)
	for i := 0; i < 10; i++ {
		assert.Equal(first, idx.FindAll(text))
	}
}

func TestLoadEntriesFromFileJSON(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	p := filepath.Join(dir, "lexicon.json")
	blob := `[
		{"phrase": "baka", "language": "japanese", "severity": 1},
		{"phrase": "idiota", "language": "spanish", "severity": 1}
	]`
	require.NoError(t, os.WriteFile(p, []byte(blob), 0644))

	entries, err := LoadEntriesFromFileJSON(p)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal("japanese", entries[0].Language)

	idx := NewIndex(entries)
	matches := idx.FindAll("no seas idiota")
	require.Len(t, matches, 1)
	assert.Equal("spanish", matches[0].Language)
}

func TestLoadEntriesRejectsBadSeverity(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "lexicon.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"phrase": "x", "language": "english", "severity": 0}]`), 0644))

	_, err := LoadEntriesFromFileJSON(p)
	assert.Error(t, err)
}

func TestLoadEntriesMissingFile(t *testing.T) {
	_, err := LoadEntriesFromFileJSON("/does/not/exist.json")
	assert.Error(t, err)
}
