package triage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(entries []ConditionEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "2024.1", c.Version())
	assert.Greater(t, c.Len(), 10)
	for _, e := range c.Entries() {
		assert.NotEmpty(t, e.Keywords, e.Title)
		assert.True(t, e.Urgency.valid(), e.Title)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"declaration order", "I have a stomach ache and feel dehydrated", []string{"Stomach Ache", "Dehydration"}},
		{"case insensitive", "HEARTBURN after dinner", []string{"Acidity"}},
		{"phrase must be contained", "burning eyes", nil},
		{"substring inside a longer word", "my toddler is itchy", []string{"Skin Rash"}},
		{"no match", "feeling weird", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Lookup(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestCatalog_EntriesAreCopies(t *testing.T) {
	c := DefaultCatalog()

	entries := c.Entries()
	entries[0].Keywords[0] = "mutated"
	entries[0].Title = "Mutated"

	fresh := c.Entries()
	assert.NotEqual(t, "mutated", fresh[0].Keywords[0])
	assert.NotEqual(t, "Mutated", fresh[0].Title)
}

func TestParseCatalog_NormalizesKeywords(t *testing.T) {
	c, err := ParseCatalog([]byte(`
version: test
conditions:
  - title: Eye Irritation
    keywords: ["  Eye Pain ", "RED EYE"]
    urgency: low
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"eye pain", "red eye"}, c.Entries()[0].Keywords)
	assert.Len(t, c.Lookup("Sharp eye pain since morning"), 1)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"not yaml", "conditions: [", "decode catalog"},
		{"empty", "version: x\nconditions: []\n", "no conditions"},
		{"missing title", "conditions:\n  - keywords: [a]\n    urgency: low\n", "title is required"},
		{"no keywords", "conditions:\n  - title: A\n    urgency: low\n", "at least one keyword"},
		{"blank keyword", "conditions:\n  - title: A\n    keywords: [' ']\n    urgency: low\n", "blank keyword"},
		{"bad urgency", "conditions:\n  - title: A\n    keywords: [a]\n    urgency: critical\n", "unknown urgency"},
		{"duplicate title", "conditions:\n  - title: A\n    keywords: [a]\n    urgency: low\n  - title: a\n    keywords: [b]\n    urgency: low\n", "duplicate title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: v2\nconditions:\n  - title: Hiccups\n    keywords: [hiccup]\n    urgency: low\n"), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", c.Version())
	assert.Equal(t, []string{"Hiccups"}, titles(c.Lookup("constant hiccups")))

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
