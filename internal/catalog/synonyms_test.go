package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThesaurus(t *testing.T) {
	th, err := ParseThesaurus([]byte(`
synsets:
  - [Love, romance]
  - [love, heart]
  - [war, " battle "]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"heart", "love", "romance"}, th.SynonymsOf("love"))
	assert.Equal(t, []string{"heart", "love", "romance"}, th.SynonymsOf("LOVE"))
	assert.Equal(t, []string{"love", "romance"}, th.SynonymsOf("romance"))
	assert.Equal(t, []string{"battle", "war"}, th.SynonymsOf("battle"))
	assert.Nil(t, th.SynonymsOf("peace"))
	assert.Equal(t, 5, th.Len())
}

func TestParseThesaurus_Invalid(t *testing.T) {
	for name, src := range map[string]string{
		"not yaml":        "synsets: [unterminated",
		"synsets missing": "words: [a, b]",
		"synsets scalar":  "synsets: 3",
		"member scalar":   "synsets:\n  - love\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseThesaurus([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestDefaultThesaurus(t *testing.T) {
	th := DefaultThesaurus()
	assert.Contains(t, th.SynonymsOf("love"), "romance")
	assert.Contains(t, th.SynonymsOf("strange"), "stranger")
}

func TestLoadThesaurus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thesaurus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("synsets:\n  - [ghost, phantom]\n"), 0o600))

	th, err := LoadThesaurus(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost", "phantom"}, th.SynonymsOf("phantom"))
}

func TestLoadThesaurus_Unavailable(t *testing.T) {
	_, err := LoadThesaurus(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("synsets: 1\n"), 0o600))
	_, err = LoadThesaurus(path)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestNilThesaurus(t *testing.T) {
	var th *Thesaurus
	assert.Nil(t, th.SynonymsOf("love"))
	assert.Equal(t, 0, th.Len())
}

func TestStemmingProvider(t *testing.T) {
	p := StemmingProvider{MinLen: 3}

	assert.Equal(t, []string{"war"}, p.SynonymsOf("wars"))
	assert.Equal(t, []string{"run"}, p.SynonymsOf("running"))
	assert.Nil(t, p.SynonymsOf("war"))
	assert.Nil(t, p.SynonymsOf("is"))
}

func TestProviders(t *testing.T) {
	ps := Providers{
		nil,
		IdentityProvider{},
		staticSynonyms{"ghost": {"phantom"}},
		StemmingProvider{MinLen: 3},
	}

	assert.Equal(t, []string{"phantom"}, ps.SynonymsOf("ghost"))
	assert.Equal(t, []string{"ghost"}, ps.SynonymsOf("ghosts"))
	assert.Empty(t, Providers{}.SynonymsOf("ghost"))
}
