package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
)

// SynonymProvider maps a word to semantically related words. A nil or
// empty answer is valid and degrades search to exact tokens.
type SynonymProvider interface {
	SynonymsOf(word string) []string
}

var ErrProviderUnavailable = errors.New("synonym provider unavailable")

type IdentityProvider struct{}

func (IdentityProvider) SynonymsOf(string) []string { return nil }

// Thesaurus is a static set of synsets: every word in a synset is a
// synonym of every other word in it.
type Thesaurus struct {
	words map[string][]string
}

//go:embed thesaurus.yaml
var defaultThesaurus []byte

func DefaultThesaurus() *Thesaurus {
	t, err := ParseThesaurus(defaultThesaurus)
	if err != nil {
		panic(fmt.Sprintf("embedded thesaurus: %v", err))
	}
	return t
}

// LoadThesaurus reads a YAML thesaurus of the form
//
//	synsets:
//	  - [love, romance, passion]
//	  - [war, battle, combat]
func LoadThesaurus(path string) (*Thesaurus, error) {
	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	t, err := ParseThesaurus(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, path, err)
	}
	return t, nil
}

func ParseThesaurus(b []byte) (*Thesaurus, error) {
	doc, err := yaml.Parser().Unmarshal(b)
	if err != nil {
		return nil, err
	}

	raw, ok := doc["synsets"].([]interface{})
	if !ok {
		return nil, errors.New("synsets: expected a list")
	}

	sets := make(map[string]map[string]struct{})
	for i, item := range raw {
		members, ok := item.([]interface{})
		if !ok {
			return nil, fmt.Errorf("synsets[%d]: expected a list of words", i)
		}

		words := make([]string, 0, len(members))
		for _, m := range members {
			w := strings.ToLower(strings.TrimSpace(fmt.Sprint(m)))
			if w != "" {
				words = append(words, w)
			}
		}

		for _, w := range words {
			if sets[w] == nil {
				sets[w] = make(map[string]struct{})
			}
			for _, o := range words {
				sets[w][o] = struct{}{}
			}
		}
	}

	t := &Thesaurus{words: make(map[string][]string, len(sets))}
	for w, set := range sets {
		t.words[w] = sortedKeys(set)
	}
	return t, nil
}

func (t *Thesaurus) SynonymsOf(word string) []string {
	if t == nil {
		return nil
	}
	return t.words[strings.ToLower(word)]
}

func (t *Thesaurus) Len() int {
	if t == nil {
		return 0
	}
	return len(t.words)
}

// StemmingProvider adds the English snowball stem of a word, so
// "wars" also matches "war". Stems shorter than MinLen are dropped.
type StemmingProvider struct {
	MinLen int
}

func (p StemmingProvider) SynonymsOf(word string) []string {
	stem, err := snowball.Stem(word, "english", true)
	if err != nil || stem == "" || stem == word || len(stem) < p.MinLen {
		return nil
	}
	return []string{stem}
}

// Providers unions the answers of several providers.
type Providers []SynonymProvider

func (ps Providers) SynonymsOf(word string) []string {
	var out []string
	for _, p := range ps {
		if p == nil {
			continue
		}
		out = append(out, p.SynonymsOf(word)...)
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
