package catalog

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Catalog is the immutable in-memory collection of titles. It is built
// once and never written afterwards, so every method is safe for
// concurrent use without locking.
type Catalog struct {
	titles []TitleRecord
	byID   map[string]int

	// title and category in tokenizer-normalized form, index-aligned
	// with titles
	titleKeys    []string
	categoryKeys []string

	tokenizer Tokenizer
	synonyms  SynonymProvider

	loadID   string
	loadedAt time.Time
}

type Option func(*Catalog)

func WithTokenizer(t Tokenizer) Option {
	return func(c *Catalog) { c.tokenizer = t }
}

func WithSynonyms(p SynonymProvider) Option {
	return func(c *Catalog) { c.synonyms = p }
}

func withClock(now func() time.Time) Option {
	return func(c *Catalog) { c.loadedAt = now() }
}

// New takes ownership of a copy of titles. Without options search uses
// whitespace tokens and no synonym expansion.
func New(titles []TitleRecord, opts ...Option) *Catalog {
	c := &Catalog{
		titles:       slices.Clone(titles),
		byID:         make(map[string]int, len(titles)),
		titleKeys:    make([]string, len(titles)),
		categoryKeys: make([]string, len(titles)),
		tokenizer:    WhitespaceTokenizer{},
		synonyms:     IdentityProvider{},
		loadID:       uuid.NewString(),
		loadedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokenizer == nil {
		c.tokenizer = WhitespaceTokenizer{}
	}
	if c.synonyms == nil {
		c.synonyms = IdentityProvider{}
	}

	for i, t := range c.titles {
		if _, dup := c.byID[t.ID]; !dup {
			c.byID[t.ID] = i
		}
		c.titleKeys[i] = c.tokenizer.Normalize(t.Title)
		c.categoryKeys[i] = c.tokenizer.Normalize(t.Category)
	}
	return c
}

func (c *Catalog) Len() int { return len(c.titles) }

func (c *Catalog) LoadID() string { return c.loadID }

func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

func (c *Catalog) TokenizerName() string { return c.tokenizer.Name() }

// ListAll returns every title in source order. The slice is a copy.
func (c *Catalog) ListAll() []TitleRecord {
	return slices.Clone(c.titles)
}

// GetByID returns the first title loaded with the given id.
func (c *Catalog) GetByID(id string) (TitleRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return TitleRecord{}, false
	}
	return c.titles[i], true
}

// FilterByCategory returns titles whose category contains category,
// ignoring case and Unicode form. The empty string matches every title.
func (c *Catalog) FilterByCategory(category string) []TitleRecord {
	q := c.tokenizer.Normalize(category)
	return c.collect(c.categoryKeys, func(key string) bool {
		return strings.Contains(key, q)
	})
}

// SearchByKeyword returns titles containing any query token or any
// synonym of one as a substring, ignoring case. A query with no tokens
// matches nothing.
func (c *Catalog) SearchByKeyword(query string) SearchResult {
	terms := c.Expand(query)
	if len(terms) == 0 {
		return SearchResult{Titles: []TitleRecord{}}
	}

	titles := c.collect(c.titleKeys, func(key string) bool {
		for _, s := range terms {
			if strings.Contains(key, s) {
				return true
			}
		}
		return false
	})
	return SearchResult{Titles: titles, Found: len(titles) > 0}
}

// Expand returns the sorted candidate set for query: every token plus
// every synonym the provider knows for it.
func (c *Catalog) Expand(query string) []string {
	set := make(map[string]struct{})
	for _, tok := range c.tokenizer.Tokenize(query) {
		if tok == "" {
			continue
		}
		set[tok] = struct{}{}
		for _, syn := range c.synonyms.SynonymsOf(tok) {
			if syn = c.tokenizer.Normalize(syn); syn != "" {
				set[syn] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) collect(keys []string, match func(string) bool) []TitleRecord {
	out := make([]TitleRecord, 0)
	for i, k := range keys {
		if match(k) {
			out = append(out, c.titles[i])
		}
	}
	return out
}
