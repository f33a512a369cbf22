package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits a free-text query into lowercase words. Normalize
// must apply the same folding Tokenize does, so that indexed text and
// query tokens compare equal.
type Tokenizer interface {
	Name() string
	Available() bool
	Normalize(text string) string
	Tokenize(text string) []string
}

// WhitespaceTokenizer is the dependency-free path and is always available.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Name() string    { return "whitespace" }
func (WhitespaceTokenizer) Available() bool { return true }

func (WhitespaceTokenizer) Normalize(text string) string { return strings.ToLower(text) }

func (w WhitespaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(w.Normalize(text))
}

// WordTokenizer normalizes to NFKC, case folds with Unicode rules and
// splits on anything that is not a letter or digit. Apostrophes and
// hyphens survive when they sit between two word characters
// ("don't", "sci-fi").
type WordTokenizer struct {
	Lang language.Tag
}

func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{Lang: language.English}
}

func (t *WordTokenizer) Name() string { return "word" }

func (t *WordTokenizer) Available() bool { return t != nil }

// Normalize composes, lowercases for Lang and then folds text:
// decomposed accents, fullwidth letters and final sigma all map to one
// form.
func (t *WordTokenizer) Normalize(text string) string {
	// cases.Caser keeps state between calls and must not be shared.
	lower := cases.Lower(t.Lang).String(norm.NFKC.String(text))
	return cases.Fold().String(lower)
}

func (t *WordTokenizer) Tokenize(text string) []string {
	rs := []rune(t.Normalize(text))

	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for i, r := range rs {
		switch {
		case isWordRune(r):
			cur.WriteRune(r)
		case isJoiner(r) && cur.Len() > 0 && i+1 < len(rs) && isWordRune(rs[i+1]):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

// SelectTokenizer returns the first available candidate, or the
// whitespace tokenizer when none is.
func SelectTokenizer(candidates ...Tokenizer) Tokenizer {
	for _, c := range candidates {
		if c != nil && c.Available() {
			return c
		}
	}
	return WhitespaceTokenizer{}
}
