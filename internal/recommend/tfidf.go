// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// editionMarkers are print-variant notations stripped before tokenization so
// different printings of one series share a vocabulary.
var editionMarkers = regexp.MustCompile(`モノクロ版|カラー版|完全版|新装版`)

// TermProfile maps normalized terms to TF-IDF weights. A profile is built
// per request from the user's library texts and discarded afterwards; it is
// never persisted or shared between users.
type TermProfile map[string]float64

// WeightedTerm pairs a profile term with its weight for display.
type WeightedTerm struct {
	Term   string  `json:"term" yaml:"term"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// TopTerms returns the n heaviest terms, heaviest first. Equal weights break
// alphabetically so output is reproducible.
func (p TermProfile) TopTerms(n int) []WeightedTerm {
	terms := make([]WeightedTerm, 0, len(p))
	for t, w := range p {
		terms = append(terms, WeightedTerm{Term: t, Weight: w})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].Term < terms[j].Term
	})
	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

const (
	kindNone = iota
	kindLatin
	kindHan
	kindHiragana
	kindKatakana
)

func classOf(r rune) int {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return kindLatin
	case unicode.Is(unicode.Han, r):
		return kindHan
	case unicode.Is(unicode.Hiragana, r):
		return kindHiragana
	case unicode.Is(unicode.Katakana, r):
		return kindKatakana
	case unicode.IsLetter(r):
		return kindLatin
	}
	return kindNone
}

// Tokenize splits text into scoring terms without assuming a script. Latin
// letter and digit runs become lowercased tokens; each contiguous run of Han,
// hiragana, or katakana becomes a token of its own, so 進撃の巨人 yields
// 進撃, の, 巨人. Single-letter latin tokens carry no signal and are dropped;
// single-rune CJK tokens are kept.
func Tokenize(text string) []string {
	text = editionMarkers.ReplaceAllString(text, " ")

	var tokens []string
	var cur []rune
	curKind := kindNone

	flush := func() {
		if len(cur) == 0 {
			return
		}
		tok := strings.ToLower(string(cur))
		n := len(cur)
		cur = cur[:0]
		if curKind == kindLatin && n < 2 {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range text {
		k := classOf(r)
		if k == kindNone {
			flush()
			curKind = kindNone
			continue
		}
		if k != curKind {
			flush()
			curKind = k
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

// corpus holds per-document term frequencies and corpus-wide document
// frequencies. Document indexes are the caller's; the recommender appends
// the user document last.
type corpus struct {
	tf []map[string]float64
	df map[string]int
	n  int
}

func newCorpus(docs []string) *corpus {
	c := &corpus{
		tf: make([]map[string]float64, len(docs)),
		df: make(map[string]int),
		n:  len(docs),
	}
	for i, doc := range docs {
		c.tf[i] = termFrequency(Tokenize(doc))
		for term := range c.tf[i] {
			c.df[term]++
		}
	}
	return c
}

// termFrequency is relative frequency: occurrences over total tokens.
func termFrequency(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}
	total := float64(len(tokens))
	freqs := make(map[string]float64, len(counts))
	for term, count := range counts {
		freqs[term] = float64(count) / total
	}
	return freqs
}

// idf is ln(docs / docs containing term). A term present in every document
// scores zero and drops out of vectors entirely.
func (c *corpus) idf(term string) float64 {
	docFreq := c.df[term]
	if docFreq == 0 {
		return 0
	}
	return math.Log(float64(c.n) / float64(docFreq))
}

// vector returns the TF-IDF weights of document i.
func (c *corpus) vector(i int) TermProfile {
	tf := c.tf[i]
	v := make(TermProfile, len(tf))
	for term, f := range tf {
		if w := f * c.idf(term); w > 0 {
			v[term] = w
		}
	}
	return v
}

// cosine returns the cosine similarity of two sparse vectors, in [0, 1].
// Zero magnitude on either side yields 0.0. Terms are visited in sorted
// order so float accumulation is identical run to run.
func cosine(a, b TermProfile) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot float64
	for _, term := range sortedTerms(a) {
		if bw, ok := b[term]; ok {
			dot += a[term] * bw
		}
	}
	if dot == 0 {
		return 0
	}
	ma, mb := magnitude(a), magnitude(b)
	if ma == 0 || mb == 0 {
		return 0
	}
	return math.Min(dot/(ma*mb), 1.0)
}

func magnitude(v TermProfile) float64 {
	var sum float64
	for _, term := range sortedTerms(v) {
		sum += v[term] * v[term]
	}
	return math.Sqrt(sum)
}

func sortedTerms(v TermProfile) []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
