package badger

import (
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/reiver/go-porterstemmer"
)

// BM25 parameters
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Stop words removed before indexing and querying
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true,
}

// tokenize lowercases text, splits it on anything that is not a letter or
// digit, drops stop words and single characters, and stems what is left.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) <= 1 || stopWords[word] {
			continue
		}
		if stemmed := stem(word); stemmed != "" {
			tokens = append(tokens, stemmed)
		}
	}
	return tokens
}

// stem applies the Porter stemmer, falling back to the word itself if the
// stemmer panics on unusual input.
func stem(word string) (stemmed string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Default().Warn("recovered from panic while stemming", "token", word, "panic", r)
			stemmed = word
		}
	}()
	return porterstemmer.StemString(word)
}

// termStats holds what BM25 needs to know about one document.
type termStats struct {
	freqs  map[string]int
	length int
}

func newTermStats(text string) termStats {
	tokens := tokenize(text)
	freqs := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freqs[t]++
	}
	return termStats{freqs: freqs, length: len(tokens)}
}

// bm25Scores scores every document against the query terms.
// Documents with no matching term score zero.
func bm25Scores(queryTerms []string, docs []termStats) []float64 {
	scores := make([]float64, len(docs))
	if len(docs) == 0 || len(queryTerms) == 0 {
		return scores
	}

	var totalLength int
	docFreq := make(map[string]int, len(queryTerms))
	for _, doc := range docs {
		totalLength += doc.length
		for _, term := range uniqueTerms(queryTerms) {
			if doc.freqs[term] > 0 {
				docFreq[term]++
			}
		}
	}
	avgLength := float64(totalLength) / float64(len(docs))
	if avgLength == 0 {
		return scores
	}

	n := float64(len(docs))
	for i, doc := range docs {
		var score float64
		for _, term := range queryTerms {
			tf := float64(doc.freqs[term])
			if tf == 0 {
				continue
			}
			df := float64(docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := bm25K1 * (1 - bm25B + bm25B*float64(doc.length)/avgLength)
			score += idf * tf * (bm25K1 + 1) / (tf + norm)
		}
		scores[i] = score
	}
	return scores
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
