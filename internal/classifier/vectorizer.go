package classifier

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// englishStopwords holds common English function words. The list stays
// deliberately small: only grammatical glue is removed, never content
// nouns, which carry the classification signal.
var englishStopwords = func() map[string]struct{} {
	words := strings.Fields(`
		a about above after again against all am an and any are as at be
		because been before being below between both but by can did do does
		doing down during each few for from further had has have having he
		her here hers herself him himself his how i if in into is it its
		itself just me more most my myself no nor not now of off on once
		only or other our ours ourselves out over own same she should so
		some such than that the their theirs them themselves then there
		these they this those through to too under until up very was we
		were what when where which while who whom why will with you your
		yours yourself yourselves`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// TfidfVectorizer turns raw OCR text into fixed-length numeric feature
// vectors: a bag of 1- and 2-term sequences weighted by term frequency
// and corpus rarity, with common-English noise terms removed.
//
// The vocabulary is fitted exactly once at training time and applied
// unchanged at inference; it is never refit. Fields are exported for gob
// serialization inside the model artifact.
type TfidfVectorizer struct {
	MaxFeatures int
	Vocabulary  map[string]int
	IDF         []float64
}

// NewTfidfVectorizer creates an unfitted vectorizer with a capped vocabulary
func NewTfidfVectorizer(maxFeatures int) *TfidfVectorizer {
	if maxFeatures <= 0 {
		maxFeatures = 5000
	}
	return &TfidfVectorizer{MaxFeatures: maxFeatures}
}

// Fitted reports whether a vocabulary has been learned
func (v *TfidfVectorizer) Fitted() bool {
	return len(v.Vocabulary) > 0
}

// Fit learns the vocabulary and inverse document frequencies from the
// training documents. Terms are ranked by corpus frequency with
// lexicographic tie-breaking so fitting is deterministic.
func (v *TfidfVectorizer) Fit(docs []string) {
	termCounts := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		terms := Tokenize(doc)
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			termCounts[term]++
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}

	type termCount struct {
		term  string
		count int
	}
	ranked := make([]termCount, 0, len(termCounts))
	for term, count := range termCounts {
		ranked = append(ranked, termCount{term, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > v.MaxFeatures {
		ranked = ranked[:v.MaxFeatures]
	}

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(ranked))
	v.IDF = make([]float64, len(ranked))
	for i, tc := range ranked {
		v.Vocabulary[tc.term] = i
		// Smoothed IDF keeps unseen-term weights finite
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[tc.term]))) + 1
	}
}

// Transform maps one document onto the fitted vocabulary as an
// L2-normalized TF-IDF vector
func (v *TfidfVectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, term := range Tokenize(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			vec[idx] += v.IDF[idx]
		}
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// TransformAll vectorizes a batch of documents into a dense matrix.
// The vectorizer must be fitted; an empty vocabulary has no matrix shape.
func (v *TfidfVectorizer) TransformAll(docs []string) *mat.Dense {
	rows := len(docs)
	cols := len(v.IDF)
	if rows == 0 || cols == 0 {
		return nil
	}
	out := mat.NewDense(rows, cols, nil)
	for i, doc := range docs {
		out.SetRow(i, v.Transform(doc))
	}
	return out
}

// Tokenize lowercases a document, removes English stopwords, and emits
// unigrams plus adjacent bigrams
func Tokenize(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if _, stop := englishStopwords[w]; !stop {
			words = append(words, w)
		}
	}

	terms := make([]string, 0, len(words)*2)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}
