package similarity

import (
	"math"
	"regexp"
	"slices"
)

// tokenPattern keeps runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Entry is one non-zero feature of a Vector.
type Entry struct {
	Term   int
	Weight float64
}

// Vector is a sparse row sorted by Term.
type Vector []Entry

// Norm is the euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// Space is a TF-IDF model fitted on one batch of texts. Rows are only
// comparable with rows of the same Space.
type Space struct {
	terms []string
	idf   []float64
	rows  []Vector
}

// Fit builds the vocabulary of the batch and weights every text with raw term
// counts times the smoothed inverse document frequency ln((1+n)/(1+df))+1.
// Rows are L2-normalized.
func Fit(texts []string) *Space {
	counts := make([]map[string]int, len(texts))
	df := make(map[string]int)

	for i, text := range texts {
		tf := make(map[string]int)
		for _, token := range tokenPattern.FindAllString(text, -1) {
			tf[token]++
		}
		for token := range tf {
			df[token]++
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(texts))
	for i, term := range terms {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([]Vector, len(texts))
	for i, tf := range counts {
		row := make(Vector, 0, len(tf))
		for token, count := range tf {
			term := index[token]
			row = append(row, Entry{Term: term, Weight: float64(count) * idf[term]})
		}
		slices.SortFunc(row, func(a, b Entry) int { return a.Term - b.Term })

		if norm := row.Norm(); norm > 0 {
			for j := range row {
				row[j].Weight /= norm
			}
		}
		rows[i] = row
	}

	return &Space{terms: terms, idf: idf, rows: rows}
}

// Len is the number of fitted texts.
func (s *Space) Len() int {
	return len(s.rows)
}

// VocabularySize is the number of distinct terms in the batch. Zero means every
// similarity in the batch is 0.
func (s *Space) VocabularySize() int {
	return len(s.terms)
}

// Terms returns the sorted vocabulary.
func (s *Space) Terms() []string {
	return slices.Clone(s.terms)
}

// IDF returns the weight of a term, or 0 when the term is unknown.
func (s *Space) IDF(term string) float64 {
	i, ok := slices.BinarySearch(s.terms, term)
	if !ok {
		return 0
	}
	return s.idf[i]
}

// Row returns the normalized vector of the i-th text.
func (s *Space) Row(i int) Vector {
	return s.rows[i]
}
