package similarity

import (
	"cmp"
	"math"
	"slices"

	"github.com/spigell/resume-screener/internal/textnorm"
)

// Ranked is the similarity of one corpus entry to the reference, in percent.
type Ranked struct {
	Index      int
	Similarity float64
}

// Score compares one document with a reference text and returns the cosine
// similarity in percent, rounded to 2 decimals.
func Score(document, reference string, stop textnorm.StopWords) float64 {
	space := Fit([]string{
		textnorm.CleanForVectorization(reference, stop),
		textnorm.CleanForVectorization(document, stop),
	})
	if space.VocabularySize() == 0 {
		return 0
	}

	return math.Round(Cosine(space.Row(0), space.Row(1))*100*100) / 100
}

// Rank fits the reference together with the corpus and orders the corpus by
// similarity to the reference, highest first. Ties keep corpus order.
func Rank(corpus []string, reference string, stop textnorm.StopWords) []Ranked {
	if len(corpus) == 0 {
		return []Ranked{}
	}

	texts := make([]string, 0, len(corpus)+1)
	texts = append(texts, textnorm.CleanForVectorization(reference, stop))
	for _, doc := range corpus {
		texts = append(texts, textnorm.CleanForVectorization(doc, stop))
	}

	space := Fit(texts)
	ranked := make([]Ranked, len(corpus))
	for i := range corpus {
		ranked[i] = Ranked{Index: i}
		if space.VocabularySize() > 0 {
			ranked[i].Similarity = Cosine(space.Row(0), space.Row(i+1)) * 100
		}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	return ranked
}
