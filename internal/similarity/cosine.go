package similarity

import (
	"cmp"
	"slices"
)

// Matrix holds pairwise cosine similarities, values in [0,1].
type Matrix [][]float64

// Cosine is a·b / (|a||b|), clamped to [0,1]. It is 0 when either vector is empty.
func Cosine(a, b Vector) float64 {
	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].Term == b[j].Term:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Term < b[j].Term:
			i++
		default:
			j++
		}
	}

	return min(max(dot/(normA*normB), 0), 1)
}

// Pairwise fits the texts and returns their full similarity matrix.
func Pairwise(texts []string) Matrix {
	space := Fit(texts)

	m := make(Matrix, space.Len())
	for i := range m {
		m[i] = make([]float64, space.Len())
	}
	for i := range m {
		for j := i; j < len(m); j++ {
			sim := Cosine(space.Row(i), space.Row(j))
			m[i][j] = sim
			m[j][i] = sim
		}
	}
	return m
}

// MostSimilar returns every index other than i, most similar to i first.
// Equal similarities keep index order.
func MostSimilar(m Matrix, i int) []int {
	if i < 0 || i >= len(m) {
		return nil
	}

	others := make([]int, 0, len(m)-1)
	for j := range m {
		if j != i {
			others = append(others, j)
		}
	}

	row := m[i]
	slices.SortStableFunc(others, func(a, b int) int {
		return cmp.Compare(row[b], row[a])
	})
	return others
}
