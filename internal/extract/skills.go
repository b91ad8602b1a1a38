package extract

import (
	"math"
	"strings"

	"github.com/spigell/resume-screener/internal/vocabulary"
)

// Skills maps every vocabulary category to the terms found for it.
type Skills map[vocabulary.Category][]string

// All returns the distinct terms over every category, sorted.
func (s Skills) All() []string {
	found := make(set)
	for _, terms := range s {
		found.add(terms...)
	}
	return found.sorted()
}

// Count is the number of distinct terms found.
func (s Skills) Count() int {
	return len(s.All())
}

// FindSkills reports, per category, the vocabulary terms contained in the text.
// Matching is a case-insensitive substring test, so "java" is also found in
// "javascript".
func FindSkills(text string, vocab *vocabulary.Vocabulary) Skills {
	categories := vocab.Categories()
	empty := make(Skills, len(categories))
	for _, category := range categories {
		empty[category] = []string{}
	}

	return guard(empty, func() Skills {
		lower := strings.ToLower(text)
		skills := make(Skills, len(categories))
		for _, category := range categories {
			terms := []string{}
			for _, term := range vocab.Skills(category) {
				if strings.Contains(lower, term) {
					terms = append(terms, term)
				}
			}
			skills[category] = terms
		}
		return skills
	})
}

// SkillsMatch is the percentage of required skills found in any category,
// rounded to 2 decimals. Nothing required means 0.
func SkillsMatch(found Skills, required []string) float64 {
	wanted := make(set)
	for _, skill := range required {
		wanted.add(strings.ToLower(strings.Join(strings.Fields(skill), " ")))
	}
	if len(wanted) == 0 {
		return 0
	}

	have := make(set)
	have.add(found.All()...)

	matched := 0
	for skill := range wanted {
		if _, ok := have[skill]; ok {
			matched++
		}
	}

	return math.Round(float64(matched)/float64(len(wanted))*100*100) / 100
}
