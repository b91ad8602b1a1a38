package vocabulary

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Category names a group of skills, e.g. "programming" or "databases".
type Category string

// Config is the raw material a Vocabulary is built from.
type Config struct {
	JobTitles         []string
	Skills            map[string][]string
	EducationKeywords []string
}

// Vocabulary is the frozen reference data shared by all extractors. It has no
// mutators: once New returns, it is safe for concurrent reads.
type Vocabulary struct {
	jobTitles  map[string]struct{}
	categories []Category
	skills     map[Category][]string
	education  []string
}

var errEmptyCategory = errors.New("skill category name must not be empty")

// DefaultSkills is the built-in skills dictionary used when none is configured.
func DefaultSkills() map[string][]string {
	return map[string][]string{
		"programming": {"python", "java", "c++", "javascript", "ruby", "php", "sql"},
		"frameworks":  {"django", "flask", "react", "angular", "vue", "spring"},
		"databases":   {"mysql", "postgresql", "mongodb", "oracle", "sql server"},
		"tools":       {"git", "docker", "kubernetes", "jenkins", "aws", "azure", "gcp"},
	}
}

// DefaultEducationKeywords lists words that mark a line as an education entry.
func DefaultEducationKeywords() []string {
	return []string{"school", "college", "university", "academy", "faculty", "institute", "diploma"}
}

// New copies and case-folds the configuration into an immutable Vocabulary.
// Skills and education keywords fall back to the built-in defaults when unset.
func New(cfg Config) (*Vocabulary, error) {
	skills := cfg.Skills
	if len(skills) == 0 {
		skills = DefaultSkills()
	}

	keywords := cfg.EducationKeywords
	if len(keywords) == 0 {
		keywords = DefaultEducationKeywords()
	}

	v := &Vocabulary{
		jobTitles: make(map[string]struct{}, len(cfg.JobTitles)),
		skills:    make(map[Category][]string, len(skills)),
	}

	for _, title := range cfg.JobTitles {
		if key := foldKey(title); key != "" {
			v.jobTitles[key] = struct{}{}
		}
	}

	for name, terms := range skills {
		category := Category(foldKey(name))
		if category == "" {
			return nil, errEmptyCategory
		}
		if _, exists := v.skills[category]; exists {
			return nil, fmt.Errorf("duplicate skill category %q", category)
		}
		folded := uniqueFolded(terms)
		slices.Sort(folded)

		v.categories = append(v.categories, category)
		v.skills[category] = folded
	}
	slices.Sort(v.categories)

	v.education = uniqueFolded(keywords)
	return v, nil
}

// HasJobTitle reports whether the case-folded title is a known job title.
func (v *Vocabulary) HasJobTitle(title string) bool {
	if v == nil {
		return false
	}
	_, ok := v.jobTitles[foldKey(title)]
	return ok
}

func (v *Vocabulary) JobTitleCount() int {
	if v == nil {
		return 0
	}
	return len(v.jobTitles)
}

// Categories returns the skill categories in a stable, sorted order.
func (v *Vocabulary) Categories() []Category {
	if v == nil {
		return nil
	}
	return slices.Clone(v.categories)
}

// Skills returns the terms of a category, sorted.
func (v *Vocabulary) Skills(category Category) []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.skills[category])
}

// EducationKeywords returns the keywords in configuration order.
func (v *Vocabulary) EducationKeywords() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.education)
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func uniqueFolded(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		key := foldKey(value)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
