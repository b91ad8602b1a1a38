package extract

import (
	"github.com/spigell/resume-screener/internal/textnorm"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

// Result holds every attribute extracted from one document. Missing values are
// nil or empty, never an error.
type Result struct {
	Name      *string  `json:"name"`
	Emails    []string `json:"emails"`
	Phone     *string  `json:"phone"`
	Education []string `json:"education"`
	JobTitles []string `json:"job_titles"`
	Skills    Skills   `json:"skills"`
}

// Email returns the first e-mail address, or "".
func (r Result) Email() string {
	if len(r.Emails) == 0 {
		return ""
	}
	return r.Emails[0]
}

type Options struct {
	// DisableNER skips the entity recognition fallback of the name cascade.
	DisableNER bool
}

// Extract runs every extractor over the sanitized text.
func Extract(text string, vocab *vocabulary.Vocabulary, opts Options) Result {
	text = textnorm.Sanitize(text)

	result := Result{
		Emails:    Emails(text),
		Education: union(Education(text), EducationByKeyword(text, vocab)),
		JobTitles: union(JobTitles(text), JobTitlesFromVocabulary(text, vocab)),
		Skills:    FindSkills(text, vocab),
	}

	if value, ok := name(text, !opts.DisableNER); ok {
		result.Name = &value
	}
	if value, ok := Phone(text); ok {
		result.Phone = &value
	}

	return result
}

func union(lists ...[]string) []string {
	found := make(set)
	for _, list := range lists {
		found.add(list...)
	}
	return found.sorted()
}
