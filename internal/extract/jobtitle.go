package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/spigell/resume-screener/internal/textnorm"
	"github.com/spigell/resume-screener/internal/vocabulary"
)

const (
	minTitleLength = 4
	maxTitleGram   = 3
)

var (
	experienceSections = sectionStrategies(
		"experience",
		"employment history",
		"work history",
		"professional experience",
	)

	rolePatterns = []*regexp.Regexp{
		// seniority, domain and role noun
		regexp.MustCompile(`(?i)\b(?:(?:senior|lead|principal|staff|junior|associate)\s+)?(?:(?:software|data|full[\s-]stack|front[\s-]end|back[\s-]end|devops|ml|ai|cloud|systems|application|mobile|web)\s+)?(?:engineer|developer|scientist|architect|analyst|consultant|specialist)\b`),
		// management
		regexp.MustCompile(`(?i)\b(?:(?:project|product|program|technical|engineering|development|team)\s+)?(?:manager|lead|director|head)\b`),
		// c-suite
		regexp.MustCompile(`(?i)\b(?:chief\s+[a-z]+\s+officer|director|vp|head|chief|cto|ceo|cio|cfo|coo)\b`),
		regexp.MustCompile(`(?i)\b(?:business|systems|data|financial|marketing)\s+(?:analyst|consultant)\b`),
		regexp.MustCompile(`(?i)\b(?:research|teaching|graduate)\s+(?:assistant|associate|fellow)\b`),
		regexp.MustCompile(`(?i)\b(?:attorney|lawyer|counsel|paralegal)\b`),
		regexp.MustCompile(`(?i)\b(?:nurse\s+practitioner|clinical\s+nurse|nurse|rn|lpn)\b`),
		regexp.MustCompile(`(?i)\b(?:sales|account)\s+(?:representative|manager|executive)\b`),
	}
)

// JobTitles matches a fixed library of role templates against the experience
// section, or the whole text when there is none.
func JobTitles(text string) []string {
	return guard(nil, func() []string {
		section, _ := sectionOrAll(text, experienceSections)

		found := make(set)
		for _, pattern := range rolePatterns {
			found.add(keepLonger(pattern.FindAllString(section, -1), minTitleLength)...)
		}
		return found.sorted()
	})
}

// JobTitlesFromVocabulary returns every word, bigram and trigram of the text
// that the vocabulary knows as a job title. Lower-case stop words and tokens
// with non-letters are skipped before n-grams are built.
func JobTitlesFromVocabulary(text string, vocab *vocabulary.Vocabulary) []string {
	if vocab.JobTitleCount() == 0 {
		return nil
	}

	return guard(nil, func() []string {
		words := titleWords(text)

		found := make(set)
		for size := 1; size <= maxTitleGram; size++ {
			for start := 0; start+size <= len(words); start++ {
				gram := strings.Join(words[start:start+size], " ")
				if vocab.HasJobTitle(gram) {
					found.add(gram)
				}
			}
		}
		return found.sorted()
	})
}

func titleWords(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil
	}

	stop := textnorm.English()
	var words []string
	for _, token := range doc.Tokens() {
		// only lower-case tokens are stop words, so "Head Of Marketing" keeps its "Of"
		if (token.Text == strings.ToLower(token.Text) && stop.Contains(token.Text)) || !alphabetic(token.Text) {
			continue
		}
		words = append(words, token.Text)
	}
	return words
}

func alphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
