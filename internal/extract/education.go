package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/resume-screener/internal/vocabulary"
)

const (
	minDegreeLength      = 6
	minInstitutionLength = 11
	maxKeywordLineLength = 120
)

var (
	educationSections = sectionStrategies(
		"education",
		"academic background",
		"academic qualification",
		"educational qualification",
	)

	// clauses stop at a period or the end of the line
	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:bachelor|master|phd|doctorate)(?:['’]s)?[ \t]+(?:of|in)[ \t]+[^.\n]*`),
		regexp.MustCompile(`(?i)\b[bm]\.(?:tech|sc|e|a|s)\b\.?(?:[ \t]+in)?[ \t]+[^.\n]*`),
		regexp.MustCompile(`(?i)\b[bm](?:tech|sc)\b\.?(?:[ \t]+in)?[ \t]+[^.\n]*`),
		regexp.MustCompile(`(?i)\bph\.?d\b\.?(?:[ \t]+in)?[ \t]+[^.\n]*`),
	}

	institutionPattern = regexp.MustCompile(`(?i)\b(?:university|college|institute|school)[ \t]+of[ \t]+[^.\n]*`)
	lineLabel          = regexp.MustCompile(`^[^:\n]{1,40}:\s*`)
)

// Education returns degrees found in the education section and institutions
// found anywhere in the text.
func Education(text string) []string {
	return guard(nil, func() []string {
		found := make(set)
		section, _ := sectionOrAll(text, educationSections)

		for _, pattern := range degreePatterns {
			found.add(keepLonger(pattern.FindAllString(section, -1), minDegreeLength)...)
		}
		found.add(keepLonger(institutionPattern.FindAllString(text, -1), minInstitutionLength)...)

		return found.sorted()
	})
}

// EducationByKeyword returns the lines of the education section that mention
// an education keyword such as "college" or "diploma". Without an education
// section nothing is returned.
func EducationByKeyword(text string, vocab *vocabulary.Vocabulary) []string {
	return guard(nil, func() []string {
		section, ok := firstMatch(text, educationSections...)
		if !ok {
			return nil
		}

		keywords := vocab.EducationKeywords()
		found := make(set)
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(lineLabel.ReplaceAllString(line, ""))
			if line == "" || utf8.RuneCountInString(line) > maxKeywordLineLength {
				continue
			}
			lower := strings.ToLower(line)
			for _, keyword := range keywords {
				if strings.Contains(lower, keyword) {
					found.add(line)
					break
				}
			}
		}

		return found.sorted()
	})
}

// keepLonger trims every match and keeps those of at least minLen runes.
func keepLonger(matches []string, minLen int) []string {
	out := matches[:0]
	for _, match := range matches {
		match = strings.TrimSpace(match)
		if utf8.RuneCountInString(match) >= minLen {
			out = append(out, match)
		}
	}
	return out
}
