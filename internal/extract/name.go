package extract

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

const (
	minNameTokens     = 2
	leadingSentences  = 3
	personEntityLabel = "PERSON"
)

var (
	labeledNamePattern = regexp.MustCompile(`(?i)\bname[ \t]*:[ \t]*([a-z][a-z \t.]*)`)
	leadingNamePattern = regexp.MustCompile(`^([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})`)
	lineNamePattern    = regexp.MustCompile(`([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})[ \t]*\n`)
	sentenceEnd        = regexp.MustCompile(`[.!?]+(?:\s|$)|\n\n`)
)

// nameStrategies is the cascade Name walks through, most reliable first.
func nameStrategies(ner bool) []strategy {
	strategies := []strategy{labeledName, leadingName, lineName}
	if ner {
		strategies = append(strategies, personEntity)
	}
	return strategies
}

// Name guesses the candidate's full name. It expects line structure to be
// kept, see textnorm.Sanitize.
func Name(text string) (string, bool) {
	return name(text, true)
}

func name(text string, ner bool) (string, bool) {
	type result struct {
		value string
		ok    bool
	}

	r := guard(result{}, func() result {
		value, ok := firstMatch(text, nameStrategies(ner)...)
		return result{value: value, ok: ok}
	})

	return r.value, r.ok
}

func labeledName(text string) (string, bool) {
	for _, match := range labeledNamePattern.FindAllStringSubmatch(text, -1) {
		if candidate, ok := fullName(match[1]); ok {
			return candidate, true
		}
	}
	return "", false
}

func leadingName(text string) (string, bool) {
	match := leadingNamePattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return fullName(match[1])
}

func lineName(text string) (string, bool) {
	for _, match := range lineNamePattern.FindAllStringSubmatch(firstSentences(text, leadingSentences), -1) {
		if candidate, ok := fullName(match[1]); ok {
			return candidate, true
		}
	}
	return "", false
}

func personEntity(text string) (string, bool) {
	scope := firstSentences(text, leadingSentences)
	if strings.TrimSpace(scope) == "" {
		return "", false
	}

	doc, err := prose.NewDocument(scope)
	if err != nil {
		return "", false
	}

	for _, entity := range doc.Entities() {
		if entity.Label != personEntityLabel {
			continue
		}
		if candidate, ok := fullName(entity.Text); ok {
			return candidate, true
		}
	}
	return "", false
}

// firstSentences returns the prefix of text holding at most n sentences.
// A blank line ends a sentence as well.
func firstSentences(text string, n int) string {
	ends := sentenceEnd.FindAllStringIndex(text, n)
	if len(ends) < n {
		return text
	}
	return text[:ends[n-1][1]]
}

func fullName(candidate string) (string, bool) {
	candidate = strings.Join(strings.Fields(candidate), " ")
	if len(strings.Fields(candidate)) < minNameTokens {
		return "", false
	}
	return candidate, true
}
