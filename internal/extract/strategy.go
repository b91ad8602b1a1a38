package extract

import (
	"regexp"
	"slices"
	"strings"
)

// strategy is one step of a fallback cascade. It reports whether it produced a value.
type strategy func(text string) (string, bool)

// firstMatch runs the strategies in order and returns the first produced value.
func firstMatch(text string, strategies ...strategy) (string, bool) {
	for _, try := range strategies {
		if value, ok := try(text); ok {
			return value, true
		}
	}
	return "", false
}

// sectionStrategies builds one strategy per header. A section runs from its
// header up to the next blank line or the end of the text.
func sectionStrategies(headers ...string) []strategy {
	strategies := make([]strategy, 0, len(headers))
	for _, header := range headers {
		re := regexp.MustCompile(`(?i)\b` + header)
		strategies = append(strategies, func(text string) (string, bool) {
			loc := re.FindStringIndex(text)
			if loc == nil {
				return "", false
			}
			section := text[loc[0]:]
			if end := strings.Index(section, "\n\n"); end != -1 {
				section = section[:end]
			}
			return section, true
		})
	}
	return strategies
}

// sectionOrAll returns the located section, or the whole text when no header is found.
func sectionOrAll(text string, strategies []strategy) (string, bool) {
	if section, ok := firstMatch(text, strategies...); ok {
		return section, true
	}
	return text, false
}

// set collects unique strings and returns them sorted.
type set map[string]struct{}

func (s set) add(values ...string) {
	for _, value := range values {
		if value == "" {
			continue
		}
		s[value] = struct{}{}
	}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for value := range s {
		out = append(out, value)
	}
	slices.Sort(out)
	return out
}

// guard turns a panic inside an extractor into its empty result.
func guard[T any](fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback
		}
	}()
	return fn()
}
