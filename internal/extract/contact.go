package extract

import (
	"regexp"
	"strings"
)

const maxPhoneLength = 16

var (
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9.\-+_]+@[a-z0-9.\-+_]+\.[a-z]+`)
	phonePattern = regexp.MustCompile(`[+(]?[1-9][0-9 .\-()]{8,}[0-9]`)
)

// Emails returns every e-mail address in the text, left to right, lower-cased.
func Emails(text string) []string {
	return guard(nil, func() []string {
		matches := emailPattern.FindAllString(text, -1)
		if len(matches) == 0 {
			return nil
		}
		emails := make([]string, 0, len(matches))
		for _, match := range matches {
			emails = append(emails, strings.ToLower(match))
		}
		return emails
	})
}

// Phone returns the first phone-like digit sequence. Spans of 16 characters or
// more are rejected rather than searched further.
func Phone(text string) (string, bool) {
	type result struct {
		value string
		ok    bool
	}

	r := guard(result{}, func() result {
		number := phonePattern.FindString(text)
		if number == "" {
			return result{}
		}
		if len(number) >= maxPhoneLength || !strings.Contains(text, number) {
			return result{}
		}
		return result{value: number, ok: true}
	})

	return r.value, r.ok
}
