package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize collapses the document into a single line: control characters are
// stripped, every whitespace run becomes one space and the result is trimmed.
// Applying it twice yields the same string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.ToValidUTF8(raw, ""))

	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeBytes is Normalize for undecoded content. Binary input is not text
// and degrades to an empty string.
func NormalizeBytes(raw []byte) string {
	if !utf8.Valid(raw) {
		return ""
	}
	return Normalize(string(raw))
}

// Sanitize cleans the document the same way Normalize does but keeps line
// breaks, so extractors relying on labeled lines and blank-line delimited
// sections still see them.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToValidUTF8(raw, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	s = norm.NFKC.String(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CleanForVectorization prepares text for the TF-IDF vectorizer. Every
// whitespace separated token has its non-letter characters replaced by spaces
// and is lower-cased; stop words and tokens left blank are dropped.
func CleanForVectorization(text string, stop StopWords) string {
	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))

	for _, token := range tokens {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				return unicode.ToLower(r)
			}
			return ' '
		}, token)

		cleaned = strings.Join(strings.Fields(cleaned), " ")
		if cleaned == "" || stop.Contains(cleaned) {
			continue
		}
		kept = append(kept, cleaned)
	}

	return strings.Join(kept, " ")
}
