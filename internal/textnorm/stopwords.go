package textnorm

import (
	"strings"
	"sync"

	_ "embed"
)

//go:embed stopwords_en.txt
var englishStopWords string

// StopWords is an immutable set of lower-case words ignored by the vectorizer.
type StopWords struct {
	words map[string]struct{}
}

var (
	english     StopWords
	englishOnce sync.Once
)

// English returns the English stop-word list used for vectorization.
func English() StopWords {
	englishOnce.Do(func() {
		english = NewStopWords(strings.Fields(englishStopWords)...)
	})
	return english
}

// NewStopWords builds a stop-word set from the given words.
func NewStopWords(words ...string) StopWords {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	return StopWords{words: set}
}

// Contains reports whether the lower-cased word is a stop word.
func (s StopWords) Contains(word string) bool {
	if len(s.words) == 0 {
		return false
	}
	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of stop words in the set.
func (s StopWords) Len() int {
	return len(s.words)
}
