package utils

import (
	"strings"
)

// SuggestionFilter drops repeated suggestions, comparing case-insensitively.
// It is not safe for concurrent use; create one per result list.
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates a filter. Any exclude words are treated as already seen.
func NewSuggestionFilter(exclude ...string) *SuggestionFilter {
	seenWords := make(map[string]bool, len(exclude)+8)
	for _, w := range exclude {
		seenWords[strings.ToLower(w)] = true
	}
	return &SuggestionFilter{seenWords: seenWords}
}

// ShouldInclude checks if a word should be included in results (not a duplicate)
// Returns true if the word should be included, false if it's a duplicate
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}
