// Package autocorrect turns one typed word and its surrounding context into a
// ranked list of corrections: spelling, common typos, phonetic matches,
// previous-word context, grammar and capitalisation.
package autocorrect

// Category says which pass produced a suggestion.
type Category string

const (
	Spelling       Category = "SPELLING"
	Typo           Category = "TYPO"
	Phonetic       Category = "PHONETIC"
	Contextual     Category = "CONTEXTUAL"
	Grammar        Category = "GRAMMAR"
	Capitalization Category = "CAPITALIZATION"
	Completion     Category = "COMPLETION"
)

// Suggestion is one candidate replacement for a typed word.
type Suggestion struct {
	Original   string   `msgpack:"original"`
	Suggested  string   `msgpack:"suggested"`
	Confidence float64  `msgpack:"confidence"`
	Category   Category `msgpack:"category"`
	Reason     string   `msgpack:"reason,omitempty"`

	// frequency of the suggested word, used to break confidence ties
	freq int
}

// WordContext is what surrounds the word being corrected.
type WordContext struct {
	PreviousWord       string `msgpack:"previous_word,omitempty"`
	NextWord           string `msgpack:"next_word,omitempty"`
	SentencePosition   int    `msgpack:"sentence_position"`
	IsStartOfSentence  bool   `msgpack:"start_of_sentence"`
	IsAfterPunctuation bool   `msgpack:"after_punctuation"`
}
