// Package suggest is the prefix predictor: a frequency weighted patricia trie
// that turns a key trail or typed prefix into ranked word completions.
//
// Words are lowercased and NFC normalised on the way in, so lookups are case
// insensitive. Frequencies only rank results; they never decide whether a
// word matches.
//
//	p := suggest.NewPredictor(map[string]int{"the": 100, "then": 40})
//	p.GetSuggestions("th", 5) // [the then]
//	p.PredictWord("teh")      // "the"
//
// A Predictor is safe for concurrent use. Learning a word while another
// goroutine queries is expected: the keyboard commits words on the UI thread
// while suggestions are computed in the background.
package suggest

// WordPredictor is the prefix completion surface used by the keyboard core and the CLI.
type WordPredictor interface {
	// GetSuggestions returns up to limit words starting with prefix, most frequent first.
	GetSuggestions(prefix string, limit int) []Suggestion

	// PredictWord returns the single best word for prefix, or prefix itself.
	PredictWord(prefix string) string

	// AddWord inserts or overwrites a word with an explicit frequency.
	AddWord(word string, frequency int)

	// LearnWord records a user-confirmed word.
	LearnWord(word string) bool

	// Stats returns statistics about the loaded dictionary
	Stats() map[string]int
}
