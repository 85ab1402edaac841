package suggest

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/hbollon/go-edlib"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	// MinPrefixLength is the shortest prefix GetSuggestions answers.
	MinPrefixLength = 2
	// MinLearnLength is the shortest word LearnWord accepts.
	MinLearnLength = 3
	// LearnedFrequency is the starting frequency of a learned word.
	LearnedFrequency = 1

	// maxFallbackScan bounds the words inspected by PredictWord's typo fallback.
	maxFallbackScan = 500
)

var errStopVisit = errors.New("stop visit")

// Suggestion is a predicted word with its stored frequency.
type Suggestion struct {
	Word      string
	Frequency int
}

// Predictor is a frequency ranked prefix trie.
type Predictor struct {
	trie         *patricia.Trie
	wordFreqs    map[string]int
	totalWords   int
	maxFrequency int
	learned      int
	mu           sync.RWMutex
}

// NewPredictor builds a predictor pre-populated with words.
func NewPredictor(words map[string]int) *Predictor {
	p := &Predictor{
		trie:      patricia.NewTrie(),
		wordFreqs: make(map[string]int, len(words)),
	}
	for word, freq := range words {
		p.AddWord(word, freq)
	}
	log.Debugf("Predictor initialised with %d words", p.totalWords)
	return p
}

// AddWord inserts word with frequency, overwriting any previous frequency.
func (p *Predictor) AddWord(word string, frequency int) {
	word = dictionary.Normalize(word)
	if word == "" {
		return
	}
	if frequency < 1 {
		frequency = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.setLocked(word, frequency)
}

func (p *Predictor) setLocked(word string, frequency int) {
	if _, exists := p.wordFreqs[word]; !exists {
		p.totalWords++
	}
	p.trie.Set(patricia.Prefix(word), frequency)
	p.wordFreqs[word] = frequency
	if frequency > p.maxFrequency {
		p.maxFrequency = frequency
	}
}

// LearnWord inserts a user word with frequency 1, or bumps the frequency of a
// word already known. Words shorter than MinLearnLength are ignored.
func (p *Predictor) LearnWord(word string) bool {
	word = dictionary.Normalize(word)
	if utf8.RuneCountInString(word) < MinLearnLength {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	freq, exists := p.wordFreqs[word]
	if !exists {
		p.learned++
		freq = LearnedFrequency
	} else {
		freq++
	}
	p.setLocked(word, freq)
	log.Debugf("Learned word %q (freq %d)", word, freq)
	return true
}

// GetSuggestions returns every dictionary word starting with prefix, ranked
// by frequency, truncated to limit. limit <= 0 returns all matches.
func (p *Predictor) GetSuggestions(prefix string, limit int) []Suggestion {
	lowerPrefix := dictionary.Normalize(prefix)
	if utf8.RuneCountInString(lowerPrefix) < MinPrefixLength {
		return nil
	}

	p.mu.RLock()
	suggestions := SearchTrie(p.trie, lowerPrefix, 0)
	p.mu.RUnlock()

	sortSuggestions(suggestions)
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// PredictWord returns the best completion of prefix. When nothing starts
// with prefix it tries a word one edit away (a swapped pair of letters is a
// single edit) sharing the first letter, and finally returns prefix unchanged.
func (p *Predictor) PredictWord(prefix string) string {
	if top := p.GetSuggestions(prefix, 1); len(top) > 0 {
		return top[0].Word
	}
	if word, ok := p.nearestWord(prefix); ok {
		return word
	}
	return prefix
}

// nearestWord scans words sharing prefix's first letter for one within a
// single edit, preferring the most frequent.
func (p *Predictor) nearestWord(prefix string) (string, bool) {
	lower := dictionary.Normalize(prefix)
	if utf8.RuneCountInString(lower) < MinPrefixLength {
		return "", false
	}
	first, _ := utf8.DecodeRuneInString(lower)

	p.mu.RLock()
	defer p.mu.RUnlock()

	var best Suggestion
	scanned := 0
	err := p.trie.VisitSubtree(patricia.Prefix(string(first)), func(key patricia.Prefix, item patricia.Item) error {
		if scanned >= maxFallbackScan {
			return errStopVisit
		}
		scanned++

		word := string(key)
		if abs(len(word)-len(lower)) > 1 {
			return nil
		}
		if edlib.OSADamerauLevenshteinDistance(lower, word) != 1 {
			return nil
		}
		freq, _ := item.(int)
		if best.Word == "" || freq > best.Frequency || (freq == best.Frequency && word < best.Word) {
			best = Suggestion{Word: word, Frequency: freq}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopVisit) {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
	return best.Word, best.Word != ""
}

// Contains reports whether word is in the dictionary.
func (p *Predictor) Contains(word string) bool {
	word = dictionary.Normalize(word)
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.wordFreqs[word]
	return ok
}

// Frequency returns the stored frequency of word, or 0.
func (p *Predictor) Frequency(word string) int {
	word = dictionary.Normalize(word)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.wordFreqs[word]
}

// Stats returns statistics about the loaded dictionary
func (p *Predictor) Stats() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return map[string]int{
		"totalWords":   p.totalWords,
		"maxFrequency": p.maxFrequency,
		"learnedWords": p.learned,
	}
}

// sortSuggestions orders by frequency, highest first, then alphabetically.
func sortSuggestions(s []Suggestion) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Frequency != s[j].Frequency {
			return s[i].Frequency > s[j].Frequency
		}
		return strings.Compare(s[i].Word, s[j].Word) < 0
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
