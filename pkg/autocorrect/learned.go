package autocorrect

import (
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// LearnedWords is a bounded set of user-learned words. When full, the least
// recently used word is evicted.
type LearnedWords struct {
	words       map[string]int64
	byFirst     map[rune]map[string]struct{}
	accessCount int64
	maxWords    int
	evicted     int
	mu          sync.Mutex
}

// NewLearnedWords creates a set holding at most maxWords words.
func NewLearnedWords(maxWords int) *LearnedWords {
	if maxWords <= 0 {
		maxWords = DefaultLearnedCapacity
	}
	return &LearnedWords{
		words:    make(map[string]int64),
		byFirst:  make(map[rune]map[string]struct{}),
		maxWords: maxWords,
	}
}

// Add inserts word, refreshing it if already present. It reports whether the
// word was new.
func (lw *LearnedWords) Add(word string) bool {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, ok := lw.words[word]; ok {
		lw.markAccessed(word)
		return false
	}
	if len(lw.words) >= lw.maxWords {
		lw.evictLRU()
	}
	lw.words[word] = lw.getNextAccessTime()
	first, _ := utf8.DecodeRuneInString(word)
	bucket, ok := lw.byFirst[first]
	if !ok {
		bucket = make(map[string]struct{})
		lw.byFirst[first] = bucket
	}
	bucket[word] = struct{}{}
	return true
}

// Contains reports whether word is learned and marks it as used.
func (lw *LearnedWords) Contains(word string) bool {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, ok := lw.words[word]; !ok {
		return false
	}
	lw.markAccessed(word)
	return true
}

// WithFirst returns the learned words starting with r, sorted.
func (lw *LearnedWords) WithFirst(r rune) []string {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	bucket := lw.byFirst[r]
	out := make([]string, 0, len(bucket))
	for w := range bucket {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of learned words.
func (lw *LearnedWords) Len() int {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return len(lw.words)
}

func (lw *LearnedWords) Stats() map[string]int {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	return map[string]int{
		"learnedWords":    len(lw.words),
		"maxLearnedWords": lw.maxWords,
		"learnedEvicted":  lw.evicted,
	}
}

func (lw *LearnedWords) markAccessed(word string) {
	lw.words[word] = lw.getNextAccessTime()
}

func (lw *LearnedWords) getNextAccessTime() int64 {
	lw.accessCount++
	return lw.accessCount
}

// evictLRU removes the least recently used word. Caller holds the lock.
func (lw *LearnedWords) evictLRU() {
	var oldestWord string
	oldestTime := int64(-1)
	for word, t := range lw.words {
		if oldestTime == -1 || t < oldestTime {
			oldestTime = t
			oldestWord = word
		}
	}
	if oldestTime == -1 {
		return
	}
	delete(lw.words, oldestWord)
	first, _ := utf8.DecodeRuneInString(oldestWord)
	if bucket, ok := lw.byFirst[first]; ok {
		delete(bucket, oldestWord)
		if len(bucket) == 0 {
			delete(lw.byFirst, first)
		}
	}
	lw.evicted++
	log.Debugf("Evicted learned word: %s", oldestWord)
}
