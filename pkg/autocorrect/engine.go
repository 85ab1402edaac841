package autocorrect

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bluele/gcache"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheSize       = 100
	DefaultMaxSuggestions  = 5
	DefaultMaxCandidates   = 500
	DefaultFuzzyScale      = 0.85
	DefaultLearnedCapacity = 5000
	DefaultAutoApply       = 0.8

	TypoConfidence           = 0.95
	CapitalizationConfidence = 0.95
	GrammarConfidence        = 0.85
	CompletionConfidence     = 0.75
	ContextBoost             = 0.05
	PhoneticScale            = 0.7

	// MinWordLength is the shortest word the engine looks at.
	MinWordLength = 2
	// MinLearnLength is the shortest word LearnWord accepts.
	MinLearnLength = 3

	minPhoneticLength = 4
	minPhoneticJW     = 0.7
	bigramRankStep    = 0.02
)

// Config holds the engine's limits and weights. Zero fields take defaults.
type Config struct {
	DefaultLanguage    string
	CacheSize          int
	MaxSuggestions     int
	MaxCandidates      int
	FuzzyScale         float64
	LearnedCapacity    int
	AutoApplyThreshold float64
	// SkipBuiltin leaves the engine without the built-in dictionaries.
	SkipBuiltin bool
}

func DefaultConfig() Config {
	return Config{
		DefaultLanguage:    dictionary.DefaultLanguage,
		CacheSize:          DefaultCacheSize,
		MaxSuggestions:     DefaultMaxSuggestions,
		MaxCandidates:      DefaultMaxCandidates,
		FuzzyScale:         DefaultFuzzyScale,
		LearnedCapacity:    DefaultLearnedCapacity,
		AutoApplyThreshold: DefaultAutoApply,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = d.DefaultLanguage
	}
	c.DefaultLanguage = strings.ToLower(c.DefaultLanguage)
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = d.MaxSuggestions
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = d.MaxCandidates
	}
	if c.FuzzyScale <= 0 || c.FuzzyScale > 1 {
		c.FuzzyScale = d.FuzzyScale
	}
	if c.LearnedCapacity <= 0 {
		c.LearnedCapacity = d.LearnedCapacity
	}
	if c.AutoApplyThreshold <= 0 || c.AutoApplyThreshold > 1 {
		c.AutoApplyThreshold = d.AutoApplyThreshold
	}
	return c
}

// wordList is one language's dictionary.
type wordList struct {
	freq map[string]int
	// byFirst and byCode group words by first rune and by phonetic key,
	// most frequent first
	byFirst map[rune][]string
	byCode  map[string][]string
}

func newWordList(freq map[string]int) *wordList {
	wl := &wordList{
		freq:    freq,
		byFirst: make(map[rune][]string),
		byCode:  make(map[string][]string),
	}
	for w := range freq {
		first, _ := utf8.DecodeRuneInString(w)
		wl.byFirst[first] = append(wl.byFirst[first], w)
		for _, code := range phoneticKeys(w) {
			wl.byCode[code] = append(wl.byCode[code], w)
		}
	}
	byFreq := func(words []string) {
		sort.Slice(words, func(i, j int) bool {
			if freq[words[i]] != freq[words[j]] {
				return freq[words[i]] > freq[words[j]]
			}
			return words[i] < words[j]
		})
	}
	for _, words := range wl.byFirst {
		byFreq(words)
	}
	for _, words := range wl.byCode {
		byFreq(words)
	}
	return wl
}

func (wl *wordList) contains(word string) bool {
	_, ok := wl.freq[word]
	return ok
}

// Engine produces ranked correction suggestions. It is safe for concurrent use.
type Engine struct {
	cfg     Config
	dicts   map[string]*wordList
	learned *LearnedWords
	cache   gcache.Cache
	group   singleflight.Group

	// epoch changes whenever cached results may have gone stale
	epoch     atomic.Uint64
	recovered atomic.Int64
	mu        sync.RWMutex
}

// NewEngine creates an engine, loading the built-in dictionaries unless
// cfg.SkipBuiltin is set.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		cfg:     cfg,
		dicts:   make(map[string]*wordList),
		learned: NewLearnedWords(cfg.LearnedCapacity),
		cache:   gcache.New(cfg.CacheSize).LRU().Build(),
	}
	if !cfg.SkipBuiltin {
		for _, lang := range dictionary.Languages() {
			words, _ := dictionary.Builtin(lang)
			e.AddDictionary(lang, words)
		}
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

// AddDictionary merges words into the dictionary for lang, keeping the
// higher frequency for words already present.
func (e *Engine) AddDictionary(lang string, words map[string]int) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = e.cfg.DefaultLanguage
	}

	e.mu.Lock()
	merged := make(map[string]int, len(words))
	if old, ok := e.dicts[lang]; ok {
		maps.Copy(merged, old.freq)
	}
	for w, f := range words {
		w = dictionary.Normalize(w)
		if w == "" {
			continue
		}
		if old, ok := merged[w]; !ok || f > old {
			merged[w] = f
		}
	}
	e.dicts[lang] = newWordList(merged)
	e.mu.Unlock()

	e.invalidate()
	log.Debugf("Dictionary %s now holds %d words", lang, len(merged))
}

// Languages returns the codes of loaded dictionaries, sorted.
func (e *Engine) Languages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.dicts))
}

// LearnWord adds a user word. Only letters are accepted, at least
// MinLearnLength of them.
func (e *Engine) LearnWord(word string) bool {
	w := dictionary.Normalize(word)
	if utf8.RuneCountInString(w) < MinLearnLength || !utils.IsLettersOnly(w) {
		return false
	}
	if e.learned.Add(w) {
		log.Debugf("Learned word: %s", w)
	}
	e.invalidate()
	return true
}

// IsKnown reports whether word is in the dictionary for lang or learned.
func (e *Engine) IsKnown(word, lang string) bool {
	w := dictionary.Normalize(word)
	return e.dictFor(lang).contains(w) || e.learned.Contains(w)
}

// GetAdvancedSuggestions returns up to MaxSuggestions corrections for word,
// best first. It never panics; a failure yields an empty result.
func (e *Engine) GetAdvancedSuggestions(word string, ctx WordContext, lang string) (out []Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			e.recovered.Add(1)
			log.Errorf("Suggestion generation failed for %q: %v", word, r)
			out = nil
		}
	}()

	word = strings.TrimSpace(word)
	if utf8.RuneCountInString(word) < MinWordLength {
		return nil
	}

	key := cacheKey(word, lang, ctx)
	if v, err := e.cache.Get(key); err == nil {
		return slices.Clone(v.([]Suggestion))
	}

	// a query made after LearnWord must not join a computation from before it
	epoch := e.epoch.Load()
	v, _, _ := e.group.Do(flightKey(key, epoch), func() (any, error) {
		res := e.generate(word, ctx, lang)
		if e.epoch.Load() == epoch {
			_ = e.cache.Set(key, res)
		}
		return res, nil
	})
	return slices.Clone(v.([]Suggestion))
}

// AutoCorrect returns the top suggestion when it is confident enough to
// replace word without asking.
func (e *Engine) AutoCorrect(word string, ctx WordContext, lang string) (string, bool) {
	suggestions := e.GetAdvancedSuggestions(word, ctx, lang)
	if len(suggestions) == 0 {
		return word, false
	}
	top := suggestions[0]
	if top.Category == Completion || top.Confidence < e.cfg.AutoApplyThreshold {
		return word, false
	}
	return top.Suggested, true
}

func (e *Engine) Stats() map[string]int {
	e.mu.RLock()
	dictWords := 0
	for _, wl := range e.dicts {
		dictWords += len(wl.freq)
	}
	langs := len(e.dicts)
	e.mu.RUnlock()

	stats := map[string]int{
		"languages":       langs,
		"dictionaryWords": dictWords,
		"cacheEntries":    e.cache.Len(false),
		"cacheHits":       int(e.cache.HitCount()),
		"cacheMisses":     int(e.cache.MissCount()),
		"recoveredPanics": int(e.recovered.Load()),
	}
	maps.Copy(stats, e.learned.Stats())
	return stats
}

func (e *Engine) invalidate() {
	e.epoch.Add(1)
	e.cache.Purge()
}

func cacheKey(word, lang string, ctx WordContext) string {
	start := "0"
	if ctx.IsStartOfSentence {
		start = "1"
	}
	return strings.Join([]string{
		word,
		strings.ToLower(lang),
		strings.ToLower(strings.TrimSpace(ctx.PreviousWord)),
		start,
	}, "\x00")
}

// dictFor resolves lang, falling back to the default language.
func (e *Engine) dictFor(lang string) *wordList {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if wl, ok := e.dicts[strings.ToLower(lang)]; ok {
		return wl
	}
	if wl, ok := e.dicts[e.cfg.DefaultLanguage]; ok {
		return wl
	}
	return newWordList(map[string]int{})
}

func (e *Engine) generate(word string, ctx WordContext, lang string) []Suggestion {
	lower := dictionary.Normalize(word)
	prev := dictionary.Normalize(ctx.PreviousWord)
	dict := e.dictFor(lang)

	var found []Suggestion
	if dict.contains(lower) || e.learned.Contains(lower) {
		found = append(found, e.contextual(word, lower, prev, dict, true)...)
		found = append(found, e.grammar(word, lower, prev)...)
	} else {
		found = append(found, e.spelling(word, lower, dict)...)
		found = append(found, e.contextual(word, lower, prev, dict, false)...)
		found = append(found, e.typo(word, lower, dict)...)
		found = append(found, e.phonetic(word, lower, dict)...)
	}
	found = append(found, capitalization(word, ctx)...)

	return e.rank(word, found)
}

// candidates returns dictionary and learned words sharing the first rune of lower.
func (e *Engine) candidates(lower string, dict *wordList) []string {
	first, _ := utf8.DecodeRuneInString(lower)
	words := dict.byFirst[first]
	learned := e.learned.WithFirst(first)
	if len(learned) == 0 {
		return words
	}
	out := slices.Clone(words)
	for _, w := range learned {
		if !dict.contains(w) {
			out = append(out, w)
		}
	}
	return out
}

func flightKey(key string, epoch uint64) string {
	return key + "\x00" + strconv.FormatUint(epoch, 10)
}

func editThreshold(n int) int {
	if n <= 4 {
		return 1
	}
	return 2
}

func fuzzyConfidence(a, b string, distance int) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	return 1 - float64(distance)/float64(longest)
}

func correction(original, suggested string, confidence float64, cat Category, reason string, freq int) Suggestion {
	return Suggestion{
		Original:   original,
		Suggested:  utils.ConformCase(original, suggested),
		Confidence: confidence,
		Category:   cat,
		Reason:     reason,
		freq:       freq,
	}
}

// rank orders by confidence then word frequency, drops repeats and the
// unchanged word, and keeps the best MaxSuggestions.
func (e *Engine) rank(original string, found []Suggestion) []Suggestion {
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		return found[i].freq > found[j].freq
	})

	filter := utils.NewSuggestionFilter()
	out := make([]Suggestion, 0, e.cfg.MaxSuggestions)
	for _, s := range found {
		if s.Suggested == original || !filter.ShouldInclude(s.Suggested) {
			continue
		}
		out = append(out, s)
		if len(out) == e.cfg.MaxSuggestions {
			break
		}
	}
	return out
}

func describeEdits(d int, target string) string {
	if d == 1 {
		return fmt.Sprintf("1 edit from %q", target)
	}
	return fmt.Sprintf("%d edits from %q", d, target)
}
