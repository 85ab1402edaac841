// Package keyboard wires the key index, swipe processor, word predictor,
// autocorrect engine and prediction orchestrator into the single surface a
// keyboard host talks to.
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/bastiangx/swipeserve/pkg/autocorrect"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/keyindex"
	"github.com/bastiangx/swipeserve/pkg/predict"
	"github.com/bastiangx/swipeserve/pkg/predict/openai"
	"github.com/bastiangx/swipeserve/pkg/suggest"
	"github.com/bastiangx/swipeserve/pkg/swipe"
	"github.com/charmbracelet/log"
)

// Keyboard is safe for concurrent use, except that swipe processing is
// expected to stay on the goroutine receiving touch events.
type Keyboard struct {
	lang         string
	limit        int
	index        *keyindex.Index
	processor    *swipe.Processor
	predictor    *suggest.Predictor
	engine       *autocorrect.Engine
	orchestrator *predict.Orchestrator
}

type options struct {
	remote  predict.Source
	metrics *predict.Metrics
	words   map[string]int
}

type Option func(*options)

// WithRemote uses s as the remote prediction source instead of the one
// described by the [remote] config section.
func WithRemote(s predict.Source) Option {
	return func(o *options) { o.remote = s }
}

// WithMetrics records prediction metrics to m.
func WithMetrics(m *predict.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithWords adds words to the default language dictionary.
func WithWords(words map[string]int) Option {
	return func(o *options) { o.words = words }
}

// New builds a keyboard from cfg. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config, opts ...Option) (*Keyboard, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	lang := strings.ToLower(cfg.Dict.DefaultLanguage)
	if lang == "" {
		lang = dictionary.DefaultLanguage
	}

	extra, err := loadWords(cfg.Dict)
	if err != nil {
		return nil, err
	}
	maps.Copy(extra, o.words)

	words := make(map[string]int)
	if cfg.Dict.UseBuiltin {
		if builtin, ok := dictionary.Builtin(lang); ok {
			words = builtin
		}
	}
	for w, f := range extra {
		if f > words[w] {
			words[w] = f
		}
	}

	engine := autocorrect.NewEngine(autocorrect.Config{
		DefaultLanguage:    lang,
		CacheSize:          cfg.Autocorrect.CacheSize,
		MaxSuggestions:     cfg.Autocorrect.MaxSuggestions,
		MaxCandidates:      cfg.Autocorrect.MaxCandidates,
		FuzzyScale:         cfg.Autocorrect.FuzzyScale,
		LearnedCapacity:    cfg.Autocorrect.LearnedCapacity,
		AutoApplyThreshold: cfg.Autocorrect.AutoApplyThreshold,
		SkipBuiltin:        !cfg.Dict.UseBuiltin,
	})
	if len(extra) > 0 {
		engine.AddDictionary(lang, extra)
	}

	index := keyindex.NewIndex(cfg.Swipe.Width, cfg.Swipe.Height, cfg.Swipe.CellSize)

	orchOpts := []predict.Option{
		predict.WithTimeout(cfg.Predict.Timeout()),
		predict.WithMetrics(o.metrics),
	}
	if remote := remoteSource(cfg, o.remote); remote != nil {
		orchOpts = append(orchOpts, predict.WithRemote(remote))
	}

	limit := cfg.Predict.DefaultLimit
	if limit <= 0 {
		limit = autocorrect.DefaultMaxSuggestions
	}

	kb := &Keyboard{
		lang:  lang,
		limit: limit,
		index: index,
		processor: swipe.NewProcessor(index, swipe.Config{
			MinPathLength:     cfg.Swipe.MinPathLength,
			MaxPathPoints:     cfg.Swipe.MaxPathPoints,
			VelocityThreshold: cfg.Swipe.VelocityThreshold,
		}),
		predictor:    suggest.NewPredictor(words),
		engine:       engine,
		orchestrator: predict.NewOrchestrator(predict.NewLocalSource(engine, lang), orchOpts...),
	}
	log.Debugf("Keyboard ready: %d words, language %s", len(words), lang)
	return kb, nil
}

// loadWords reads the chunk dir and word list named in the dict config.
// A data dir without chunks is not an error.
func loadWords(dict config.DictConfig) (map[string]int, error) {
	words := make(map[string]int)
	if dict.DataDir != "" {
		chunks, err := dictionary.NewChunkLoader(dict.DataDir, dict.MaxWords).Load()
		switch {
		case errors.Is(err, dictionary.ErrNoChunks):
			log.Debugf("No dictionary chunks in %s", dict.DataDir)
		case err != nil:
			return nil, fmt.Errorf("failed to load dictionary chunks: %w", err)
		default:
			maps.Copy(words, chunks)
		}
	}
	if dict.WordList != "" {
		list, err := dictionary.LoadFile(dict.WordList)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list: %w", err)
		}
		for w, f := range list {
			if f > words[w] {
				words[w] = f
			}
		}
	}
	return words, nil
}

func remoteSource(cfg *config.Config, override predict.Source) predict.Source {
	if override != nil {
		return override
	}
	if !cfg.Remote.Enabled {
		return nil
	}
	key := cfg.Remote.APIKey()
	if key == "" {
		log.Warnf("Remote prediction enabled but $%s is empty", cfg.Remote.APIKeyEnv)
	}
	return openai.New(key, cfg.Remote.Model,
		openai.WithBaseURL(cfg.Remote.BaseURL),
		openai.WithMaxWords(cfg.Remote.MaxWords),
		openai.WithTimeout(cfg.Predict.Timeout()),
	)
}

// Language returns the default language code.
func (kb *Keyboard) Language() string { return kb.lang }

// RegisterKey records the rectangle for a key. Invalid rectangles are ignored.
func (kb *Keyboard) RegisterKey(id string, rect keyindex.Rect) bool {
	return kb.processor.RegisterKeyPosition(id, rect)
}

// ClearKeys forgets every key, for layout changes.
func (kb *Keyboard) ClearKeys() { kb.processor.ClearKeys() }

func (kb *Keyboard) FindKeyAt(p keyindex.Point) (string, bool) {
	return kb.index.FindKeyAt(p)
}

func (kb *Keyboard) ProcessSwipePath(points []keyindex.Point) string {
	return kb.processor.ProcessPathToKeySequence(points)
}

// GetWordSuggestions completes a trail or typed prefix. A limit <= 0 uses
// the configured default.
func (kb *Keyboard) GetWordSuggestions(prefix string, limit int) []suggest.Suggestion {
	if limit <= 0 {
		limit = kb.limit
	}
	return kb.predictor.GetSuggestions(prefix, limit)
}

// NewGesture returns a touch buffer bounded like the swipe processor. Feed
// its End result to PredictSwipe.
func (kb *Keyboard) NewGesture() *swipe.Gesture {
	return swipe.NewGesture(kb.processor.Config().MaxPathPoints)
}

// PredictSwipe decodes a gesture into its trail and the best word for it.
func (kb *Keyboard) PredictSwipe(points []keyindex.Point) (trail, word string) {
	trail = kb.ProcessSwipePath(points)
	if trail == "" {
		return "", ""
	}
	return trail, kb.predictor.PredictWord(trail)
}

// LearnWord teaches both the predictor and the autocorrect engine. It
// reports whether either accepted the word.
func (kb *Keyboard) LearnWord(word string) bool {
	p := kb.predictor.LearnWord(word)
	e := kb.engine.LearnWord(word)
	return p || e
}

// GetAdvancedSuggestions corrects word. An empty lang uses the default language.
func (kb *Keyboard) GetAdvancedSuggestions(word string, ctx autocorrect.WordContext, lang string) []autocorrect.Suggestion {
	if lang == "" {
		lang = kb.lang
	}
	return kb.engine.GetAdvancedSuggestions(word, ctx, lang)
}

// AutoCorrect returns the replacement for word when one is confident enough.
func (kb *Keyboard) AutoCorrect(word string, ctx autocorrect.WordContext, lang string) (string, bool) {
	if lang == "" {
		lang = kb.lang
	}
	return kb.engine.AutoCorrect(word, ctx, lang)
}

// Predict returns next-word predictions for the text typed so far.
func (kb *Keyboard) Predict(ctx context.Context, text string) []string {
	return kb.orchestrator.Predict(ctx, text)
}

// RemoteAvailable reports whether predictions may come from the remote source.
func (kb *Keyboard) RemoteAvailable() bool { return kb.orchestrator.RemoteAvailable() }

func (kb *Keyboard) Stats() map[string]int {
	stats := kb.predictor.Stats()
	for k, v := range kb.engine.Stats() {
		stats["autocorrect."+k] = v
	}
	stats["keys"] = kb.index.Len()
	return stats
}
