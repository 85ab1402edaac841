package predict

import (
	"context"
	"strings"
	"unicode"

	"github.com/bastiangx/swipeserve/pkg/autocorrect"
)

// Corrector is the part of the autocorrect engine the local source needs.
type Corrector interface {
	GetAdvancedSuggestions(word string, ctx autocorrect.WordContext, lang string) []autocorrect.Suggestion
}

// LocalSource predicts from the trailing word of the text using the
// autocorrect engine. It never returns an error.
type LocalSource struct {
	engine Corrector
	lang   string
}

func NewLocalSource(engine Corrector, lang string) *LocalSource {
	return &LocalSource{engine: engine, lang: lang}
}

func (l *LocalSource) Predict(_ context.Context, text string) ([]string, error) {
	word, wc := ContextFromText(text)
	if word == "" {
		return nil, nil
	}
	suggestions := l.engine.GetAdvancedSuggestions(word, wc, l.lang)
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Suggested)
	}
	return out, nil
}

// ContextFromText splits text into its trailing word and the context around
// it. The word starts a sentence when it is the first word or follows a
// word ending in '.', '!' or '?'.
func ContextFromText(text string) (string, autocorrect.WordContext) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return "", autocorrect.WordContext{}
	}

	last := len(tokens) - 1
	word := trimWord(tokens[last])
	wc := autocorrect.WordContext{IsStartOfSentence: true}

	// position within the current sentence
	for i := last - 1; i >= 0; i-- {
		if endsSentence(tokens[i]) {
			break
		}
		wc.SentencePosition++
	}

	if last > 0 {
		prev := tokens[last-1]
		wc.PreviousWord = trimWord(prev)
		wc.IsStartOfSentence = endsSentence(prev)
		wc.IsAfterPunctuation = endsWithPunct(prev)
	}
	return word, wc
}

func trimWord(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func endsSentence(token string) bool {
	t := strings.TrimRight(token, `"')]`)
	return strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?")
}

func endsWithPunct(token string) bool {
	r := []rune(token)
	return len(r) > 0 && unicode.IsPunct(r[len(r)-1])
}
