// Package openai provides a remote prediction source backed by an
// OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const (
	DefaultModel    = "gpt-4o-mini"
	DefaultMaxWords = 5

	systemPrompt = "You are the next-word predictor of a mobile keyboard. " +
		"Given the text typed so far, reply with up to %d likely next words or " +
		"completions of the last word, comma separated, most likely first. " +
		"Reply with the words only."
)

// Source implements predict.Source and predict.Availability.
type Source struct {
	client    oai.Client
	model     string
	maxWords  int
	available bool
}

type config struct {
	baseURL  string
	timeout  time.Duration
	maxWords int
}

// Option is a functional option for Source.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithMaxWords limits how many words are returned.
func WithMaxWords(n int) Option {
	return func(c *config) { c.maxWords = n }
}

// New creates a source. With an empty apiKey the source reports itself
// unavailable and never makes a request.
func New(apiKey, model string, opts ...Option) *Source {
	cfg := &config{maxWords: DefaultMaxWords}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.maxWords <= 0 {
		cfg.maxWords = DefaultMaxWords
	}
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Source{
		client:    oai.NewClient(reqOpts...),
		model:     model,
		maxWords:  cfg.maxWords,
		available: apiKey != "",
	}
}

func (s *Source) Available() bool { return s.available }

// Predict asks the model for the next words after text.
func (s *Source) Predict(ctx context.Context, text string) ([]string, error) {
	if !s.available {
		return nil, fmt.Errorf("openai: no api key configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(fmt.Sprintf(systemPrompt, s.maxWords)),
			oai.UserMessage(text),
		},
		Temperature:         param.NewOpt(0.2),
		MaxCompletionTokens: param.NewOpt(int64(8 * s.maxWords)),
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}
	return parseWords(resp.Choices[0].Message.Content, s.maxWords), nil
}

// parseWords splits a model reply on commas and newlines, strips list
// markers and quotes, and drops repeats.
func parseWords(reply string, limit int) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, min(len(fields), limit))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsDigit(r) || (unicode.IsPunct(r) && r != '\'')
		})
		w = strings.Trim(w, "'")
		key := strings.ToLower(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
