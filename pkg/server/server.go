package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/swipeserve/internal/logger"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/autocorrect"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/keyboard"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for a keyboard.
type Server struct {
	kb       *keyboard.Keyboard
	limits   atomic.Pointer[config.ServerConfig]
	requests atomic.Int64
	log      *log.Logger
}

// NewServer creates a server answering requests with kb, bounded by limits.
func NewServer(kb *keyboard.Keyboard, limits config.ServerConfig) *Server {
	s := &Server{kb: kb, log: logger.New("ipc")}
	s.SetLimits(limits)
	return s
}

// SetLimits swaps the prefix and result limits. Safe to call while serving.
func (s *Server) SetLimits(limits config.ServerConfig) {
	defaults := config.DefaultConfig().Server
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = defaults.MaxLimit
	}
	if limits.MinPrefix < 1 {
		limits.MinPrefix = 1
	}
	if limits.MaxPrefix < limits.MinPrefix {
		limits.MaxPrefix = defaults.MaxPrefix
	}
	s.limits.Store(&limits)
	s.log.Debug("Server limits set",
		"maxLimit", limits.MaxLimit,
		"minPrefix", limits.MinPrefix,
		"maxPrefix", limits.MaxPrefix,
		"filter", limits.EnableFilter)
}

// Limits returns the limits in effect.
func (s *Server) Limits() config.ServerConfig { return *s.limits.Load() }

// Start serves stdin/stdout until the client closes stdin.
func (s *Server) Start() error {
	return s.Serve(context.Background(), os.Stdin, os.Stdout)
}

// Serve reads requests from r and writes responses to w until r is exhausted
// or ctx is done. A request that decodes to the wrong shape gets an error
// response; a broken stream ends the loop with an error.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := msgpack.NewDecoder(bufio.NewReader(r))
	bw := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(bw)

	send := func(resp Response) error {
		if err := enc.Encode(&resp); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		return nil
	}

	s.log.Debug("Starting server")
	if err := send(Response{Status: "ready"}); err != nil {
		return err
	}

	for ctx.Err() == nil {
		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client closed the stream", "requests", s.requests.Load())
				return nil
			}
			return fmt.Errorf("failed to read request: %w", err)
		}

		var resp Response
		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			resp = failure(CodeBadRequest, "invalid request")
		} else {
			resp = s.Handle(ctx, req)
		}
		if err := send(resp); err != nil {
			return err
		}
	}
	return nil
}

// Handle answers a single request. It never panics.
func (s *Server) Handle(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	s.requests.Add(1)
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Recovered panic in %q: %v", req.Op, r)
			resp = failure(CodeInternal, "internal error")
		}
		resp.ID = req.ID
		resp.TimeTaken = time.Since(start).Microseconds()
	}()

	switch req.Op {
	case OpHealth:
		stats := s.kb.Stats()
		stats["requests"] = int(s.requests.Load())
		return Response{Status: "ok", Stats: stats}
	case OpKey:
		return s.handleKey(req)
	case OpClearKeys:
		s.kb.ClearKeys()
		return Response{Status: "ok", OK: true}
	case OpFind:
		return s.handleFind(req)
	case OpSwipe:
		return s.handleSwipe(req)
	case OpSuggest:
		return s.handleSuggest(req)
	case OpLearn:
		return s.handleLearn(req)
	case OpCorrect:
		return s.handleCorrect(req)
	case OpPredict:
		words := s.kb.Predict(ctx, req.Text)
		return Response{Words: words, Count: len(words)}
	case "":
		return failure(CodeBadRequest, "missing 'op'")
	default:
		return failure(CodeBadRequest, fmt.Sprintf("unknown op: %s", req.Op))
	}
}

func (s *Server) handleKey(req Request) Response {
	if req.Key == "" || req.Rect == nil {
		return failure(CodeBadRequest, "key requires 'k' and 'r'")
	}
	if !s.kb.RegisterKey(req.Key, *req.Rect) {
		return failure(CodeBadRequest, fmt.Sprintf("invalid rectangle for key %q", req.Key))
	}
	return Response{Key: req.Key, OK: true}
}

func (s *Server) handleFind(req Request) Response {
	if req.Point == nil {
		return failure(CodeBadRequest, "find requires 'pt'")
	}
	key, ok := s.kb.FindKeyAt(*req.Point)
	return Response{Key: key, OK: ok}
}

func (s *Server) handleSwipe(req Request) Response {
	if len(req.Points) == 0 {
		return failure(CodeBadRequest, "swipe requires 'pts'")
	}
	trail, word := s.kb.PredictSwipe(req.Points)
	if trail == "" {
		s.log.Debug("Swipe produced no trail", "points", len(req.Points))
		return Response{}
	}
	suggestions := s.completions(trail, req.Limit)
	return Response{
		Trail:       trail,
		Word:        word,
		Suggestions: suggestions,
		Count:       len(suggestions),
	}
}

func (s *Server) handleSuggest(req Request) Response {
	limits := s.Limits()
	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		return failure(CodeBadRequest, "missing 'p' parameter")
	}
	n := utf8.RuneCountInString(prefix)
	if n < limits.MinPrefix {
		return failure(CodeBadRequest, fmt.Sprintf("prefix must be at least %d characters", limits.MinPrefix))
	}
	if n > limits.MaxPrefix {
		return failure(CodeBadRequest, fmt.Sprintf("prefix exceeds maximum length of %d characters", limits.MaxPrefix))
	}
	if limits.EnableFilter && !utils.IsValidInput(prefix) {
		s.log.Debugf("Filtered prefix %q", prefix)
		return Response{}
	}

	suggestions := s.completions(prefix, req.Limit)
	return Response{Suggestions: suggestions, Count: len(suggestions)}
}

func (s *Server) handleLearn(req Request) Response {
	if strings.TrimSpace(req.Word) == "" {
		return failure(CodeBadRequest, "missing 'w' parameter")
	}
	return Response{Word: req.Word, OK: s.kb.LearnWord(req.Word)}
}

func (s *Server) handleCorrect(req Request) Response {
	if strings.TrimSpace(req.Word) == "" {
		return failure(CodeBadRequest, "missing 'w' parameter")
	}
	var wctx autocorrect.WordContext
	if req.Context != nil {
		wctx = *req.Context
	}

	corrections := s.kb.GetAdvancedSuggestions(req.Word, wctx, req.Lang)
	resp := Response{Corrections: corrections, Count: len(corrections)}
	if fixed, ok := s.kb.AutoCorrect(req.Word, wctx, req.Lang); ok {
		resp.Word = fixed
		resp.OK = true
	}
	return resp
}

// completions ranks prefix completions 1..n, capped at the max limit.
func (s *Server) completions(prefix string, limit int) []CompletionSuggestion {
	maxLimit := s.Limits().MaxLimit
	if limit > maxLimit {
		limit = maxLimit
	}
	found := s.kb.GetWordSuggestions(prefix, limit)
	if len(found) > maxLimit {
		found = found[:maxLimit]
	}
	ranks := utils.RankList(len(found))
	out := make([]CompletionSuggestion, len(found))
	for i, sg := range found {
		out[i] = CompletionSuggestion{Word: sg.Word, Rank: ranks[i], Freq: sg.Frequency}
	}
	return out
}

func failure(code int, msg string) Response {
	return Response{Error: msg, Code: code}
}
