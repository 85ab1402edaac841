package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/bastiangx/swipeserve/pkg/autocorrect"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/keyboard"
	"github.com/bastiangx/swipeserve/pkg/keyindex"
	"github.com/bastiangx/swipeserve/pkg/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel/metric/noop"
)

func newTestServer(t *testing.T, opts ...keyboard.Option) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Dict.DataDir = t.TempDir()

	m, err := predict.NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)
	kb, err := keyboard.New(cfg, append([]keyboard.Option{keyboard.WithMetrics(m)}, opts...)...)
	require.NoError(t, err)
	return NewServer(kb, cfg.Server)
}

// layoutRequests registers q..p and a..l as 100x100 keys.
func layoutRequests() []Request {
	var reqs []Request
	for i, k := range []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"} {
		x := float64(i * 100)
		reqs = append(reqs, Request{ID: "key-" + k, Op: OpKey, Key: k,
			Rect: &keyindex.Rect{Left: x, Top: 0, Right: x + 100, Bottom: 100}})
	}
	for i, k := range []string{"a", "s", "d", "f", "g", "h", "j", "k", "l"} {
		x := float64(i*100 + 50)
		reqs = append(reqs, Request{ID: "key-" + k, Op: OpKey, Key: k,
			Rect: &keyindex.Rect{Left: x, Top: 100, Right: x + 100, Bottom: 200}})
	}
	return reqs
}

func encode(t *testing.T, msgs ...any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, m := range msgs {
		require.NoError(t, enc.Encode(m))
	}
	return &buf
}

func decodeAll(t *testing.T, r io.Reader) []Response {
	t.Helper()
	dec := msgpack.NewDecoder(r)
	var out []Response
	for {
		var resp Response
		err := dec.Decode(&resp)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, resp)
	}
}

// serve runs reqs through a full IPC session and drops the ready message.
func serve(t *testing.T, s *Server, reqs ...Request) []Response {
	t.Helper()
	msgs := make([]any, len(reqs))
	for i, r := range reqs {
		msgs[i] = r
	}
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), encode(t, msgs...), &out))

	resps := decodeAll(t, &out)
	require.Len(t, resps, len(reqs)+1)
	assert.Equal(t, "ready", resps[0].Status)
	return resps[1:]
}

func TestServeEchoesIDsInOrder(t *testing.T) {
	s := newTestServer(t)
	resps := serve(t, s,
		Request{ID: "a", Op: OpHealth},
		Request{ID: "b", Op: OpSuggest, Prefix: "th"},
		Request{ID: "c", Op: OpHealth},
	)

	assert.Equal(t, "a", resps[0].ID)
	assert.Equal(t, "ok", resps[0].Status)
	assert.Equal(t, "b", resps[1].ID)
	assert.Equal(t, "c", resps[2].ID)
	assert.Equal(t, 3, resps[2].Stats["requests"])
	for _, r := range resps {
		assert.Empty(t, r.Error)
		assert.GreaterOrEqual(t, r.TimeTaken, int64(0))
	}
}

func TestSwipeSession(t *testing.T) {
	s := newTestServer(t)
	reqs := layoutRequests()
	reqs = append(reqs,
		Request{ID: "find", Op: OpFind, Point: &keyindex.Point{X: 450, Y: 50}},
		Request{ID: "swipe", Op: OpSwipe, Limit: 3, Points: []keyindex.Point{
			{X: 450, Y: 50}, {X: 460, Y: 50},
			{X: 250, Y: 50}, {X: 260, Y: 50},
			{X: 600, Y: 150},
		}},
		Request{ID: "clear", Op: OpClearKeys},
		Request{ID: "lost", Op: OpFind, Point: &keyindex.Point{X: 450, Y: 50}},
	)
	resps := serve(t, s, reqs...)
	n := len(resps)

	for _, r := range resps[:n-4] {
		assert.True(t, r.OK, r.ID)
	}

	find := resps[n-4]
	assert.True(t, find.OK)
	assert.Equal(t, "t", find.Key)

	swipe := resps[n-3]
	assert.Equal(t, "teh", swipe.Trail)
	assert.Equal(t, "the", swipe.Word)
	assert.Empty(t, swipe.Suggestions)

	assert.True(t, resps[n-2].OK)
	assert.False(t, resps[n-1].OK)
	assert.Empty(t, resps[n-1].Key)
}

func TestSuggestRanksAndCaps(t *testing.T) {
	s := newTestServer(t)
	s.SetLimits(config.ServerConfig{MaxLimit: 2, MinPrefix: 2, MaxPrefix: 10, EnableFilter: true})

	resp := s.Handle(context.Background(), Request{ID: "x", Op: OpSuggest, Prefix: "th", Limit: 10})
	require.Empty(t, resp.Error)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, CompletionSuggestion{Word: "the", Rank: 1, Freq: 1000}, resp.Suggestions[0])
	assert.Equal(t, uint16(2), resp.Suggestions[1].Rank)

	resp = s.Handle(context.Background(), Request{Op: OpSuggest, Prefix: "th"})
	assert.Len(t, resp.Suggestions, 2)
}

func TestSuggestValidation(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		prefix string
		code   int
	}{
		{"missing", "  ", CodeBadRequest},
		{"too short", "t", CodeBadRequest},
		{"too long", "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghij", CodeBadRequest},
		{"numbers filtered", "12", 0},
		{"symbols filtered", "t#", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Handle(ctx, Request{Op: OpSuggest, Prefix: tt.prefix})
			assert.Equal(t, tt.code, resp.Code)
			assert.Empty(t, resp.Suggestions)
		})
	}
}

func TestSetLimitsFillsDefaults(t *testing.T) {
	s := newTestServer(t)
	s.SetLimits(config.ServerConfig{})

	limits := s.Limits()
	assert.Equal(t, config.DefaultConfig().Server.MaxLimit, limits.MaxLimit)
	assert.Equal(t, 1, limits.MinPrefix)
	assert.Equal(t, config.DefaultConfig().Server.MaxPrefix, limits.MaxPrefix)
}

func TestLearnAndCorrect(t *testing.T) {
	s := newTestServer(t)
	resps := serve(t, s,
		Request{ID: "learn", Op: OpLearn, Word: "swipeserve"},
		Request{ID: "suggest", Op: OpSuggest, Prefix: "swipes"},
		Request{ID: "typo", Op: OpCorrect, Word: "teh", Context: &autocorrect.WordContext{PreviousWord: "saw"}},
		Request{ID: "known", Op: OpCorrect, Word: "you", Context: &autocorrect.WordContext{PreviousWord: "thank"}},
		Request{ID: "empty", Op: OpCorrect},
	)

	assert.True(t, resps[0].OK)
	require.Len(t, resps[1].Suggestions, 1)
	assert.Equal(t, "swipeserve", resps[1].Suggestions[0].Word)

	typo := resps[2]
	require.NotEmpty(t, typo.Corrections)
	assert.Equal(t, "the", typo.Corrections[0].Suggested)
	assert.Equal(t, autocorrect.Typo, typo.Corrections[0].Category)
	assert.True(t, typo.OK)
	assert.Equal(t, "the", typo.Word)

	assert.False(t, resps[3].OK)
	assert.Equal(t, CodeBadRequest, resps[4].Code)
}

func TestPredictUsesRemote(t *testing.T) {
	remote := predict.SourceFunc(func(_ context.Context, text string) ([]string, error) {
		return []string{"morning", "night"}, nil
	})
	s := newTestServer(t, keyboard.WithRemote(remote))

	resp := s.Handle(context.Background(), Request{ID: "p", Op: OpPredict, Text: "good"})
	assert.Equal(t, []string{"morning", "night"}, resp.Words)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "p", resp.ID)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for _, req := range []Request{
		{Op: ""},
		{Op: "launch"},
		{Op: OpKey, Key: "q"},
		{Op: OpKey, Key: "q", Rect: &keyindex.Rect{Left: 10, Top: 10, Right: 5, Bottom: 20}},
		{Op: OpFind},
		{Op: OpSwipe},
		{Op: OpLearn},
	} {
		resp := s.Handle(ctx, req)
		assert.Equal(t, CodeBadRequest, resp.Code, "op %q", req.Op)
		assert.NotEmpty(t, resp.Error)
	}
}

func TestMalformedMessageKeepsServing(t *testing.T) {
	s := newTestServer(t)
	in := encode(t, "not a request", Request{ID: "after", Op: OpHealth})

	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	resps := decodeAll(t, &out)
	require.Len(t, resps, 3)
	assert.Equal(t, CodeBadRequest, resps[1].Code)
	assert.Equal(t, "after", resps[2].ID)
	assert.Equal(t, "ok", resps[2].Status)
}

func TestTruncatedStreamFails(t *testing.T) {
	s := newTestServer(t)
	in := encode(t, Request{ID: "cut", Op: OpHealth})
	truncated := bytes.NewReader(in.Bytes()[:in.Len()-2])

	var out bytes.Buffer
	assert.Error(t, s.Serve(context.Background(), truncated, &out))
}

func TestServeStopsOnCancelledContext(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, s.Serve(ctx, encode(t, Request{ID: "never", Op: OpHealth}), &out))
	resps := decodeAll(t, &out)
	require.Len(t, resps, 1)
	assert.Equal(t, "ready", resps[0].Status)
}
