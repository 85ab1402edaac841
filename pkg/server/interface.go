/*
Package server implements msgpack IPC for the keyboard core.

The server reads a stream of msgpack encoded requests from stdin and writes one
response per request to stdout. Requests are handled synchronously, in order,
with timing info in microseconds included in every response.

# IPC

Each request carries an ID and an op. The other fields depend on the op:

	{"id": "k1", "op": "key", "k": "q", "r": {"l": 0, "t": 0, "r": 100, "b": 100}}
	{"id": "s1", "op": "swipe", "pts": [{"x": 450, "y": 50}, ...], "l": 5}
	{"id": "c1", "op": "suggest", "p": "th", "l": 3}
	{"id": "a1", "op": "correct", "w": "teh", "ctx": {"previous_word": "saw"}}
	{"id": "n1", "op": "predict", "x": "I think teh"}

Responses echo the ID:

	{"id": "c1", "s": [{"w": "the", "r": 1, "f": 1000}, ...], "c": 3, "t": 42}

A request that cannot be served gets the same response shape with "e" holding
the error and "code" a status code. The first message after start is a
{"st": "ready"} response with no ID.

# Ops

	health      status and component stats
	key         register a key rectangle
	clear_keys  forget the layout
	find        key under a point
	swipe       trail and best word for a gesture, plus completions of the trail
	suggest     prefix completions
	learn       teach a word to the predictor and autocorrect engine
	correct     ranked corrections and the auto-applied word, if any
	predict     next-word predictions for the text so far

Prefix limits ([server] in the config file) can be swapped while the server
runs with SetLimits.
*/
package server

import (
	"github.com/bastiangx/swipeserve/pkg/autocorrect"
	"github.com/bastiangx/swipeserve/pkg/keyindex"
)

// Op names.
const (
	OpHealth    = "health"
	OpKey       = "key"
	OpClearKeys = "clear_keys"
	OpFind      = "find"
	OpSwipe     = "swipe"
	OpSuggest   = "suggest"
	OpLearn     = "learn"
	OpCorrect   = "correct"
	OpPredict   = "predict"
)

// Status codes carried in Response.Code.
const (
	CodeBadRequest = 400
	CodeInternal   = 500
)

// Request is a single IPC message.
type Request struct {
	ID      string                   `msgpack:"id"`
	Op      string                   `msgpack:"op"`
	Prefix  string                   `msgpack:"p,omitempty"`
	Limit   int                      `msgpack:"l,omitempty"`
	Word    string                   `msgpack:"w,omitempty"`
	Text    string                   `msgpack:"x,omitempty"`
	Lang    string                   `msgpack:"lang,omitempty"`
	Key     string                   `msgpack:"k,omitempty"`
	Rect    *keyindex.Rect           `msgpack:"r,omitempty"`
	Point   *keyindex.Point          `msgpack:"pt,omitempty"`
	Points  []keyindex.Point         `msgpack:"pts,omitempty"`
	Context *autocorrect.WordContext `msgpack:"ctx,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
	Freq int    `msgpack:"f,omitempty"`
}

// Response is the reply to one Request. Only the fields relevant to the op are set.
type Response struct {
	ID          string                   `msgpack:"id"`
	Status      string                   `msgpack:"st,omitempty"`
	Suggestions []CompletionSuggestion   `msgpack:"s,omitempty"`
	Corrections []autocorrect.Suggestion `msgpack:"cr,omitempty"`
	Words       []string                 `msgpack:"ws,omitempty"`
	Key         string                   `msgpack:"k,omitempty"`
	Trail       string                   `msgpack:"tr,omitempty"`
	Word        string                   `msgpack:"w,omitempty"`
	OK          bool                     `msgpack:"ok,omitempty"`
	Stats       map[string]int           `msgpack:"stats,omitempty"`
	Count       int                      `msgpack:"c"`
	TimeTaken   int64                    `msgpack:"t"`
	Error       string                   `msgpack:"e,omitempty"`
	Code        int                      `msgpack:"code,omitempty"`
}
