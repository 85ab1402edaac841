package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTimeout bounds the wait for the remote source.
const DefaultTimeout = time.Second

const (
	sourceRemote = "remote"
	sourceLocal  = "local"
)

var errTimeout = errors.New("remote prediction timed out")

// Orchestrator asks the remote source first and falls back to the local one.
// The remote is tried once per call; there are no retries.
type Orchestrator struct {
	local   Source
	remote  Source
	timeout time.Duration
	metrics *Metrics
}

type Option func(*Orchestrator)

// WithRemote sets the remote source. Without one only the local source is used.
func WithRemote(s Source) Option {
	return func(o *Orchestrator) { o.remote = s }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMetrics records to m instead of DefaultMetrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

func NewOrchestrator(local Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{local: local, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = DefaultMetrics()
	}
	return o
}

func (o *Orchestrator) Timeout() time.Duration { return o.timeout }

// RemoteAvailable reports whether a remote source is set and claims to be usable.
func (o *Orchestrator) RemoteAvailable() bool {
	if o.remote == nil {
		return false
	}
	if a, ok := o.remote.(Availability); ok {
		return a.Available()
	}
	return true
}

// Predict returns predictions for text. A non-empty remote answer within the
// timeout wins; otherwise the local source answers. Failures of both give an
// empty list.
func (o *Orchestrator) Predict(ctx context.Context, text string) []string {
	if words, ok := o.tryRemote(ctx, text); ok {
		return words
	}

	start := time.Now()
	words, err := call(ctx, o.local, text)
	switch {
	case err != nil:
		log.Errorf("Local prediction failed: %v", err)
		o.metrics.record(ctx, sourceLocal, outcomeOf(err), time.Since(start))
		return nil
	case len(words) == 0:
		o.metrics.record(ctx, sourceLocal, OutcomeEmpty, time.Since(start))
	default:
		o.metrics.record(ctx, sourceLocal, OutcomeOK, time.Since(start))
	}
	return words
}

func (o *Orchestrator) tryRemote(ctx context.Context, text string) ([]string, bool) {
	if o.remote == nil {
		return nil, false
	}
	if !o.RemoteAvailable() {
		o.metrics.record(ctx, sourceRemote, OutcomeUnavailable, 0)
		return nil, false
	}

	type result struct {
		words []string
		err   error
	}
	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// Buffered so an abandoned call can still finish and exit.
	done := make(chan result, 1)
	go func() {
		words, err := call(rctx, o.remote, text)
		done <- result{words, err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	var res result
	select {
	case res = <-done:
	case <-timer.C:
		res.err = errTimeout
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	elapsed := time.Since(start)

	if res.err != nil {
		log.Warnf("Remote prediction failed, using local: %v", res.err)
		o.metrics.record(ctx, sourceRemote, outcomeOf(res.err), elapsed)
		return nil, false
	}
	if len(res.words) == 0 {
		log.Debugf("Remote prediction empty, using local")
		o.metrics.record(ctx, sourceRemote, OutcomeEmpty, elapsed)
		return nil, false
	}
	o.metrics.record(ctx, sourceRemote, OutcomeOK, elapsed)
	return res.words, true
}

type panicError struct {
	value any
}

func (p panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

// call runs s, turning a panic into an error and dropping blank words.
func call(ctx context.Context, s Source, text string) (words []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			words, err = nil, panicError{r}
		}
	}()
	raw, err := s.Predict(ctx, text)
	if err != nil {
		return nil, err
	}
	for _, w := range raw {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}

func outcomeOf(err error) string {
	var p panicError
	switch {
	case errors.As(err, &p):
		return OutcomePanic
	case errors.Is(err, errTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	}
	return OutcomeError
}
