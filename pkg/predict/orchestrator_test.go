package predict

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bastiangx/swipeserve/pkg/autocorrect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// fakeRemote is a remote source with a switchable availability.
type fakeRemote struct {
	available bool
	calls     atomic.Int32
	predict   func(ctx context.Context, text string) ([]string, error)
}

func (f *fakeRemote) Available() bool { return f.available }

func (f *fakeRemote) Predict(ctx context.Context, text string) ([]string, error) {
	f.calls.Add(1)
	return f.predict(ctx, text)
}

func noopMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)
	return m
}

func newLocal() *LocalSource {
	return NewLocalSource(autocorrect.NewEngine(autocorrect.DefaultConfig()), "en")
}

func TestRemoteFailureFallsBackToLocal(t *testing.T) {
	local := newLocal()
	remote := &fakeRemote{available: true, predict: func(context.Context, string) ([]string, error) {
		return nil, errors.New("connection reset")
	}}
	o := NewOrchestrator(local, WithRemote(remote), WithMetrics(noopMetrics(t)))

	text := "I think teh"
	want, err := local.Predict(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, want)

	assert.Equal(t, want, o.Predict(context.Background(), text))
	assert.EqualValues(t, 1, remote.calls.Load())
}

func TestRemotePanicFallsBackToLocal(t *testing.T) {
	remote := &fakeRemote{available: true, predict: func(context.Context, string) ([]string, error) {
		panic("boom")
	}}
	o := NewOrchestrator(newLocal(), WithRemote(remote), WithMetrics(noopMetrics(t)))

	got := o.Predict(context.Background(), "teh")
	require.NotEmpty(t, got)
	assert.Equal(t, "the", got[0])
}

func TestRemoteResultWins(t *testing.T) {
	var localCalls atomic.Int32
	local := SourceFunc(func(context.Context, string) ([]string, error) {
		localCalls.Add(1)
		return []string{"local"}, nil
	})
	remote := &fakeRemote{available: true, predict: func(context.Context, string) ([]string, error) {
		return []string{" morning ", "", "night"}, nil
	}}
	o := NewOrchestrator(local, WithRemote(remote), WithMetrics(noopMetrics(t)))

	assert.Equal(t, []string{"morning", "night"}, o.Predict(context.Background(), "good"))
	assert.Zero(t, localCalls.Load())
}

func TestEmptyRemoteResultFallsBack(t *testing.T) {
	remote := &fakeRemote{available: true, predict: func(context.Context, string) ([]string, error) {
		return []string{"  "}, nil
	}}
	local := SourceFunc(func(context.Context, string) ([]string, error) {
		return []string{"local"}, nil
	})
	o := NewOrchestrator(local, WithRemote(remote), WithMetrics(noopMetrics(t)))

	assert.Equal(t, []string{"local"}, o.Predict(context.Background(), "x"))
}

func TestSlowRemoteIsAbandoned(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	remote := &fakeRemote{available: true, predict: func(context.Context, string) ([]string, error) {
		// Ignores its context on purpose.
		<-release
		return []string{"late"}, nil
	}}
	local := SourceFunc(func(context.Context, string) ([]string, error) {
		return []string{"local"}, nil
	})
	o := NewOrchestrator(local, WithRemote(remote), WithTimeout(20*time.Millisecond), WithMetrics(noopMetrics(t)))

	start := time.Now()
	assert.Equal(t, []string{"local"}, o.Predict(context.Background(), "x"))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.EqualValues(t, 1, remote.calls.Load())
}

func TestRemoteSeesDeadline(t *testing.T) {
	remote := &fakeRemote{available: true, predict: func(ctx context.Context, _ string) ([]string, error) {
		_, ok := ctx.Deadline()
		if !ok {
			return nil, errors.New("no deadline")
		}
		return []string{"remote"}, nil
	}}
	o := NewOrchestrator(SourceFunc(func(context.Context, string) ([]string, error) {
		return []string{"local"}, nil
	}), WithRemote(remote), WithMetrics(noopMetrics(t)))

	assert.Equal(t, []string{"remote"}, o.Predict(context.Background(), "x"))
}

func TestUnavailableRemoteIsSkipped(t *testing.T) {
	remote := &fakeRemote{available: false, predict: func(context.Context, string) ([]string, error) {
		return []string{"remote"}, nil
	}}
	o := NewOrchestrator(SourceFunc(func(context.Context, string) ([]string, error) {
		return []string{"local"}, nil
	}), WithRemote(remote), WithMetrics(noopMetrics(t)))

	assert.False(t, o.RemoteAvailable())
	assert.Equal(t, []string{"local"}, o.Predict(context.Background(), "x"))
	assert.Zero(t, remote.calls.Load())
}

func TestLocalFailureGivesEmptyList(t *testing.T) {
	panicking := SourceFunc(func(context.Context, string) ([]string, error) {
		panic("local broke")
	})
	o := NewOrchestrator(panicking, WithMetrics(noopMetrics(t)))
	assert.NotPanics(t, func() {
		assert.Empty(t, o.Predict(context.Background(), "teh"))
	})

	failing := SourceFunc(func(context.Context, string) ([]string, error) {
		return []string{"ignored"}, errors.New("failed")
	})
	assert.Empty(t, NewOrchestrator(failing, WithMetrics(noopMetrics(t))).Predict(context.Background(), "teh"))
}

func TestDefaults(t *testing.T) {
	o := NewOrchestrator(newLocal())
	assert.Equal(t, DefaultTimeout, o.Timeout())
	assert.False(t, o.RemoteAvailable())
	assert.NotNil(t, o.metrics)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomePanic, outcomeOf(panicError{"x"}))
	assert.Equal(t, OutcomeTimeout, outcomeOf(errTimeout))
	assert.Equal(t, OutcomeTimeout, outcomeOf(context.DeadlineExceeded))
	assert.Equal(t, OutcomeError, outcomeOf(errors.New("other")))
}
