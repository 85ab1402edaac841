// Package predict combines a remote prediction source with the local
// autocorrect engine: the remote is tried first under a deadline and the
// local engine answers whenever the remote cannot.
package predict

import (
	"context"
)

// Source produces next-word predictions for the text typed so far.
type Source interface {
	Predict(ctx context.Context, text string) ([]string, error)
}

// Availability is implemented by sources that can report up front that they
// cannot serve, such as a remote source with no credentials.
type Availability interface {
	Available() bool
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, text string) ([]string, error)

func (f SourceFunc) Predict(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}
