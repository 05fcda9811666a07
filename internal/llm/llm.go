package llm

import (
	"context"
	"fmt"
)

// Request is a single completion call: the prompt plus sampling parameters.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer is the boundary to the completion service. Implementations return
// the raw reply text and report every failure as a *TransportError.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// TransportError reports that the completion service could not be reached or
// refused the request.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
