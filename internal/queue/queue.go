package queue

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"tone-analyzer/internal/llm"
	"tone-analyzer/internal/tone"
)

// ErrorKind classifies a failed request for remote callers.
type ErrorKind string

const (
	KindBadRequest ErrorKind = "bad_request"
	KindEmptyInput ErrorKind = "empty_input"
	KindParse      ErrorKind = "parse"
	KindTransport  ErrorKind = "transport"
	KindInternal   ErrorKind = "internal"
)

// Request is the body of an analysis request message.
type Request struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// Reply is the body sent back for every request. Result is set on success,
// Error and Kind otherwise.
type Reply struct {
	ID     string            `json:"id"`
	Result *tone.Result      `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
	Kind   ErrorKind         `json:"kind,omitempty"`
	Fields []tone.FieldError `json:"fields,omitempty"`
}

// Analyzer is the part of the pipeline the worker needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (tone.Result, error)
}

// Worker consumes analysis requests until ctx is done.
type Worker interface {
	Serve(ctx context.Context) error
}

// Handle decodes one request body, analyzes it once and builds the reply.
func Handle(ctx context.Context, a Analyzer, body []byte) Reply {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Reply{ID: uuid.NewString(), Error: "invalid request: " + err.Error(), Kind: KindBadRequest}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result, err := a.Analyze(ctx, req.Text)
	if err != nil {
		reply := Reply{ID: req.ID, Error: err.Error(), Kind: classify(err)}
		var perr *tone.ParseError
		if errors.As(err, &perr) {
			reply.Fields = perr.Fields
		}
		return reply
	}
	return Reply{ID: req.ID, Result: &result}
}

func classify(err error) ErrorKind {
	var perr *tone.ParseError
	var terr *llm.TransportError
	switch {
	case errors.Is(err, tone.ErrEmptyInput):
		return KindEmptyInput
	case errors.As(err, &perr):
		return KindParse
	case errors.As(err, &terr):
		return KindTransport
	default:
		return KindInternal
	}
}
