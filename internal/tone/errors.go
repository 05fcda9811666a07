package tone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrEmptyInput is returned when the text to analyze is blank.
	ErrEmptyInput = errors.New("text cannot be empty")
	// ErrNoJSON is returned when a reply holds no JSON object at all.
	ErrNoJSON = errors.New("reply contains no JSON object")
)

// Reason classifies why a field failed.
type Reason string

const (
	ReasonMissing      Reason = "missing"
	ReasonTypeMismatch Reason = "type_mismatch"
	ReasonConstraint   Reason = "constraint"
)

// FieldError describes a single field that did not satisfy the schema.
type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail"`
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Field, f.Reason, f.Detail)
}

// ParseError reports a model reply that could not be turned into a Result.
// Fields is empty when the reply was not decodable at all.
type ParseError struct {
	Raw    string
	Fields []FieldError
	Err    error
}

func (e *ParseError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("parse reply: %v", e.Err)
	}
	parts := lo.Map(e.Fields, func(f FieldError, _ int) string { return f.String() })
	return "parse reply: " + strings.Join(parts, "; ")
}

func (e *ParseError) Unwrap() error { return e.Err }

// Field returns the failure recorded for the named JSON field.
func (e *ParseError) Field(name string) (FieldError, bool) {
	return lo.Find(e.Fields, func(f FieldError) bool { return f.Field == name })
}

// Has reports whether the named JSON field failed.
func (e *ParseError) Has(name string) bool {
	_, ok := e.Field(name)
	return ok
}

// AnalysisError wraps any downstream failure of a single analysis so callers
// have one type to branch on. The cause is reachable through errors.As.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("error during tone analysis: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
