package tone

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Parse turns a raw model reply into a validated Result. Any decoding or
// validation failure is returned as a *ParseError.
func Parse(raw string) (Result, error) {
	payload, ok := ExtractJSON(raw)
	if !ok {
		return Result{}, &ParseError{Raw: raw, Err: ErrNoJSON}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return Result{}, &ParseError{Raw: raw, Err: err}
	}

	c, fields := decodeCandidate(obj)
	for _, f := range Validate(c) {
		if typeMismatched(fields, f.Field) {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) > 0 {
		slices.SortStableFunc(fields, func(a, b FieldError) int {
			return lo.IndexOf(schemaFields, a.Field) - lo.IndexOf(schemaFields, b.Field)
		})
		return Result{}, &ParseError{Raw: raw, Fields: fields}
	}

	return Result{
		Tone:        Tone(*c.Tone),
		Confidence:  *c.Confidence,
		Explanation: *c.Explanation,
		KeyPhrases:  lo.Map(c.KeyPhrases, func(p string, _ int) string { return strings.TrimSpace(p) }),
	}, nil
}

// schemaFields lists the JSON fields of a reply in schema order.
var schemaFields = []string{"tone", "confidence", "explanation", "key_phrases"}

// decodeCandidate decodes each schema field on its own so that every type
// mismatch is reported, not only the first one.
func decodeCandidate(obj map[string]json.RawMessage) (Candidate, []FieldError) {
	var c Candidate
	targets := map[string]any{
		"tone":        &c.Tone,
		"confidence":  &c.Confidence,
		"explanation": &c.Explanation,
		"key_phrases": &c.KeyPhrases,
	}

	var fields []FieldError
	for _, name := range schemaFields {
		value, ok := obj[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, targets[name]); err != nil {
			fields = append(fields, FieldError{
				Field:  name,
				Reason: ReasonTypeMismatch,
				Detail: mismatchDetail(err),
			})
		}
	}
	return c, fields
}

func mismatchDetail(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return "expected " + typeErr.Type.String() + ", got " + typeErr.Value
	}
	return err.Error()
}

func typeMismatched(fields []FieldError, name string) bool {
	return lo.ContainsBy(fields, func(f FieldError) bool {
		return f.Field == name && f.Reason == ReasonTypeMismatch
	})
}

// ExtractJSON isolates the JSON object in a reply that may be wrapped in
// prose or Markdown fences. It prefers the first valid object carrying a
// result field, then the first valid object, then the first balanced object
// of any kind.
func ExtractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	firstValid, firstBalanced := "", ""
	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end := matchBrace(s[start:]); end > 0 {
			obj := s[start : start+end]
			var fields map[string]json.RawMessage
			if json.Unmarshal([]byte(obj), &fields) == nil {
				if lo.SomeBy(schemaFields, func(name string) bool {
					_, ok := fields[name]
					return ok
				}) {
					return obj, true
				}
				if firstValid == "" {
					firstValid = obj
				}
			}
			if firstBalanced == "" {
				firstBalanced = obj
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	if firstValid != "" {
		return firstValid, true
	}
	return firstBalanced, firstBalanced != ""
}

// matchBrace returns the length of the brace-balanced prefix of s, which must
// start with '{', or -1 if the object never closes. Braces inside JSON
// strings are ignored.
func matchBrace(s string) int {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
