package tone

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
  "tone": "negative",
  "confidence": 0.92,
  "explanation": "The author describes the experience as the worst ever and says they are disappointed.",
  "key_phrases": ["worst experience", "completely disappointed"]
}`

func TestParseValidReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain JSON", validReply},
		{"json fence", "```json\n" + validReply + "\n```"},
		{"plain fence", "```\n" + validReply + "\n```"},
		{"surrounding prose", "Sure! Here is the analysis:\n" + validReply + "\nLet me know if you need more."},
		{"prose with braces first", "I used {careful} reasoning.\n" + validReply},
		{"prose with empty object first", "I filled in the template {} as requested:\n" + validReply},
		{"prose with unrelated object first", `Settings were {"temperature": 0}.` + "\n" + validReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, Negative, got.Tone)
			assert.InDelta(t, 0.92, got.Confidence, 1e-9)
			assert.True(t, strings.HasPrefix(got.Explanation, "The author describes"))
			assert.Equal(t, []string{"worst experience", "completely disappointed"}, got.KeyPhrases)
		})
	}
}

func TestParseBoundaryValues(t *testing.T) {
	tests := []struct {
		name       string
		confidence string
		explLen    int
	}{
		{"zero confidence", "0", 10},
		{"full confidence", "1.0", 10},
		{"max explanation", "0.5", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"tone":"neutral","confidence":` + tt.confidence +
				`,"explanation":"` + strings.Repeat("é", tt.explLen) + `","key_phrases":["cloudy"]}`
			got, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, Neutral, got.Tone)
			assert.True(t, got.Tone.Valid())
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestParseMissingFields(t *testing.T) {
	full := map[string]any{
		"tone":        "positive",
		"confidence":  0.8,
		"explanation": "Clearly enthusiastic wording throughout.",
		"key_phrases": []string{"love it"},
	}

	for field := range full {
		t.Run(field, func(t *testing.T) {
			reply := map[string]any{}
			for k, v := range full {
				if k != field {
					reply[k] = v
				}
			}
			raw, err := json.Marshal(reply)
			require.NoError(t, err)

			_, err = Parse(string(raw))
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			fe, ok := perr.Field(field)
			require.True(t, ok, "expected %s to be reported, got %v", field, perr.Fields)
			assert.Equal(t, ReasonMissing, fe.Reason)
			assert.Len(t, perr.Fields, 1)
			assert.Contains(t, perr.Error(), field)
		})
	}
}

func TestParseConstraintViolations(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		field  string
		reason Reason
	}{
		{
			name:   "confidence above one",
			raw:    `{"tone":"positive","confidence":1.5,"explanation":"Enthusiastic wording.","key_phrases":["great"]}`,
			field:  "confidence",
			reason: ReasonConstraint,
		},
		{
			name:   "negative confidence",
			raw:    `{"tone":"positive","confidence":-0.2,"explanation":"Enthusiastic wording.","key_phrases":["great"]}`,
			field:  "confidence",
			reason: ReasonConstraint,
		},
		{
			name:   "unknown tone",
			raw:    `{"tone":"sarcastic","confidence":0.7,"explanation":"Enthusiastic wording.","key_phrases":["great"]}`,
			field:  "tone",
			reason: ReasonConstraint,
		},
		{
			name:   "tone in wrong case",
			raw:    `{"tone":"Positive","confidence":0.7,"explanation":"Enthusiastic wording.","key_phrases":["great"]}`,
			field:  "tone",
			reason: ReasonConstraint,
		},
		{
			name:   "explanation too short",
			raw:    `{"tone":"positive","confidence":0.7,"explanation":"Nice.","key_phrases":["great"]}`,
			field:  "explanation",
			reason: ReasonConstraint,
		},
		{
			name:   "explanation too long",
			raw:    `{"tone":"positive","confidence":0.7,"explanation":"` + strings.Repeat("a", 501) + `","key_phrases":["great"]}`,
			field:  "explanation",
			reason: ReasonConstraint,
		},
		{
			name:   "confidence as string",
			raw:    `{"tone":"positive","confidence":"high","explanation":"Enthusiastic wording.","key_phrases":["great"]}`,
			field:  "confidence",
			reason: ReasonTypeMismatch,
		},
		{
			name:   "key phrases as string",
			raw:    `{"tone":"positive","confidence":0.7,"explanation":"Enthusiastic wording.","key_phrases":"great"}`,
			field:  "key_phrases",
			reason: ReasonTypeMismatch,
		},
		{
			name:   "null key phrases",
			raw:    `{"tone":"positive","confidence":0.7,"explanation":"Enthusiastic wording.","key_phrases":null}`,
			field:  "key_phrases",
			reason: ReasonMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			assert.Equal(t, Result{}, got)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			fe, ok := perr.Field(tt.field)
			require.True(t, ok, "expected %s in %v", tt.field, perr.Fields)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.NotEmpty(t, fe.Detail)
		})
	}
}

func TestParseReportsEveryFailingField(t *testing.T) {
	_, err := Parse(`{"tone":"angry","confidence":2,"explanation":"short"}`)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Has("tone"))
	assert.True(t, perr.Has("confidence"))
	assert.True(t, perr.Has("explanation"))
	assert.True(t, perr.Has("key_phrases"))
	assert.Equal(t, []string{"tone", "confidence", "explanation", "key_phrases"},
		[]string{perr.Fields[0].Field, perr.Fields[1].Field, perr.Fields[2].Field, perr.Fields[3].Field})
}

func TestParseReportsEveryTypeMismatch(t *testing.T) {
	_, err := Parse(`{"tone":5,"confidence":"high","explanation":["not","text"],"key_phrases":["fine"]}`)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Len(t, perr.Fields, 3)
	for i, field := range []string{"tone", "confidence", "explanation"} {
		assert.Equal(t, field, perr.Fields[i].Field)
		assert.Equal(t, ReasonTypeMismatch, perr.Fields[i].Reason)
	}
	assert.Contains(t, perr.Fields[0].Detail, "expected string")
	assert.Equal(t, "expected float64, got string", perr.Fields[1].Detail)
	assert.False(t, perr.Has("key_phrases"))
}

func TestParseMixesMismatchesAndMissingFields(t *testing.T) {
	_, err := Parse(`{"confidence":"high","explanation":"Enthusiastic wording.","key_phrases":"great"}`)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Len(t, perr.Fields, 3)
	assert.Equal(t, FieldError{Field: "tone", Reason: ReasonMissing, Detail: "field is required"}, perr.Fields[0])
	assert.Equal(t, "confidence", perr.Fields[1].Field)
	assert.Equal(t, ReasonTypeMismatch, perr.Fields[1].Reason)
	assert.Equal(t, "key_phrases", perr.Fields[2].Field)
	assert.Equal(t, ReasonTypeMismatch, perr.Fields[2].Reason)
}

func TestParseConstraintDetails(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		field  string
		detail string
	}{
		{
			name:   "confidence above one",
			raw:    `{"tone":"positive","confidence":1.5,"explanation":"Enthusiastic wording.","key_phrases":[]}`,
			field:  "confidence",
			detail: "must be at most 1, got 1.5",
		},
		{
			name:   "negative confidence",
			raw:    `{"tone":"positive","confidence":-0.2,"explanation":"Enthusiastic wording.","key_phrases":[]}`,
			field:  "confidence",
			detail: "must be at least 0, got -0.2",
		},
		{
			name:   "explanation too short",
			raw:    `{"tone":"positive","confidence":0.5,"explanation":"Nice.","key_phrases":[]}`,
			field:  "explanation",
			detail: "length must be at least 10 characters, got 5",
		},
		{
			name:   "explanation too long",
			raw:    `{"tone":"positive","confidence":0.5,"explanation":"` + strings.Repeat("é", 501) + `","key_phrases":[]}`,
			field:  "explanation",
			detail: "length must be at most 500 characters, got 501",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			fe, ok := perr.Field(tt.field)
			require.True(t, ok, "expected %s in %v", tt.field, perr.Fields)
			assert.Equal(t, tt.detail, fe.Detail)
		})
	}
}

func TestParseUndecodableReply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty reply", "", ErrNoJSON},
		{"prose only", "I think the tone is positive.", ErrNoJSON},
		{"unterminated object", `{"tone":"positive"`, ErrNoJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Empty(t, perr.Fields)
			assert.Equal(t, tt.raw, perr.Raw)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}

	t.Run("malformed object", func(t *testing.T) {
		_, err := Parse(`{tone: positive}`)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Empty(t, perr.Fields)
		assert.Error(t, perr.Err)
	})
}

func TestParseRoundTripsExample(t *testing.T) {
	example := Example()
	raw, err := json.Marshal(example)
	require.NoError(t, err)

	got, err := Parse("```json\n" + string(raw) + "\n```")
	require.NoError(t, err)
	assert.Equal(t, example, got)
}

func TestParseTrimsKeyPhrases(t *testing.T) {
	got, err := Parse(`{"tone":"positive","confidence":0.6,"explanation":"Upbeat and warm wording.","key_phrases":["  so glad ", "thanks"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"so glad", "thanks"}, got.KeyPhrases)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, true},
		{"trims whitespace", "  {\"a\":1}  ", `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"nested object", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, true},
		{"braces inside strings", `{"a":"}{"}`, `{"a":"}{"}`, true},
		{"escaped quote inside string", `{"a":"say \"}\""}`, `{"a":"say \"}\""}`, true},
		{"skips non-JSON braces", `{not json} then {"a":1}`, `{"a":1}`, true},
		{"skips empty object", `{} then {"tone":"neutral"}`, `{"tone":"neutral"}`, true},
		{"skips object without result fields", `{"a":1} then {"confidence":0.5}`, `{"confidence":0.5}`, true},
		{"falls back to first valid", `{"a":1} and {"b":2}`, `{"a":1}`, true},
		{"falls back to first balanced", `{not json}`, `{not json}`, true},
		{"no object", "nothing here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
