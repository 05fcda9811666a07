package tone

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

// Candidate holds the field values decoded from a reply before validation.
// Pointers separate an absent field from its zero value.
type Candidate struct {
	Tone        *string  `json:"tone" validate:"required,oneof=positive negative neutral"`
	Confidence  *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	Explanation *string  `json:"explanation" validate:"required,min=10,max=500"`
	KeyPhrases  []string `json:"key_phrases" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so errors match what the model was asked to produce.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks c against the result schema and returns one FieldError per
// failing field, in schema order. A nil slice means c is valid.
func Validate(c Candidate) []FieldError {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Reason: ReasonConstraint, Detail: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, toFieldError(fe))
	}
	return out
}

func toFieldError(fe validator.FieldError) FieldError {
	f := FieldError{Field: fe.Field(), Reason: ReasonConstraint}
	switch fe.Tag() {
	case "required":
		f.Reason = ReasonMissing
		f.Detail = "field is required"
	case "oneof":
		f.Detail = fmt.Sprintf("must be one of %s, got %q", strings.ReplaceAll(fe.Param(), " ", ", "), deref(fe.Value()))
	case "gte":
		f.Detail = fmt.Sprintf("must be at least %s, got %v", fe.Param(), deref(fe.Value()))
	case "lte":
		f.Detail = fmt.Sprintf("must be at most %s, got %v", fe.Param(), deref(fe.Value()))
	case "min", "max":
		s, _ := deref(fe.Value()).(string)
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		f.Detail = fmt.Sprintf("length must be %s %s characters, got %d", bound, fe.Param(), len([]rune(s)))
	default:
		f.Detail = fmt.Sprintf("failed %q rule", fe.Tag())
	}
	return f
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p != nil {
			return *p
		}
	case *float64:
		if p != nil {
			return *p
		}
	}
	return v
}

// FormatInstructions describes the required reply shape: the JSON schema of
// Result plus an example instance. The text never changes between calls.
func FormatInstructions() string {
	return formatInstructions()
}

var formatInstructions = sync.OnceValue(func() string {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := r.Reflect(&Result{})
	schema.Version = ""

	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("tone: marshal schema: %v", err))
	}
	exampleJSON, err := json.MarshalIndent(Example(), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("tone: marshal example: %v", err))
	}

	var b strings.Builder
	b.WriteString("The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n")
	b.WriteString("Here is the output schema:\n```json\n")
	b.Write(schemaJSON)
	b.WriteString("\n```\n\n")
	b.WriteString("Here is an example of a well-formatted instance:\n```json\n")
	b.Write(exampleJSON)
	b.WriteString("\n```\n\n")
	b.WriteString("Respond with the JSON object only.")
	return b.String()
})
