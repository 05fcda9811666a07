package tone

// Tone is the classified emotional valence of a text.
type Tone string

const (
	Positive Tone = "positive"
	Negative Tone = "negative"
	Neutral  Tone = "neutral"
)

// Valid reports whether t is one of the three known tones.
func (t Tone) Valid() bool {
	switch t {
	case Positive, Negative, Neutral:
		return true
	default:
		return false
	}
}

// Result is the validated outcome of one tone analysis.
type Result struct {
	Tone        Tone     `json:"tone" jsonschema:"enum=positive,enum=negative,enum=neutral" jsonschema_description:"The overall tone of the text"`
	Confidence  float64  `json:"confidence" jsonschema:"minimum=0,maximum=1" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Explanation string   `json:"explanation" jsonschema:"minLength=10,maxLength=500" jsonschema_description:"Detailed explanation of why this tone was detected"`
	KeyPhrases  []string `json:"key_phrases" jsonschema_description:"Important phrases from the text that influenced the tone analysis, most salient first"`
}

// Example returns the well-formed instance shown to the model.
func Example() Result {
	return Result{
		Tone:        Positive,
		Confidence:  0.85,
		Explanation: "The text contains optimistic language and positive sentiment indicators.",
		KeyPhrases:  []string{"great job", "excellent work", "very happy"},
	}
}
