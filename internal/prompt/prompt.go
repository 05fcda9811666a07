package prompt

import (
	"strings"
	"text/template"
)

// SystemMessage sets the role the model plays for every analysis.
const SystemMessage = "You are an expert in tone analysis. You answer with a single JSON object."

// Prompt is the rendered request sent to the completion service.
type Prompt struct {
	System string
	User   string
}

var userTemplate = template.Must(template.New("tone").Parse(
	`Analyze the given text and determine its overall tone.

Consider the following when analyzing:
- Word choice and language style
- Emotional indicators
- Context and implied meaning
- Overall sentiment

Text to analyze: "{{.Text}}"

{{.FormatInstructions}}

Important:
- Be objective and precise in your analysis
- Provide specific examples from the text
- Confidence should reflect how certain you are about the tone
- Include 2-5 key phrases that influenced your decision, most salient first
`))

// Build renders the analysis prompt. text is embedded verbatim; callers are
// responsible for rejecting blank input.
func Build(text, formatInstructions string) Prompt {
	var b strings.Builder
	// Executing a parsed template against a plain struct only fails on writer
	// errors, and strings.Builder never returns one.
	_ = userTemplate.Execute(&b, struct {
		Text               string
		FormatInstructions string
	}{text, formatInstructions})
	return Prompt{System: SystemMessage, User: b.String()}
}
