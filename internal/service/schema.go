package service

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"

	"github.com/yourusername/prepiq-api/internal/model"
)

//go:embed schema/feedback_report.schema.json
var feedbackReportJSONSchema string

var feedbackReportSchema = mustCompileSchema(feedbackReportJSONSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling embedded schema: %v", err))
	}
	return schema
}

// SchemaViolation lists the fields of a payload that do not match the report schema
type SchemaViolation struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (v *SchemaViolation) Error() string {
	var sb strings.Builder
	sb.WriteString("schema validation failed:")
	for i, fe := range v.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// ValidateFeedbackJSON checks a raw model payload against the report schema.
// Malformed JSON is reported as a load error.
func ValidateFeedbackJSON(payload string) error {
	result, err := feedbackReportSchema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return fmt.Errorf("loading payload: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violation := &SchemaViolation{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violation.Errors = append(violation.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return violation
}

// ── Response schema sent to Gemini ────────────────────

func feedbackResponseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	intRange := func(desc string, lo, hi float64) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeInteger,
			Description: desc,
			Minimum:     genai.Ptr(lo),
			Maximum:     genai.Ptr(hi),
		}
	}
	strList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallScore": intRange("Weighted average 0-100", 0, 100),
			"summary":      str("Executive summary for the hiring committee. Be professional and direct."),
			"hiringRecommendation": {
				Type: genai.TypeString,
				Enum: []string{model.RecommendYes, model.RecommendNo, model.RecommendMaybe},
			},
			"categoryScores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category": str("e.g. Technical Depth, Communication, Problem Solving"),
						"score":    intRange("0-100", 0, 100),
					},
					Required: []string{"category", "score"},
				},
			},
			"strengths":  strList(),
			"weaknesses": strList(),
			"transcriptAnalysis": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question":                 str("The specific technical question asked."),
						"candidateResponseSummary": str("A concise summary of what the candidate actually said."),
						"evaluation": {
							Type: genai.TypeString,
							Enum: []string{model.EvalStrong, model.EvalAdequate, model.EvalWeak, model.EvalFail},
						},
						"feedback":       str("Specific critique. Why was it good or bad?"),
						"improvementTip": str("What is the correct or better approach?"),
						"score":          intRange("0-10", 0, 10),
					},
					Required: []string{"question", "candidateResponseSummary", "evaluation", "feedback", "improvementTip", "score"},
				},
			},
			"roadmap": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"phase": str("e.g. Immediate (Next 24h), Short Term (1 Week)"),
						"tasks": strList(),
					},
					Required: []string{"phase", "tasks"},
				},
			},
		},
		Required: []string{
			"overallScore", "summary", "hiringRecommendation", "categoryScores",
			"strengths", "weaknesses", "transcriptAnalysis", "roadmap",
		},
	}
}
