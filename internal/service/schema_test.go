package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFeedbackJSON_Valid(t *testing.T) {
	assert.NoError(t, ValidateFeedbackJSON(validReportJSON))
}

func TestValidateFeedbackJSON_Violations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{
			name:    "bad evaluation enum",
			payload: `{"overallScore":1,"summary":"","hiringRecommendation":"NO","categoryScores":[],"strengths":[],"weaknesses":[],"transcriptAnalysis":[{"question":"q","candidateResponseSummary":"a","evaluation":"GREAT","feedback":"f","improvementTip":"t","score":5}],"roadmap":[]}`,
			field:   "transcriptAnalysis.0.evaluation",
		},
		{
			name:    "answer score above ten",
			payload: `{"overallScore":1,"summary":"","hiringRecommendation":"NO","categoryScores":[],"strengths":[],"weaknesses":[],"transcriptAnalysis":[{"question":"q","candidateResponseSummary":"a","evaluation":"WEAK","feedback":"f","improvementTip":"t","score":11}],"roadmap":[]}`,
			field:   "transcriptAnalysis.0.score",
		},
		{
			name:    "roadmap missing tasks",
			payload: `{"overallScore":1,"summary":"","hiringRecommendation":"MAYBE","categoryScores":[],"strengths":[],"weaknesses":[],"transcriptAnalysis":[],"roadmap":[{"phase":"Week 1"}]}`,
			field:   "roadmap.0",
		},
		{
			name:    "score as string",
			payload: `{"overallScore":"80","summary":"","hiringRecommendation":"YES","categoryScores":[],"strengths":[],"weaknesses":[],"transcriptAnalysis":[],"roadmap":[]}`,
			field:   "overallScore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeedbackJSON(tt.payload)
			require.Error(t, err)

			var violation *SchemaViolation
			require.True(t, errors.As(err, &violation))
			fields := make([]string, 0, len(violation.Errors))
			for _, fe := range violation.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateFeedbackJSON_Malformed(t *testing.T) {
	err := ValidateFeedbackJSON("{ not json")
	require.Error(t, err)

	var violation *SchemaViolation
	assert.False(t, errors.As(err, &violation))
}

// The schema sent to Gemini and the one used for validation must agree
func TestFeedbackSchemas_Agree(t *testing.T) {
	var doc struct {
		Required   []string `json:"required"`
		Properties map[string]struct {
			Enum  []string `json:"enum"`
			Items struct {
				Required   []string `json:"required"`
				Properties map[string]struct {
					Enum []string `json:"enum"`
				} `json:"properties"`
			} `json:"items"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(feedbackReportJSONSchema), &doc))

	gs := feedbackResponseSchema()
	assert.ElementsMatch(t, doc.Required, gs.Required)
	assert.Equal(t, doc.Properties["hiringRecommendation"].Enum, gs.Properties["hiringRecommendation"].Enum)

	for _, list := range []string{"categoryScores", "transcriptAnalysis", "roadmap"} {
		assert.ElementsMatch(t, doc.Properties[list].Items.Required, gs.Properties[list].Items.Required, list)
	}
	assert.Equal(t,
		doc.Properties["transcriptAnalysis"].Items.Properties["evaluation"].Enum,
		gs.Properties["transcriptAnalysis"].Items.Properties["evaluation"].Enum)
}
