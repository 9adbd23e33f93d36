package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSkills(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "whitespace only", text: "  \n\t ", want: []string{}},
		{name: "duplicates collapse in vocabulary order", text: "I love React and AWS and also react", want: []string{"react", "aws"}},
		{name: "case insensitive", text: "PYTHON, Docker and PostgreSQL", want: []string{"python", "docker", "sql", "postgresql"}},
		{name: "substring false positive accepted", text: "I am going home", want: []string{"go"}},
		{name: "no matches", text: "Bookkeeping and payroll", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSkills(tt.text))
		})
	}
}

func TestDetectSkills_CapsAtEight(t *testing.T) {
	text := strings.Join(SkillVocabulary, " ")

	got := DetectSkills(text)
	assert.Len(t, got, MaxDetectedSkills)
	assert.Equal(t, SkillVocabulary[:MaxDetectedSkills], got)
}

func TestDetectSkills_Properties(t *testing.T) {
	inputs := []string{
		"Senior Go engineer: Kubernetes, gRPC, Redis, PostgreSQL, Terraform on GCP",
		"Frontend: TypeScript, React, Redux, Tailwind, Sass, HTML/CSS, Next.js",
		"Data: Python, Pandas, NumPy, PyTorch, TensorFlow, machine learning, SQL",
		"ÅNGSTRÖM lab notes about rust and Ruby",
	}

	vocab := make(map[string]bool, len(SkillVocabulary))
	for _, term := range SkillVocabulary {
		vocab[term] = true
	}

	for _, in := range inputs {
		got := DetectSkills(in)

		assert.LessOrEqual(t, len(got), MaxDetectedSkills)
		seen := map[string]bool{}
		for _, skill := range got {
			assert.True(t, vocab[skill], "unknown skill %q", skill)
			assert.Contains(t, strings.ToLower(in), skill)
			assert.False(t, seen[skill], "duplicate skill %q", skill)
			seen[skill] = true
		}

		// No hidden state between calls
		assert.Equal(t, got, DetectSkills(in))
	}
}

func TestSkillVocabulary_HasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, term := range SkillVocabulary {
		assert.False(t, seen[term], "duplicate vocabulary term %q", term)
		assert.Equal(t, strings.ToLower(term), term)
		seen[term] = true
	}
}
