package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxDetectedSkills caps the skill signals shown for a resume
const MaxDetectedSkills = 8

// SkillVocabulary is the fixed list of technology terms scanned for, in
// declaration order. Matching is literal substring containment, so short
// terms like "go" or "ai" also match inside unrelated words.
var SkillVocabulary = []string{
	"javascript", "typescript", "python", "java", "c++", "ruby", "go", "rust",
	"react", "angular", "vue", "next.js", "node", "express", "django", "flask",
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "ci/cd",
	"sql", "nosql", "mongodb", "postgresql", "redis", "graphql",
	"machine learning", "ai", "tensorflow", "pytorch", "pandas", "numpy",
	"html", "css", "sass", "tailwind", "redux", "git", "agile", "scrum",
}

// DetectSkills returns up to MaxDetectedSkills vocabulary terms found in text,
// in vocabulary order.
func DetectSkills(text string) []string {
	found := make([]string, 0, MaxDetectedSkills)
	if strings.TrimSpace(text) == "" {
		return found
	}

	// Casers hold state, so one per call
	lower := cases.Lower(language.Und).String(text)

	seen := make(map[string]struct{}, MaxDetectedSkills)
	for _, term := range SkillVocabulary {
		if len(found) == MaxDetectedSkills {
			break
		}
		if _, dup := seen[term]; dup {
			continue
		}
		if strings.Contains(lower, term) {
			seen[term] = struct{}{}
			found = append(found, term)
		}
	}
	return found
}
