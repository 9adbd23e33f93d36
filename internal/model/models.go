package model

import (
	"time"

	"github.com/google/uuid"
)

// ── Transcript ─────────────────────────────────────────

// Role identifies who spoke a transcript turn
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleCandidate, RoleInterviewer:
		return true
	}
	return false
}

// TranscriptEntry is one turn of an interview session
type TranscriptEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Difficulty frames the grading rubric for a session
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ── Feedback report ────────────────────────────────────

// Hiring recommendations
const (
	RecommendYes   = "YES"
	RecommendNo    = "NO"
	RecommendMaybe = "MAYBE"
)

// Per-answer evaluations
const (
	EvalStrong   = "STRONG"
	EvalAdequate = "ADEQUATE"
	EvalWeak     = "WEAK"
	EvalFail     = "FAIL"
)

// FeedbackReport is the structured post-interview evaluation.
// It is built once per request and never stored.
type FeedbackReport struct {
	OverallScore         int              `json:"overallScore"`
	Summary              string           `json:"summary"`
	HiringRecommendation string           `json:"hiringRecommendation"`
	CategoryScores       []CategoryScore  `json:"categoryScores"`
	Strengths            []string         `json:"strengths"`
	Weaknesses           []string         `json:"weaknesses"`
	TranscriptAnalysis   []AnswerAnalysis `json:"transcriptAnalysis"`
	Roadmap              []RoadmapPhase   `json:"roadmap"`
}

type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// AnswerAnalysis maps one interviewer question to the candidate's answer
type AnswerAnalysis struct {
	Question                 string `json:"question"`
	CandidateResponseSummary string `json:"candidateResponseSummary"`
	Evaluation               string `json:"evaluation"`
	Feedback                 string `json:"feedback"`
	ImprovementTip           string `json:"improvementTip"`
	Score                    int    `json:"score"`
}

type RoadmapPhase struct {
	Phase string   `json:"phase"`
	Tasks []string `json:"tasks"`
}

// ── Resume ingestion ───────────────────────────────────

// Resume file formats
const (
	FormatText  = "text"
	FormatPDF   = "pdf"
	FormatDOCX  = "docx"
	FormatOther = "other"
)

// Extraction is the text pulled out of an uploaded resume file.
// Placeholder is set when the format is not parsed and Text only describes the file.
type Extraction struct {
	Text        string `json:"text"`
	FileName    string `json:"fileName"`
	Format      string `json:"format"`
	Pages       int    `json:"pages,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

// ResumeDraft is the editable resume text for one candidate session.
// Turn increases on every text change or import start.
type ResumeDraft struct {
	ID          uuid.UUID `json:"id"`
	OwnerUID    string    `json:"-"`
	Text        string    `json:"text"`
	FileName    string    `json:"fileName,omitempty"`
	Placeholder bool      `json:"placeholder"`
	ParseError  string    `json:"parseError,omitempty"`
	Importing   bool      `json:"importing"`
	Turn        uint64    `json:"turn"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DraftView is a draft plus the values derived from its text
type DraftView struct {
	ResumeDraft
	Skills    []string `json:"skills"`
	WordCount int      `json:"wordCount"`
	Strength  int      `json:"strength"`
	Ready     bool     `json:"ready"`
}
