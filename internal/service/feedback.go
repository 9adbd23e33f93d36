package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepiq-api/internal/model"
)

const (
	// MinTranscriptEntries is the shortest transcript worth sending for grading
	MinTranscriptEntries = 2
	// ResumePromptLimit bounds the resume prefix embedded in the prompt, in characters
	ResumePromptLimit = 4000
)

// FeedbackService turns an interview transcript into a graded report
type FeedbackService struct {
	gen StructuredGenerator
}

func NewFeedbackService(gen StructuredGenerator) *FeedbackService {
	return &FeedbackService{gen: gen}
}

// InsufficientDataReport is returned for sessions too short to grade
func InsufficientDataReport() *model.FeedbackReport {
	return &model.FeedbackReport{
		OverallScore:         0,
		Summary:              "Interview session was too short to generate a valid report. Please attempt a longer session.",
		HiringRecommendation: model.RecommendNo,
		CategoryScores:       []model.CategoryScore{},
		Strengths:            []string{},
		Weaknesses:           []string{"Insufficient data"},
		TranscriptAnalysis:   []model.AnswerAnalysis{},
		Roadmap:              []model.RoadmapPhase{},
	}
}

// GenerateFeedback grades the transcript against the resume.
// Any failure after the short-session guard is a *RequestFailedError.
func (s *FeedbackService) GenerateFeedback(
	ctx context.Context,
	resumeText string,
	difficulty model.Difficulty,
	transcript []model.TranscriptEntry,
) (*model.FeedbackReport, error) {
	if len(transcript) < MinTranscriptEntries {
		log.Info().Int("turns", len(transcript)).Msg("Transcript too short, returning insufficient data report")
		return InsufficientDataReport(), nil
	}

	req := StructuredRequest{
		System: buildSystemInstruction(difficulty),
		Prompt: buildFeedbackPrompt(resumeText, difficulty, transcript),
		Schema: feedbackResponseSchema(),
	}

	log.Info().
		Int("turns", len(transcript)).
		Str("difficulty", string(difficulty)).
		Int("promptLen", len(req.Prompt)).
		Msg("Requesting interview feedback")

	raw, err := s.gen.GenerateJSON(ctx, req)
	if err != nil {
		return nil, requestFailed("generate", err)
	}

	return parseFeedbackReport(raw)
}

// parseFeedbackReport validates the payload against the report schema before decoding it
func parseFeedbackReport(raw string) (*model.FeedbackReport, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, requestFailed("parse", fmt.Errorf("empty payload"))
	}

	if err := ValidateFeedbackJSON(raw); err != nil {
		return nil, requestFailed("validate", err)
	}

	var report model.FeedbackReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, requestFailed("decode", err)
	}

	normalizeReport(&report)
	return &report, nil
}

// normalizeReport keeps list fields as empty arrays rather than null
func normalizeReport(r *model.FeedbackReport) {
	if r.CategoryScores == nil {
		r.CategoryScores = []model.CategoryScore{}
	}
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []string{}
	}
	if r.TranscriptAnalysis == nil {
		r.TranscriptAnalysis = []model.AnswerAnalysis{}
	}
	if r.Roadmap == nil {
		r.Roadmap = []model.RoadmapPhase{}
	}
	for i := range r.Roadmap {
		if r.Roadmap[i].Tasks == nil {
			r.Roadmap[i].Tasks = []string{}
		}
	}
}

// ── Prompt construction ───────────────────────────────

// FormatTranscript renders one "[ROLE]: text" line per entry
func FormatTranscript(transcript []model.TranscriptEntry) string {
	lines := make([]string, 0, len(transcript))
	for _, entry := range transcript {
		lines = append(lines, fmt.Sprintf("[%s]: %s", strings.ToUpper(string(entry.Role)), entry.Text))
	}
	return strings.Join(lines, "\n")
}

// TruncateRunes keeps the first n characters of s
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func buildSystemInstruction(difficulty model.Difficulty) string {
	return fmt.Sprintf(`You are a Bar Raiser / Technical Hiring Manager at a top-tier tech company.
Your task is to generate a BRUTALLY HONEST, DATA-DRIVEN post-interview report based solely on the provided transcript.

### ANALYSIS PROTOCOL:
1. Evidence-Based: Do NOT hallucinate. Only evaluate what was actually said. If a topic wasn't covered, do not grade it.
2. Technical Accuracy: Verify the candidate's answers against technical truths.
   - Did they confuse O(n) with O(log n)?
   - Did they suggest a SQL database when NoSQL was better?
   - Flag these errors specifically.
3. Resume Verification: Compare their performance to their resume claims.
   - If they claim "Expert React" but failed basic hooks questions, flag it as a "Resume Discrepancy".
4. Communication: Evaluate conciseness. Did they ramble? Did they ask clarifying questions?

### SCORING RUBRIC (Context: %s Mode):
- 0-49 (Strong No Hire): Fundamental lack of knowledge, incorrect logic, or inability to code basic solutions.
- 50-69 (No Hire): Struggled with syntax, needed excessive hints, or communication was unclear.
- 70-89 (Hire): Solid solution, good communication, minor nits (e.g., missed edge case but fixed it).
- 90-100 (Strong Hire): Optimized solution, proactive communication, deep system understanding.

### OUTPUT FORMAT:
Return strictly valid JSON matching the schema.`, difficulty)
}

func buildFeedbackPrompt(resumeText string, difficulty model.Difficulty, transcript []model.TranscriptEntry) string {
	return fmt.Sprintf(`CANDIDATE PROFILE (RESUME SNIPPET):
"%s"

INTERVIEW CONFIGURATION:
- Difficulty: %s

RAW TRANSCRIPT:
%s

TASK:
Generate the feedback report.
For 'transcriptAnalysis', map specific questions asked by the interviewer to the candidate's response.
If the candidate's answer was vague, mark evaluation as 'WEAK'.
If the candidate provided a perfect optimal solution, mark as 'STRONG'.`,
		TruncateRunes(resumeText, ResumePromptLimit), difficulty, FormatTranscript(transcript))
}
