package models

import "time"

// IssueType classifies what kind of problem an issue reports.
type IssueType string

const (
	IssueGrammar    IssueType = "grammar"
	IssueSpelling   IssueType = "spelling"
	IssueStyle      IssueType = "style"
	IssueCoherence  IssueType = "coherence"
	IssueCitation   IssueType = "citation"
	IssuePlagiarism IssueType = "plagiarism"
	IssueStructure  IssueType = "structure"
)

func (t IssueType) Valid() bool {
	switch t {
	case IssueGrammar, IssueSpelling, IssueStyle, IssueCoherence,
		IssueCitation, IssuePlagiarism, IssueStructure:
		return true
	}
	return false
}

// Severity indicates how serious an issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Position is a character-offset range into Document.TextContent.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Issue is a single detected problem. Issues keep detection order; they are
// not sorted. IsResolved may be toggled by reviewers after the review
// completes.
type Issue struct {
	Type         IssueType `json:"type"`
	Severity     Severity  `json:"severity"`
	Position     Position  `json:"position"`
	OriginalText string    `json:"originalText"`
	Suggestion   string    `json:"suggestion"`
	Explanation  string    `json:"explanation"`
	Confidence   float64   `json:"confidence"`
	IsResolved   bool      `json:"isResolved"`
}

// Scores holds the six category scores, each 0-100. The set of categories is
// closed so the aggregation weight table stays exhaustive.
type Scores struct {
	Grammar     int `json:"grammar"`
	Spelling    int `json:"spelling"`
	Style       int `json:"style"`
	Coherence   int `json:"coherence"`
	Citation    int `json:"citation"`
	Originality int `json:"originality"`
}

// ScoreCategory names one entry of Scores.
type ScoreCategory string

const (
	ScoreGrammar     ScoreCategory = "grammar"
	ScoreSpelling    ScoreCategory = "spelling"
	ScoreStyle       ScoreCategory = "style"
	ScoreCoherence   ScoreCategory = "coherence"
	ScoreCitation    ScoreCategory = "citation"
	ScoreOriginality ScoreCategory = "originality"
)

// Map expands the closed record into the open form used for weighting.
func (s Scores) Map() map[ScoreCategory]float64 {
	return map[ScoreCategory]float64{
		ScoreGrammar:     float64(s.Grammar),
		ScoreSpelling:    float64(s.Spelling),
		ScoreStyle:       float64(s.Style),
		ScoreCoherence:   float64(s.Coherence),
		ScoreCitation:    float64(s.Citation),
		ScoreOriginality: float64(s.Originality),
	}
}

// Summary is derived from Issues; recompute it whenever Issues changes.
type Summary struct {
	TotalIssues            int      `json:"totalIssues"`
	CriticalIssues         int      `json:"criticalIssues"`
	ResolvedIssues         int      `json:"resolvedIssues"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

// AIAnalysis records which model produced the review and how confident the
// combined analysis was.
type AIAnalysis struct {
	Model            string  `json:"model"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
	Confidence       float64 `json:"confidence"`
}

// PlagiarismSource is one matched external source.
type PlagiarismSource struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Similarity  float64 `json:"similarity"`
	MatchedText string  `json:"matchedText"`
}

// PlagiarismCheck is the plagiarism detector's result embedded in a review.
type PlagiarismCheck struct {
	Similarity float64            `json:"similarity"`
	Sources    []PlagiarismSource `json:"sources"`
	IsOriginal bool               `json:"isOriginal"`
	Confidence float64            `json:"confidence"`
}

// Feedback is the owner's optional rating of a completed review.
type Feedback struct {
	IsHelpful *bool   `json:"isHelpful"`
	Rating    *int    `json:"rating"`
	Comments  *string `json:"comments"`
}

// Review captures one analysis run over a document. A review is written only
// by the pipeline run that owns it while non-terminal; once terminal it is
// immutable except for Feedback and issue resolution.
type Review struct {
	ID              string          `db:"id" json:"id"`
	DocumentID      string          `db:"document_id" json:"documentId"`
	UserID          string          `db:"user_id" json:"userId"`
	Status          Status          `db:"status" json:"status"`
	OverallScore    int             `db:"overall_score" json:"overallScore"`
	Scores          Scores          `json:"scores"`
	Issues          []Issue         `json:"issues"`
	Summary         Summary         `json:"summary"`
	AIAnalysis      AIAnalysis      `json:"aiAnalysis"`
	PlagiarismCheck PlagiarismCheck `json:"plagiarismCheck"`
	Feedback        Feedback        `json:"feedback"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// RecomputeSummary refreshes the issue counters from Issues, keeping the
// improvement suggestions untouched.
func (r *Review) RecomputeSummary() {
	total, critical, resolved := 0, 0, 0
	for _, iss := range r.Issues {
		total++
		if iss.Severity == SeverityCritical {
			critical++
		}
		if iss.IsResolved {
			resolved++
		}
	}
	r.Summary.TotalIssues = total
	r.Summary.CriticalIssues = critical
	r.Summary.ResolvedIssues = resolved
}
