package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
)

// originalityPlaceholder fills the originality slot of the score map; the
// plagiarism check computes the real value separately.
const originalityPlaceholder = 85

const combinedModelName = "combined-analysis"

// Options configure one analysis run.
type Options struct {
	Language      models.Language
	CitationStyle models.CitationStyle
}

// StageResult is the common contract of every sub-analyzer. SpellingScore is
// only meaningful for the grammar stage.
type StageResult struct {
	Score         int
	SpellingScore int
	Issues        []models.Issue
}

// fallbackStage is what a sub-analyzer yields when its internals fail. The
// failure is logged at the stage and never aborts the run.
func fallbackStage() StageResult {
	return StageResult{Score: 75, SpellingScore: 80}
}

// Metadata describes a completed analysis run.
type Metadata struct {
	ProcessingTimeMs int64
	Model            string
	Confidence       float64
	WordCount        int
	Language         models.Language
}

// Result is the combined output of the four sub-analyzers.
type Result struct {
	Scores   models.Scores
	Issues   []models.Issue
	Summary  models.Summary
	Metadata Metadata
}

// Engine runs the sub-analyzers over a text and merges their output. The
// grammar stage needs an LLM; the other stages are local heuristics.
type Engine struct {
	llm       core.LLMProvider
	modelName string
}

func NewEngine(llm core.LLMProvider, modelName string) *Engine {
	return &Engine{llm: llm, modelName: modelName}
}

// AnalyzeText runs the four sub-analyzers concurrently and combines them.
// Stage failures are absorbed inside each stage, so AnalyzeText itself always
// produces a usable result.
func (e *Engine) AnalyzeText(ctx context.Context, text string, opts Options) *Result {
	start := time.Now()

	var grammar, style, coherence, citation StageResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grammar = e.analyzeGrammar(gctx, text, opts.Language)
		return nil
	})
	g.Go(func() error {
		style = analyzeStyle(text, opts.Language)
		return nil
	})
	g.Go(func() error {
		coherence = analyzeCoherence(text, opts.Language)
		return nil
	})
	g.Go(func() error {
		citation = analyzeCitations(text, opts.CitationStyle)
		return nil
	})
	_ = g.Wait()

	scores := models.Scores{
		Grammar:     grammar.Score,
		Spelling:    grammar.SpellingScore,
		Style:       style.Score,
		Coherence:   coherence.Score,
		Citation:    citation.Score,
		Originality: originalityPlaceholder,
	}

	// Issue order is detection order: grammar, style, coherence, citation.
	issues := make([]models.Issue, 0,
		len(grammar.Issues)+len(style.Issues)+len(coherence.Issues)+len(citation.Issues))
	issues = append(issues, grammar.Issues...)
	issues = append(issues, style.Issues...)
	issues = append(issues, coherence.Issues...)
	issues = append(issues, citation.Issues...)

	critical := 0
	for _, iss := range issues {
		if iss.Severity == models.SeverityCritical {
			critical++
		}
	}

	return &Result{
		Scores: scores,
		Issues: issues,
		Summary: models.Summary{
			TotalIssues:            len(issues),
			CriticalIssues:         critical,
			ImprovementSuggestions: improvementSuggestions(scores, critical),
		},
		Metadata: Metadata{
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Model:            combinedModelName,
			Confidence:       overallConfidence(scores),
			WordCount:        len(tokenizeWords(text)),
			Language:         opts.Language,
		},
	}
}

// improvementSuggestions emits one suggestion per weak category plus a
// closing note when critical issues exist.
func improvementSuggestions(scores models.Scores, criticalIssues int) []string {
	var out []string
	if scores.Grammar < 70 {
		out = append(out, "Review the grammar and spelling of the text")
	}
	if scores.Style < 70 {
		out = append(out, "Improve the style and clarity of the writing")
	}
	if scores.Coherence < 70 {
		out = append(out, "Work on coherence and flow between paragraphs")
	}
	if scores.Citation < 70 {
		out = append(out, "Check the format and completeness of the citations")
	}
	if criticalIssues > 0 {
		out = append(out, fmt.Sprintf("Address the %d critical issues identified", criticalIssues))
	}
	return out
}

func overallConfidence(scores models.Scores) float64 {
	m := scores.Map()
	var sum float64
	for _, v := range m {
		sum += v
	}
	avg := sum / float64(len(m))
	return math.Min(1, avg/100+0.2)
}
