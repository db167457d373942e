package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/osanchez-dev/revisia/internal/models"
)

func TestAnalyzeTextSurvivesLLMFailure(t *testing.T) {
	engine := NewEngine(&mockLLM{err: errors.New("unreachable")}, "test-model")
	text := longUncitedText()

	res := engine.AnalyzeText(context.Background(), text, Options{
		Language:      models.LanguageSpanish,
		CitationStyle: models.CitationAPA,
	})

	if res.Scores.Grammar != 75 || res.Scores.Spelling != 80 {
		t.Errorf("grammar fallback scores = %d/%d, want 75/80", res.Scores.Grammar, res.Scores.Spelling)
	}
	if res.Scores.Originality != 85 {
		t.Errorf("originality placeholder = %d, want 85", res.Scores.Originality)
	}
	if res.Scores.Citation != 60 {
		t.Errorf("citation score = %d, want 60 for a long uncited document", res.Scores.Citation)
	}

	// Every issue from the local stages is collected.
	if res.Summary.TotalIssues != len(res.Issues) {
		t.Errorf("summary total = %d, issues = %d", res.Summary.TotalIssues, len(res.Issues))
	}
	if res.Summary.CriticalIssues != 0 {
		t.Errorf("critical = %d, want 0", res.Summary.CriticalIssues)
	}

	// Citation below 70 must yield its suggestion.
	if !containsSuggestion(res.Summary.ImprovementSuggestions, "citations") {
		t.Errorf("missing citation suggestion in %q", res.Summary.ImprovementSuggestions)
	}

	if res.Metadata.Model != "combined-analysis" {
		t.Errorf("model = %q, want combined-analysis", res.Metadata.Model)
	}
	if res.Metadata.Language != models.LanguageSpanish {
		t.Errorf("language = %q", res.Metadata.Language)
	}
	if res.Metadata.WordCount == 0 {
		t.Error("word count should be non-zero")
	}
	if res.Metadata.ProcessingTimeMs < 0 {
		t.Errorf("processing time = %d", res.Metadata.ProcessingTimeMs)
	}

	wantConfidence := confidenceFor(res.Scores)
	if math.Abs(res.Metadata.Confidence-wantConfidence) > 1e-9 {
		t.Errorf("confidence = %v, want %v", res.Metadata.Confidence, wantConfidence)
	}
}

func TestAnalyzeTextIssueOrderAndCriticals(t *testing.T) {
	response := `{
	  "score": 40,
	  "spellingScore": 55,
	  "issues": [
	    {"type": "grammar", "severity": "critical", "position": {"start": 0, "end": 4},
	     "originalText": "teh", "suggestion": "the", "explanation": "typo", "confidence": 0.9}
	  ]
	}`
	engine := NewEngine(&mockLLM{response: response}, "test-model")
	text := longUncitedText()

	res := engine.AnalyzeText(context.Background(), text, Options{
		Language:      models.LanguageSpanish,
		CitationStyle: models.CitationAPA,
	})

	if len(res.Issues) < 2 {
		t.Fatalf("expected grammar plus citation issues, got %+v", res.Issues)
	}
	// Detection order: grammar stage issues come first, citation last.
	if res.Issues[0].Type != models.IssueGrammar {
		t.Errorf("first issue = %s, want grammar", res.Issues[0].Type)
	}
	if last := res.Issues[len(res.Issues)-1]; last.Type != models.IssueCitation {
		t.Errorf("last issue = %s, want citation", last.Type)
	}

	if res.Summary.CriticalIssues != 1 {
		t.Fatalf("critical = %d, want 1", res.Summary.CriticalIssues)
	}
	if !containsSuggestion(res.Summary.ImprovementSuggestions, "1 critical issue") {
		t.Errorf("missing critical-issue suggestion in %q", res.Summary.ImprovementSuggestions)
	}
	// Grammar 40 is below 70, so its suggestion is present too.
	if !containsSuggestion(res.Summary.ImprovementSuggestions, "grammar") {
		t.Errorf("missing grammar suggestion in %q", res.Summary.ImprovementSuggestions)
	}
}

func TestOverallConfidenceCapped(t *testing.T) {
	perfect := models.Scores{Grammar: 100, Spelling: 100, Style: 100, Coherence: 100, Citation: 100, Originality: 100}
	if got := overallConfidence(perfect); got != 1 {
		t.Fatalf("confidence = %v, want capped at 1", got)
	}
}

func confidenceFor(s models.Scores) float64 {
	m := s.Map()
	var sum float64
	for _, v := range m {
		sum += v
	}
	return math.Min(1, sum/float64(len(m))/100+0.2)
}

func containsSuggestion(suggestions []string, fragment string) bool {
	for _, s := range suggestions {
		if strings.Contains(strings.ToLower(s), strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
