package analysis

import (
	"math"

	"github.com/osanchez-dev/revisia/internal/models"
)

// analyzeStyle computes style metrics locally: average sentence length, the
// fraction of long words, and the readability estimate. Empty input degrades
// to the stage fallback.
func analyzeStyle(text string, language models.Language) StageResult {
	words := tokenizeWords(text)
	sentences := splitSentences(text)
	if len(words) == 0 || len(sentences) == 0 {
		return fallbackStage()
	}

	avgSentenceLength := float64(len(words)) / float64(len(sentences))

	complexWords := 0
	for _, w := range words {
		if len([]rune(w)) > 6 {
			complexWords++
		}
	}
	complexFraction := float64(complexWords) / float64(len(words))

	readability := ReadabilityScore(text, language)

	var issues []models.Issue

	if avgSentenceLength > 25 {
		issues = append(issues, models.Issue{
			Type:         models.IssueStyle,
			Severity:     models.SeverityMedium,
			Position:     models.Position{Start: 0, End: len(text)},
			OriginalText: "Full text",
			Suggestion:   "Consider splitting long sentences to improve readability",
			Explanation:  "Very long sentences can make the text hard to follow",
			Confidence:   0.8,
		})
	}

	if complexFraction > 0.3 {
		issues = append(issues, models.Issue{
			Type:         models.IssueStyle,
			Severity:     models.SeverityLow,
			Position:     models.Position{Start: 0, End: len(text)},
			OriginalText: "Vocabulary",
			Suggestion:   "Consider simpler wording where appropriate",
			Explanation:  "Overly complex vocabulary can hurt clarity",
			Confidence:   0.7,
		})
	}

	return StageResult{
		Score:  int(math.Min(100, readability+20)),
		Issues: issues,
	}
}
