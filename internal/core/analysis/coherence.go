package analysis

import (
	"strings"

	"github.com/osanchez-dev/revisia/internal/models"
)

// transitionWords per language; the coherence heuristic only checks for the
// presence of any of them between paragraphs.
var transitionWords = map[models.Language][]string{
	models.LanguageSpanish: {"además", "sin embargo", "por otro lado", "en consecuencia", "finalmente"},
	models.LanguageEnglish: {"furthermore", "however", "on the other hand", "consequently", "finally"},
}

const coherenceBaseScore = 85

// analyzeCoherence splits the text on blank lines into paragraphs and, when
// the text has more than two of them, checks whether any paragraph carries a
// known transition word. Missing transitions cost 15 points.
func analyzeCoherence(text string, language models.Language) StageResult {
	score := coherenceBaseScore
	var issues []models.Issue

	paragraphs := strings.Split(text, "\n\n")
	if len(paragraphs) > 2 {
		transitions := transitionWords[language]
		if transitions == nil {
			transitions = transitionWords[models.LanguageSpanish]
		}

		hasTransitions := false
		for _, paragraph := range paragraphs {
			lower := strings.ToLower(paragraph)
			for _, word := range transitions {
				if strings.Contains(lower, word) {
					hasTransitions = true
					break
				}
			}
			if hasTransitions {
				break
			}
		}

		if !hasTransitions {
			issues = append(issues, models.Issue{
				Type:         models.IssueCoherence,
				Severity:     models.SeverityMedium,
				Position:     models.Position{Start: 0, End: len(text)},
				OriginalText: "Text structure",
				Suggestion:   "Add transition words between paragraphs",
				Explanation:  "Transitions improve the flow and coherence of the text",
				Confidence:   0.75,
			})
			score -= 15
		}
	}

	return StageResult{Score: score, Issues: issues}
}
