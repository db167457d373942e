package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/osanchez-dev/revisia/internal/models"
)

// citationPatterns are rough per-style matchers for in-text citations. They
// trade precision for zero external dependencies; the score deductions only
// need citation presence, not correctness.
var citationPatterns = map[models.CitationStyle]*regexp.Regexp{
	models.CitationAPA:     regexp.MustCompile(`[A-Za-z]+,?\s+\d{4}`),
	models.CitationIEEE:    regexp.MustCompile(`\[\d+\]`),
	models.CitationMLA:     regexp.MustCompile(`[A-Za-z]+\s+\d+`),
	models.CitationChicago: regexp.MustCompile(`[A-Za-z]+\s+\d{4},?\s+\d+`),
}

var bibliographyHeading = regexp.MustCompile(`(?i)referencias|bibliografía|bibliography|works cited`)

const citationBaseScore = 90

// analyzeCitations counts candidate in-text citations for the requested style
// and checks for a bibliography heading. A document longer than 1000
// characters with no citations loses 30 points; citations without a
// bibliography lose 20.
func analyzeCitations(text string, style models.CitationStyle) StageResult {
	pattern, ok := citationPatterns[style]
	if !ok {
		pattern = citationPatterns[models.CitationAPA]
	}

	citations := pattern.FindAllString(text, -1)
	hasBibliography := bibliographyHeading.MatchString(text)

	score := citationBaseScore
	var issues []models.Issue

	if len(citations) == 0 && len(text) > 1000 {
		issues = append(issues, models.Issue{
			Type:         models.IssueCitation,
			Severity:     models.SeverityHigh,
			Position:     models.Position{Start: 0, End: len(text)},
			OriginalText: "Full document",
			Suggestion:   fmt.Sprintf("Add citations in %s format", strings.ToUpper(string(style))),
			Explanation:  "Academic work requires proper citations",
			Confidence:   0.9,
		})
		score -= 30
	}

	if !hasBibliography && len(citations) > 0 {
		start := len(text) - 100
		if start < 0 {
			start = 0
		}
		issues = append(issues, models.Issue{
			Type:         models.IssueCitation,
			Severity:     models.SeverityMedium,
			Position:     models.Position{Start: start, End: len(text)},
			OriginalText: "End of document",
			Suggestion:   "Add a references or bibliography section",
			Explanation:  "Citations require a complete reference list",
			Confidence:   0.85,
		})
		score -= 20
	}

	return StageResult{Score: score, Issues: issues}
}
