package analysis

import (
	"regexp"
	"strings"

	"github.com/osanchez-dev/revisia/internal/models"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}']+`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+`)
	syllableSuffix  = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	syllableLeading = regexp.MustCompile(`^y`)
	vowelCluster    = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// ReadabilityScore computes a Flesch-Reading-Ease style score for the text,
// clamped to [0,100]. The coefficients differ per language: the Spanish
// variant (Fernández-Huerta flavored) weighs syllables less than the English
// original. Deterministic for a given (text, language) pair.
func ReadabilityScore(text string, language models.Language) float64 {
	words := tokenizeWords(text)
	sentences := splitSentences(text)
	if len(words) == 0 || len(sentences) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	avgWordsPerSentence := float64(len(words)) / float64(len(sentences))
	avgSyllablesPerWord := float64(syllables) / float64(len(words))

	var score float64
	if language == models.LanguageSpanish {
		score = 206.835 - 1.02*avgWordsPerSentence - 60*avgSyllablesPerWord
	} else {
		score = 206.835 - 1.015*avgWordsPerSentence - 84.6*avgSyllablesPerWord
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func tokenizeWords(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// countSyllables estimates syllables via vowel clusters. Words of three or
// fewer characters count as one syllable; silent English endings are trimmed
// before counting.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	if len([]rune(word)) <= 3 {
		return 1
	}
	word = syllableSuffix.ReplaceAllString(word, "")
	word = syllableLeading.ReplaceAllString(word, "")
	n := len(vowelCluster.FindAllString(word, -1))
	if n == 0 {
		return 1
	}
	return n
}
