package analysis

import (
	"strings"
	"testing"

	"github.com/osanchez-dev/revisia/internal/models"
)

const sampleText = "El gato duerme en la casa. El perro corre por el parque. " +
	"Los estudiantes leen libros interesantes todos los días."

func TestReadabilityScoreDeterministic(t *testing.T) {
	first := ReadabilityScore(sampleText, models.LanguageSpanish)
	for i := 0; i < 5; i++ {
		if got := ReadabilityScore(sampleText, models.LanguageSpanish); got != first {
			t.Fatalf("run %d: got %v, want %v", i, got, first)
		}
	}
}

func TestReadabilityScoreRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		lang models.Language
	}{
		{"simple spanish", sampleText, models.LanguageSpanish},
		{"simple english", "The cat sleeps. The dog runs. Birds fly high.", models.LanguageEnglish},
		{"dense english", strings.Repeat("incomprehensibility notwithstanding institutionalization. ", 20), models.LanguageEnglish},
		{"single word", "Hola.", models.LanguageSpanish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadabilityScore(tt.text, tt.lang)
			if got < 0 || got > 100 {
				t.Errorf("ReadabilityScore = %v, out of [0,100]", got)
			}
		})
	}
}

func TestReadabilityScoreEmptyText(t *testing.T) {
	if got := ReadabilityScore("", models.LanguageSpanish); got != 0 {
		t.Fatalf("empty text: got %v, want 0", got)
	}
	if got := ReadabilityScore("...!?", models.LanguageEnglish); got != 0 {
		t.Fatalf("punctuation only: got %v, want 0", got)
	}
}

func TestReadabilityCoefficientsDifferPerLanguage(t *testing.T) {
	text := "Researchers published extensive documentation describing complicated methodology. " +
		"Reviewers evaluated submissions carefully."
	es := ReadabilityScore(text, models.LanguageSpanish)
	en := ReadabilityScore(text, models.LanguageEnglish)
	if es == en {
		t.Fatalf("expected different scores per language, both %v", es)
	}
	// The Spanish formula penalizes syllables less, so it reads higher here.
	if es < en {
		t.Fatalf("spanish %v should exceed english %v for syllable-heavy text", es, en)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"the", 1},
		{"a", 1},
		{"table", 2},
		{"banana", 3},
		{"readable", 3},
		{"rhythm", 1}, // y counts as a vowel
		{"crwth", 1},  // no vowel cluster at all, floor of one
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := countSyllables(tt.word); got != tt.want {
				t.Errorf("countSyllables(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

func TestSplitSentencesDropsEmptyParts(t *testing.T) {
	got := splitSentences("First. Second!  Third?   ")
	if len(got) != 3 {
		t.Fatalf("got %d sentences %q, want 3", len(got), got)
	}
}

func TestTokenizeWordsKeepsAccentsAndApostrophes(t *testing.T) {
	words := tokenizeWords("Además, don't count símbolos: ¡nunca!")
	want := []string{"Además", "don't", "count", "símbolos", "nunca"}
	if len(words) != len(want) {
		t.Fatalf("got %q, want %q", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, words[i], want[i])
		}
	}
}
