package models

import "testing"

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !LanguageSpanish.Valid() || !LanguageEnglish.Valid() {
		t.Error("known languages should be valid")
	}
	if Language("fr").Valid() {
		t.Error("fr is not a supported language")
	}

	for _, s := range []CitationStyle{CitationAPA, CitationIEEE, CitationMLA, CitationChicago} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if CitationStyle("harvard").Valid() {
		t.Error("harvard is not a supported style")
	}

	if Status("queued").Valid() {
		t.Error("queued is not a known status")
	}

	if IssueType("tone").Valid() {
		t.Error("tone is not a known issue type")
	}
	if Severity("severe").Valid() {
		t.Error("severe is not a known severity")
	}
}

func TestDocumentCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"simple", "uno dos tres", 3},
		{"mixed whitespace", "uno\tdos\n\ntres  cuatro", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Document{TextContent: tt.text}
			d.CountWords()
			if d.WordCount != tt.want {
				t.Errorf("WordCount = %d, want %d", d.WordCount, tt.want)
			}
		})
	}
}
