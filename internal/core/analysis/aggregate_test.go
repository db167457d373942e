package analysis

import (
	"testing"

	"github.com/osanchez-dev/revisia/internal/models"
)

func TestAggregateScoresReferenceExample(t *testing.T) {
	scores := models.Scores{
		Grammar:     80,
		Spelling:    90,
		Style:       70,
		Coherence:   85,
		Citation:    75,
		Originality: 95,
	}
	// Weighted sum = 20 + 13.5 + 14 + 17 + 11.25 + 4.75 = 80.5 → rounds to 81.
	if got := AggregateScores(scores); got != 81 {
		t.Fatalf("AggregateScores = %d, want 81", got)
	}
}

func TestAggregateWeightedRoundsHalfAwayFromZero(t *testing.T) {
	got := AggregateWeighted(map[models.ScoreCategory]float64{
		models.ScoreGrammar: 81.5,
	})
	if got != 82 {
		t.Fatalf("AggregateWeighted = %d, want 82 (round half up)", got)
	}
}

func TestAggregateWeightedDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		scores map[models.ScoreCategory]float64
		want   int
	}{
		{"empty", map[models.ScoreCategory]float64{}, 0},
		{"nil", nil, 0},
		{"unknown keys only", map[models.ScoreCategory]float64{"sentiment": 90}, 0},
		{"single category normalizes", map[models.ScoreCategory]float64{models.ScoreGrammar: 100}, 100},
		{"unknown keys ignored", map[models.ScoreCategory]float64{
			models.ScoreGrammar: 60, "sentiment": 100,
		}, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateWeighted(tt.scores); got != tt.want {
				t.Errorf("AggregateWeighted = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregateWeightedRange(t *testing.T) {
	cases := []models.Scores{
		{},
		{Grammar: 100, Spelling: 100, Style: 100, Coherence: 100, Citation: 100, Originality: 100},
		{Grammar: 1, Spelling: 99, Style: 37, Coherence: 62, Citation: 88, Originality: 5},
	}
	for _, s := range cases {
		got := AggregateScores(s)
		if got < 0 || got > 100 {
			t.Errorf("AggregateScores(%+v) = %d, out of [0,100]", s, got)
		}
	}
}
