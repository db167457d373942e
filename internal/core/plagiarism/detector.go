package plagiarism

import (
	"context"
	"math/rand"
	"sync"

	"github.com/osanchez-dev/revisia/internal/models"
)

// originalityThreshold is the similarity percentage below which a text is
// considered original. Callers depend on this cutoff; keep it stable across
// detector implementations.
const originalityThreshold = 15.0

// Detector computes a similarity percentage and matched sources for a text.
// Implementations must keep the result contract identical so callers are
// unaffected by swapping the stub for the embedding-backed detector.
type Detector interface {
	Detect(ctx context.Context, text string) (*models.PlagiarismCheck, error)
}

// StubDetector simulates plagiarism detection with a bounded random
// similarity. It stands in until a corpus is indexed for the embedding
// detector and keeps the external contract exact: similarity in [0,20), one
// synthetic source above the originality threshold.
type StubDetector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewStubDetector(seed int64) *StubDetector {
	return &StubDetector{rng: rand.New(rand.NewSource(seed))}
}

func (d *StubDetector) Detect(_ context.Context, text string) (*models.PlagiarismCheck, error) {
	d.mu.Lock()
	similarity := d.rng.Float64() * 20
	d.mu.Unlock()

	var sources []models.PlagiarismSource
	if similarity > originalityThreshold {
		sources = append(sources, models.PlagiarismSource{
			URL:         "https://example.com/academic-paper",
			Title:       "Similar Academic Paper",
			Similarity:  similarity,
			MatchedText: snippet(text, 100),
		})
	}

	return &models.PlagiarismCheck{
		Similarity: similarity,
		Sources:    sources,
		IsOriginal: similarity < originalityThreshold,
		Confidence: 0.85,
	}, nil
}

func snippet(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
