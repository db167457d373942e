package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
)

const (
	searchLimit   = 5
	maxQueryRunes = 2000
)

// EmbeddingDetector backs plagiarism detection with a nearest-neighbor search
// over an indexed corpus of reference material. The result contract is the
// same as the stub's: similarity percentage, matched sources above the
// originality threshold, isOriginal cutoff at 15%.
type EmbeddingDetector struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
}

func NewEmbeddingDetector(db core.DbClient, embedder core.EmbeddingProvider) *EmbeddingDetector {
	return &EmbeddingDetector{db: db, embedder: embedder}
}

func (d *EmbeddingDetector) Detect(ctx context.Context, text string) (*models.PlagiarismCheck, error) {
	query := text
	if runes := []rune(query); len(runes) > maxQueryRunes {
		query = string(runes[:maxQueryRunes])
	}

	vecs, err := d.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, errors.New("embed query: empty embedding result")
	}

	matches, err := d.db.SearchCorpusChunks(ctx, vecs[0], searchLimit)
	if err != nil {
		return nil, fmt.Errorf("corpus search: %w", err)
	}

	var (
		similarity float64
		sources    []models.PlagiarismSource
	)
	for _, m := range matches {
		// Cosine distance in [0,2]; map to a similarity percentage.
		s := (1 - m.Distance) * 100
		if s < 0 {
			s = 0
		}
		if s > similarity {
			similarity = s
		}
		if s > originalityThreshold {
			sources = append(sources, models.PlagiarismSource{
				URL:         m.Chunk.SourceURL,
				Title:       m.Chunk.SourceTitle,
				Similarity:  s,
				MatchedText: snippet(m.Chunk.Text, 100),
			})
		}
	}

	return &models.PlagiarismCheck{
		Similarity: similarity,
		Sources:    sources,
		IsOriginal: similarity < originalityThreshold,
		Confidence: 0.85,
	}, nil
}

// IndexSource chunks reference material by paragraph, embeds it in one batch,
// and persists the vectors for later searches.
func (d *EmbeddingDetector) IndexSource(ctx context.Context, sourceURL, sourceTitle, text string) error {
	var texts []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			texts = append(texts, p)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	vecs, err := d.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	if len(vecs) != len(texts) {
		return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(texts))
	}

	chunks := make([]models.CorpusChunk, len(texts))
	for i := range texts {
		chunks[i] = models.CorpusChunk{
			ID:          uuid.NewString(),
			SourceURL:   sourceURL,
			SourceTitle: sourceTitle,
			Text:        texts[i],
			Embedding:   vecs[i],
			CreatedAt:   time.Now(),
		}
	}
	return d.db.InsertCorpusChunks(ctx, chunks)
}
