package models

import "time"

// CorpusChunk is one indexed fragment of reference material used by the
// embedding-backed plagiarism detector.
type CorpusChunk struct {
	ID          string    `db:"id" json:"id"`
	SourceURL   string    `db:"source_url" json:"source_url"`
	SourceTitle string    `db:"source_title" json:"source_title"`
	Text        string    `db:"text" json:"text"`
	Embedding   []float32 `db:"embedding" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CorpusMatch is a nearest-neighbor hit with its cosine distance.
type CorpusMatch struct {
	Chunk    CorpusChunk
	Distance float64
}
