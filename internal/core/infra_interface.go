package core

import (
	"context"
	"errors"

	"github.com/osanchez-dev/revisia/internal/models"
)

// ErrReviewInProgress is returned by CreateReviewIfIdle when the document
// already has a review in a non-terminal state. The store enforces this, so
// concurrent creation requests cannot both win.
var ErrReviewInProgress = errors.New("document already has a review in progress")

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status models.Status) error
	CompleteDocument(ctx context.Context, id string, status models.Status, meta models.ProcessingMetadata) error

	// CreateReviewIfIdle inserts the review only when the document has no
	// pending or processing review; otherwise it returns ErrReviewInProgress.
	CreateReviewIfIdle(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error)
	UpdateReviewStatus(ctx context.Context, id string, status models.Status) error
	SaveReviewResults(ctx context.Context, review *models.Review) error
	UpdateReviewFeedback(ctx context.Context, id string, fb models.Feedback) error
	UpdateReviewIssues(ctx context.Context, id string, issues []models.Issue, summary models.Summary) error

	// ApplyReviewStatistics folds one completed review's overall score into
	// the owner's rolling counters: reviewsReceived += 1 and
	// averageScore = (oldAvg*(n-1) + score) / n with n post-increment.
	ApplyReviewStatistics(ctx context.Context, userID string, overallScore int) error
	IncrementDocumentsUploaded(ctx context.Context, userID string) error

	InsertCorpusChunks(ctx context.Context, chunks []models.CorpusChunk) error
	SearchCorpusChunks(ctx context.Context, queryVec []float32, limit int) ([]models.CorpusMatch, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}

// EmbeddingProvider turns texts into vectors for similarity search.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates text from a prompt pair.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// TextExtractor yields plain text from an uploaded file.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
