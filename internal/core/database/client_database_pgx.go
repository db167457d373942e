package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/osanchez-dev/revisia/internal/config"
	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

const userColumns = `
	id, name, email, password_hash,
	documents_uploaded, reviews_received, average_score,
	created_at, updated_at
`

func (c *DatabaseClient) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Statistics.DocumentsUploaded, &u.Statistics.ReviewsReceived, &u.Statistics.AverageScore,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, email))
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return c.scanUser(c.db.QueryRowContext(ctx, q, id))
}

// ApplyReviewStatistics updates the owner's rolling counters in one
// statement so concurrent pipeline runs cannot interleave reads and writes:
// averageScore = (oldAvg*(n-1) + score) / n with n = reviewsReceived + 1.
func (c *DatabaseClient) ApplyReviewStatistics(ctx context.Context, userID string, overallScore int) error {
	const q = `
		UPDATE users
		SET average_score   = (average_score * reviews_received + $2) / (reviews_received + 1),
		    reviews_received = reviews_received + 1,
		    updated_at       = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, userID, overallScore)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

func (c *DatabaseClient) IncrementDocumentsUploaded(ctx context.Context, userID string) error {
	const q = `
		UPDATE users
		SET documents_uploaded = documents_uploaded + 1, updated_at = now()
		WHERE id = $1
	`
	_, err := c.db.ExecContext(ctx, q, userID)
	return err
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, title, text_content, original_file_name, storage_url, file_type,
			 language, citation_style, status, word_count, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()), COALESCE($13, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.Title, doc.TextContent, doc.OriginalFileName, doc.StorageURL,
		doc.FileType, doc.Language, doc.CitationStyle, doc.Status, doc.WordCount,
		doc.CreatedAt, doc.UpdatedAt)
	return err
}

const documentColumns = `
	id, user_id, title, text_content, original_file_name, storage_url, file_type,
	language, citation_style, status, word_count,
	processing_time_ms, model_used, confidence,
	created_at, updated_at
`

func scanDocument(scan func(...any) error) (*models.Document, error) {
	var d models.Document
	err := scan(
		&d.ID, &d.UserID, &d.Title, &d.TextContent, &d.OriginalFileName, &d.StorageURL, &d.FileType,
		&d.Language, &d.CitationStyle, &d.Status, &d.WordCount,
		&d.ProcessingMetadata.ProcessingTimeMs, &d.ProcessingMetadata.ModelUsed, &d.ProcessingMetadata.Confidence,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	row := c.db.QueryRowContext(ctx, q, id)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return doc, err
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status models.Status) error {
	const q = `UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) CompleteDocument(ctx context.Context, id string, status models.Status, meta models.ProcessingMetadata) error {
	const q = `
		UPDATE documents
		SET status = $2, processing_time_ms = $3, model_used = $4, confidence = $5, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status, meta.ProcessingTimeMs, meta.ModelUsed, meta.Confidence)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Reviews

// CreateReviewIfIdle inserts the review only when no pending/processing
// review exists for the document. The conditional insert plus the partial
// unique index reviews_single_flight make the guard race-free: one of two
// concurrent creators loses with a unique violation, which maps to the same
// typed error.
func (c *DatabaseClient) CreateReviewIfIdle(ctx context.Context, review *models.Review) error {
	if review == nil {
		return errors.New("nil review")
	}
	blobs, err := reviewBlobs(review)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO reviews
			(id, document_id, user_id, status, overall_score,
			 scores, issues, summary, ai_analysis, plagiarism_check, feedback,
			 created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		       COALESCE($12, now()), COALESCE($13, now())
		WHERE NOT EXISTS (
			SELECT 1 FROM reviews
			WHERE document_id = $2 AND status IN ('pending', 'processing')
		)
	`
	res, err := c.db.ExecContext(ctx, q,
		review.ID, review.DocumentID, review.UserID, review.Status, review.OverallScore,
		blobs.scores, blobs.issues, blobs.summary, blobs.aiAnalysis, blobs.plagiarism, blobs.feedback,
		review.CreatedAt, review.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return core.ErrReviewInProgress
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrReviewInProgress
	}
	return nil
}

type reviewJSON struct {
	scores, issues, summary, aiAnalysis, plagiarism, feedback []byte
}

func reviewBlobs(r *models.Review) (*reviewJSON, error) {
	var (
		out reviewJSON
		err error
	)
	if out.scores, err = json.Marshal(r.Scores); err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}
	issues := r.Issues
	if issues == nil {
		issues = []models.Issue{}
	}
	if out.issues, err = json.Marshal(issues); err != nil {
		return nil, fmt.Errorf("marshal issues: %w", err)
	}
	if out.summary, err = json.Marshal(r.Summary); err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	if out.aiAnalysis, err = json.Marshal(r.AIAnalysis); err != nil {
		return nil, fmt.Errorf("marshal ai analysis: %w", err)
	}
	if out.plagiarism, err = json.Marshal(r.PlagiarismCheck); err != nil {
		return nil, fmt.Errorf("marshal plagiarism check: %w", err)
	}
	if out.feedback, err = json.Marshal(r.Feedback); err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}
	return &out, nil
}

const reviewColumns = `
	id, document_id, user_id, status, overall_score,
	scores, issues, summary, ai_analysis, plagiarism_check, feedback,
	created_at, updated_at
`

func scanReview(scan func(...any) error) (*models.Review, error) {
	var (
		r                                                         models.Review
		scores, issues, summary, aiAnalysis, plagiarism, feedback []byte
	)
	err := scan(
		&r.ID, &r.DocumentID, &r.UserID, &r.Status, &r.OverallScore,
		&scores, &issues, &summary, &aiAnalysis, &plagiarism, &feedback,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, part := range []struct {
		raw []byte
		dst any
	}{
		{scores, &r.Scores},
		{issues, &r.Issues},
		{summary, &r.Summary},
		{aiAnalysis, &r.AIAnalysis},
		{plagiarism, &r.PlagiarismCheck},
		{feedback, &r.Feedback},
	} {
		if len(part.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(part.raw, part.dst); err != nil {
			return nil, fmt.Errorf("unmarshal review %s: %w", r.ID, err)
		}
	}
	return &r, nil
}

func (c *DatabaseClient) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	row := c.db.QueryRowContext(ctx, q, id)
	review, err := scanReview(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return review, err
}

func (c *DatabaseClient) ListReviewsByUser(ctx context.Context, userID string) ([]models.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		r, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateReviewStatus(ctx context.Context, id string, status models.Status) error {
	const q = `UPDATE reviews SET status = $2, updated_at = now() WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("review not found: %s", id)
	}
	return nil
}

// SaveReviewResults persists the full result block of a completed review in
// one statement.
func (c *DatabaseClient) SaveReviewResults(ctx context.Context, review *models.Review) error {
	if review == nil {
		return errors.New("nil review")
	}
	blobs, err := reviewBlobs(review)
	if err != nil {
		return err
	}
	const q = `
		UPDATE reviews
		SET status = $2, overall_score = $3,
		    scores = $4, issues = $5, summary = $6,
		    ai_analysis = $7, plagiarism_check = $8,
		    updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q,
		review.ID, review.Status, review.OverallScore,
		blobs.scores, blobs.issues, blobs.summary, blobs.aiAnalysis, blobs.plagiarism)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("review not found: %s", review.ID)
	}
	return nil
}

func (c *DatabaseClient) UpdateReviewFeedback(ctx context.Context, id string, fb models.Feedback) error {
	raw, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	const q = `UPDATE reviews SET feedback = $2, updated_at = now() WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id, raw)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("review not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) UpdateReviewIssues(ctx context.Context, id string, issues []models.Issue, summary models.Summary) error {
	if issues == nil {
		issues = []models.Issue{}
	}
	rawIssues, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	rawSummary, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	const q = `UPDATE reviews SET issues = $2, summary = $3, updated_at = now() WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id, rawIssues, rawSummary)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("review not found: %s", id)
	}
	return nil
}

// Corpus chunks (plagiarism index)

func (c *DatabaseClient) InsertCorpusChunks(ctx context.Context, chunks []models.CorpusChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO corpus_chunks (id, source_url, source_title, text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.SourceURL, ch.SourceTitle, ch.Text, vec, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchCorpusChunks finds the top-k closest corpus chunks by cosine distance.
func (c *DatabaseClient) SearchCorpusChunks(ctx context.Context, queryVec []float32, limit int) ([]models.CorpusMatch, error) {
	const q = `
		SELECT id, source_url, source_title, text, embedding <=> $1 AS distance
		FROM corpus_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CorpusMatch
	for rows.Next() {
		var m models.CorpusMatch
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.SourceURL, &m.Chunk.SourceTitle, &m.Chunk.Text, &m.Distance); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
