package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrReviewNotCompleted = errors.New("review is not completed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidIssueIndex  = errors.New("issue index out of range")
)

// ReviewDispatcher schedules a review for background processing.
type ReviewDispatcher interface {
	Enqueue(reviewID string)
}

type ReviewService struct {
	db         core.DbClient
	dispatcher ReviewDispatcher
}

func NewReviewService(db core.DbClient, dispatcher ReviewDispatcher) *ReviewService {
	return &ReviewService{db: db, dispatcher: dispatcher}
}

// Create persists a pending review for the document and schedules the
// pipeline run. The store rejects the insert with core.ErrReviewInProgress
// when a non-terminal review already exists; a terminal (completed/failed)
// review does not block a new one. The call returns as soon as the pending
// review is persisted; the analysis happens out-of-band.
func (s *ReviewService) Create(ctx context.Context, documentID, userID string) (*models.Review, error) {
	doc, err := s.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	review := &models.Review{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		UserID:     userID,
		Status:     models.StatusPending,
		AIAnalysis: models.AIAnalysis{Model: "gemini"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.CreateReviewIfIdle(ctx, review); err != nil {
		return nil, err
	}

	if err := s.db.UpdateDocumentStatus(ctx, documentID, models.StatusProcessing); err != nil {
		return nil, fmt.Errorf("mark document processing: %w", err)
	}

	s.dispatcher.Enqueue(review.ID)
	return review, nil
}

func (s *ReviewService) Get(ctx context.Context, reviewID, userID string) (*models.Review, error) {
	review, err := s.db.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.UserID != userID {
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.db.ListReviewsByUser(ctx, userID)
}

// SubmitFeedback records the owner's rating of a completed review. Feedback
// is the only field a terminal review accepts.
func (s *ReviewService) SubmitFeedback(ctx context.Context, reviewID, userID string, fb models.Feedback) error {
	review, err := s.Get(ctx, reviewID, userID)
	if err != nil {
		return err
	}
	if review.Status != models.StatusCompleted {
		return ErrReviewNotCompleted
	}
	if fb.Rating != nil && (*fb.Rating < 1 || *fb.Rating > 5) {
		return ErrInvalidRating
	}
	return s.db.UpdateReviewFeedback(ctx, reviewID, fb)
}

// ResolveIssue toggles one issue's resolved flag after completion and
// recomputes the dependent summary counters.
func (s *ReviewService) ResolveIssue(ctx context.Context, reviewID, userID string, index int, resolved bool) (*models.Review, error) {
	review, err := s.Get(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	if review.Status != models.StatusCompleted {
		return nil, ErrReviewNotCompleted
	}
	if index < 0 || index >= len(review.Issues) {
		return nil, ErrInvalidIssueIndex
	}

	review.Issues[index].IsResolved = resolved
	review.RecomputeSummary()

	if err := s.db.UpdateReviewIssues(ctx, reviewID, review.Issues, review.Summary); err != nil {
		return nil, err
	}
	return review, nil
}
