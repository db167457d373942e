package services

import (
	"context"
	"errors"
	"testing"

	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
)

// fakeDB implements the slice of core.DbClient these services touch. The
// embedded interface panics on anything else, which is the point: a test
// reaching an unstubbed method is a test with a hole in it.
type fakeDB struct {
	core.DbClient
	users     map[string]*models.User
	documents map[string]*models.Document
	reviews   map[string]*models.Review
	uploads   int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:     make(map[string]*models.User),
		documents: make(map[string]*models.Document),
		reviews:   make(map[string]*models.Review),
	}
}

func (f *fakeDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeDB) CreateDocument(_ context.Context, d *models.Document) error {
	f.documents[d.ID] = d
	return nil
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	return f.documents[id], nil
}

func (f *fakeDB) UpdateDocumentStatus(_ context.Context, id string, status models.Status) error {
	if d, ok := f.documents[id]; ok {
		d.Status = status
	}
	return nil
}

func (f *fakeDB) CreateReviewIfIdle(_ context.Context, r *models.Review) error {
	for _, existing := range f.reviews {
		if existing.DocumentID == r.DocumentID && !existing.Status.Terminal() {
			return core.ErrReviewInProgress
		}
	}
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeDB) GetReviewByID(_ context.Context, id string) (*models.Review, error) {
	return f.reviews[id], nil
}

func (f *fakeDB) ListReviewsByUser(_ context.Context, userID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateReviewFeedback(_ context.Context, id string, fb models.Feedback) error {
	if r, ok := f.reviews[id]; ok {
		r.Feedback = fb
	}
	return nil
}

func (f *fakeDB) UpdateReviewIssues(_ context.Context, id string, issues []models.Issue, summary models.Summary) error {
	if r, ok := f.reviews[id]; ok {
		r.Issues = issues
		r.Summary = summary
	}
	return nil
}

func (f *fakeDB) IncrementDocumentsUploaded(_ context.Context, _ string) error {
	f.uploads++
	return nil
}

type fakeDispatcher struct {
	enqueued []string
}

func (d *fakeDispatcher) Enqueue(reviewID string) {
	d.enqueued = append(d.enqueued, reviewID)
}

func seedDocument(db *fakeDB) *models.Document {
	doc := &models.Document{
		ID:     "doc-1",
		UserID: "user-1",
		Status: models.StatusCompleted,
	}
	db.documents[doc.ID] = doc
	return doc
}

func TestCreateReviewSchedulesRun(t *testing.T) {
	db := newFakeDB()
	doc := seedDocument(db)
	dispatcher := &fakeDispatcher{}
	svc := NewReviewService(db, dispatcher)

	review, err := svc.Create(context.Background(), doc.ID, "user-1")
	if err != nil {
		t.Fatal(err)
	}

	if review.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", review.Status)
	}
	if review.ID == "" || review.DocumentID != doc.ID || review.UserID != "user-1" {
		t.Errorf("review identity wrong: %+v", review)
	}
	if review.AIAnalysis.Model != "gemini" {
		t.Errorf("model = %q, want gemini", review.AIAnalysis.Model)
	}
	if len(dispatcher.enqueued) != 1 || dispatcher.enqueued[0] != review.ID {
		t.Errorf("enqueued = %v, want the new review once", dispatcher.enqueued)
	}
	if doc.Status != models.StatusProcessing {
		t.Errorf("document status = %s, want processing", doc.Status)
	}
}

func TestCreateReviewDocumentMissing(t *testing.T) {
	db := newFakeDB()
	dispatcher := &fakeDispatcher{}
	svc := NewReviewService(db, dispatcher)

	_, err := svc.Create(context.Background(), "missing", "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(dispatcher.enqueued) != 0 {
		t.Fatalf("nothing should be enqueued, got %v", dispatcher.enqueued)
	}
}

func TestCreateReviewRejectsConcurrentRun(t *testing.T) {
	db := newFakeDB()
	doc := seedDocument(db)
	db.reviews["rev-1"] = &models.Review{ID: "rev-1", DocumentID: doc.ID, UserID: "user-1", Status: models.StatusProcessing}

	dispatcher := &fakeDispatcher{}
	svc := NewReviewService(db, dispatcher)

	_, err := svc.Create(context.Background(), doc.ID, "user-1")
	if !errors.Is(err, core.ErrReviewInProgress) {
		t.Fatalf("err = %v, want ErrReviewInProgress", err)
	}
	if len(dispatcher.enqueued) != 0 {
		t.Fatalf("a rejected create must not enqueue, got %v", dispatcher.enqueued)
	}
}

func TestCreateReviewAllowedAfterTerminalReview(t *testing.T) {
	db := newFakeDB()
	doc := seedDocument(db)
	db.reviews["rev-1"] = &models.Review{ID: "rev-1", DocumentID: doc.ID, UserID: "user-1", Status: models.StatusFailed}

	svc := NewReviewService(db, &fakeDispatcher{})
	if _, err := svc.Create(context.Background(), doc.ID, "user-1"); err != nil {
		t.Fatalf("a failed review should not block a retry: %v", err)
	}
}

func TestGetReviewOwnership(t *testing.T) {
	db := newFakeDB()
	db.reviews["rev-1"] = &models.Review{ID: "rev-1", UserID: "user-1", Status: models.StatusCompleted}
	svc := NewReviewService(db, &fakeDispatcher{})

	if _, err := svc.Get(context.Background(), "rev-1", "someone-else"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(context.Background(), "missing", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "rev-1", "user-1"); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
}

func intPtr(v int) *int { return &v }

func TestSubmitFeedback(t *testing.T) {
	db := newFakeDB()
	db.reviews["done"] = &models.Review{ID: "done", UserID: "user-1", Status: models.StatusCompleted}
	db.reviews["pending"] = &models.Review{ID: "pending", UserID: "user-1", Status: models.StatusPending}
	svc := NewReviewService(db, &fakeDispatcher{})

	tests := []struct {
		name     string
		reviewID string
		fb       models.Feedback
		wantErr  error
	}{
		{"pending review rejected", "pending", models.Feedback{}, ErrReviewNotCompleted},
		{"rating too low", "done", models.Feedback{Rating: intPtr(0)}, ErrInvalidRating},
		{"rating too high", "done", models.Feedback{Rating: intPtr(6)}, ErrInvalidRating},
		{"valid rating", "done", models.Feedback{Rating: intPtr(5)}, nil},
		{"no rating is fine", "done", models.Feedback{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SubmitFeedback(context.Background(), tt.reviewID, "user-1", tt.fb)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := db.reviews["done"].Feedback.Rating; got != nil && *got != 5 {
		t.Errorf("persisted rating = %v", got)
	}
}

func TestResolveIssue(t *testing.T) {
	db := newFakeDB()
	db.reviews["done"] = &models.Review{
		ID: "done", UserID: "user-1", Status: models.StatusCompleted,
		Issues: []models.Issue{
			{Severity: models.SeverityCritical},
			{Severity: models.SeverityLow},
		},
		Summary: models.Summary{TotalIssues: 2, CriticalIssues: 1},
	}
	svc := NewReviewService(db, &fakeDispatcher{})

	review, err := svc.ResolveIssue(context.Background(), "done", "user-1", 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if !review.Issues[1].IsResolved {
		t.Error("issue 1 should be resolved")
	}
	if review.Summary.ResolvedIssues != 1 || review.Summary.TotalIssues != 2 || review.Summary.CriticalIssues != 1 {
		t.Errorf("summary = %+v", review.Summary)
	}

	// Toggling back recomputes again.
	review, err = svc.ResolveIssue(context.Background(), "done", "user-1", 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if review.Summary.ResolvedIssues != 0 {
		t.Errorf("resolved = %d after un-resolving", review.Summary.ResolvedIssues)
	}

	if _, err := svc.ResolveIssue(context.Background(), "done", "user-1", 5, true); !errors.Is(err, ErrInvalidIssueIndex) {
		t.Errorf("err = %v, want ErrInvalidIssueIndex", err)
	}
	if _, err := svc.ResolveIssue(context.Background(), "done", "user-1", -1, true); !errors.Is(err, ErrInvalidIssueIndex) {
		t.Errorf("err = %v, want ErrInvalidIssueIndex", err)
	}

	db.reviews["pending"] = &models.Review{ID: "pending", UserID: "user-1", Status: models.StatusProcessing, Issues: []models.Issue{{}}}
	if _, err := svc.ResolveIssue(context.Background(), "pending", "user-1", 0, true); !errors.Is(err, ErrReviewNotCompleted) {
		t.Errorf("err = %v, want ErrReviewNotCompleted", err)
	}
}
