package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/osanchez-dev/revisia/internal/api/middlewares"
	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
	"github.com/osanchez-dev/revisia/internal/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// CreateReview starts a review for a document. The analysis runs in the
// background; the response only confirms the pending review.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	review, err := h.reviews.Create(r.Context(), chi.URLParam(r, "documentID"), userID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
		return
	case errors.Is(err, core.ErrReviewInProgress):
		http.Error(w, "document already has a review in progress", http.StatusConflict)
		return
	case err != nil:
		log.Printf("ReviewHandler: create failed: %v", err)
		http.Error(w, "could not create review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(review)
}

func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	review, err := h.reviews.Get(r.Context(), chi.URLParam(r, "reviewID"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(review)
}

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	reviews, err := h.reviews.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}

// SubmitFeedback stores the owner's rating of a completed review.
func (h *ReviewHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var fb models.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.reviews.SubmitFeedback(r.Context(), chi.URLParam(r, "reviewID"), userID, fb); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveIssue marks one issue of a completed review resolved (or not).
func (h *ReviewHandler) ResolveIssue(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "issueIndex"))
	if err != nil {
		http.Error(w, "invalid issue index", http.StatusBadRequest)
		return
	}

	var body struct {
		IsResolved bool `json:"isResolved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	review, err := h.reviews.ResolveIssue(r.Context(), chi.URLParam(r, "reviewID"), userID, index, body.IsResolved)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(review)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "review not found", http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, services.ErrReviewNotCompleted):
		http.Error(w, "review is not completed", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidRating), errors.Is(err, services.ErrInvalidIssueIndex):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
