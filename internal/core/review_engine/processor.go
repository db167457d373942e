package review_engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/core/analysis"
	"github.com/osanchez-dev/revisia/internal/core/plagiarism"
	"github.com/osanchez-dev/revisia/internal/models"
)

// Processor drives a review through its state machine:
// pending → processing → completed|failed. Reviews are enqueued by the
// creating request and picked up by worker goroutines, so the caller never
// waits on analysis.
//
// db:       persistence for reviews, documents and user statistics.
// engine:   the combined text analysis (grammar/style/coherence/citation).
// detector: plagiarism check, runs alongside the analysis.
// jobs:     in-memory queue of review IDs (easy to swap with a broker later).
type Processor struct {
	db       core.DbClient
	engine   *analysis.Engine
	detector plagiarism.Detector
	jobs     chan string
}

// NewProcessor constructs the processor with a bounded job queue (64).
func NewProcessor(db core.DbClient, engine *analysis.Engine, detector plagiarism.Detector) *Processor {
	return &Processor{
		db: db, engine: engine, detector: detector,
		jobs: make(chan string, 64),
	}
}

// Start launches the worker goroutines reading from the jobs channel.
func (p *Processor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("ReviewProcessor: worker shutting down")
					return
				case reviewID := <-p.jobs:
					log.Printf("ReviewProcessor: worker %d processing review %s", w, reviewID)
					if err := p.ProcessOne(ctx, reviewID); err != nil {
						log.Printf("ReviewProcessor: review %s failed: %v", reviewID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a review for processing. Blocks only when the queue is
// full.
func (p *Processor) Enqueue(reviewID string) {
	p.jobs <- reviewID
}

// ProcessOne runs the whole pipeline for a single review. Errors never escape
// this boundary: they are recorded on the review/document best-effort and
// returned for logging only.
//
// The run is detached from the caller's context and carries no deadline of
// its own: once started it is never canceled from inside, so a shutdown or a
// slow analysis cannot leave a half-written review behind. Any timeout comes
// from the external services the stages call.
func (p *Processor) ProcessOne(_ context.Context, reviewID string) error {
	proctx := context.Background()

	review, err := p.db.GetReviewByID(proctx, reviewID)
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}
	if review == nil {
		// Nothing to mark failed; log at the caller and stop.
		return fmt.Errorf("review not found: %s", reviewID)
	}

	if err := p.run(proctx, review); err != nil {
		p.markFailed(proctx, review)
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, review *models.Review) error {
	review.Status = models.StatusProcessing
	if err := p.db.UpdateReviewStatus(ctx, review.ID, models.StatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	doc, err := p.db.GetDocumentByID(ctx, review.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document not found: %s", review.DocumentID)
	}

	language := doc.Language
	if !language.Valid() {
		language = models.LanguageSpanish
	}
	citationStyle := doc.CitationStyle
	if !citationStyle.Valid() {
		citationStyle = models.CitationAPA
	}

	start := time.Now()

	// The analysis and the plagiarism check have no data dependency; run them
	// in parallel. The analysis absorbs its own stage failures; a plagiarism
	// error fails the run.
	var (
		result      *analysis.Result
		plagiarismR *models.PlagiarismCheck
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result = p.engine.AnalyzeText(gctx, doc.TextContent, analysis.Options{
			Language:      language,
			CitationStyle: citationStyle,
		})
		return nil
	})
	g.Go(func() error {
		var derr error
		plagiarismR, derr = p.detector.Detect(gctx, doc.TextContent)
		return derr
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("plagiarism check: %w", err)
	}

	processingTime := time.Since(start).Milliseconds()

	review.Status = models.StatusCompleted
	review.Scores = result.Scores
	review.OverallScore = analysis.AggregateScores(review.Scores)
	review.Issues = result.Issues
	review.Summary = result.Summary
	review.RecomputeSummary()
	review.AIAnalysis = models.AIAnalysis{
		Model:            result.Metadata.Model,
		ProcessingTimeMs: processingTime,
		Confidence:       result.Metadata.Confidence,
	}
	review.PlagiarismCheck = *plagiarismR

	if err := p.db.SaveReviewResults(ctx, review); err != nil {
		return fmt.Errorf("save review: %w", err)
	}

	meta := models.ProcessingMetadata{
		ProcessingTimeMs: processingTime,
		ModelUsed:        result.Metadata.Model,
		Confidence:       result.Metadata.Confidence,
	}
	if err := p.db.CompleteDocument(ctx, doc.ID, models.StatusCompleted, meta); err != nil {
		return fmt.Errorf("sync document: %w", err)
	}

	if err := p.db.ApplyReviewStatistics(ctx, doc.UserID, review.OverallScore); err != nil {
		return fmt.Errorf("update statistics: %w", err)
	}

	log.Printf("ReviewProcessor: review %s completed in %dms (score %d)",
		review.ID, processingTime, review.OverallScore)
	return nil
}

// markFailed records the failed terminal state on the review and its
// document. Best-effort: a failure while recording failure is logged and
// swallowed.
func (p *Processor) markFailed(ctx context.Context, review *models.Review) {
	if err := p.db.UpdateReviewStatus(ctx, review.ID, models.StatusFailed); err != nil {
		log.Printf("ReviewProcessor: could not mark review %s failed: %v", review.ID, err)
	}
	if review.DocumentID == "" {
		return
	}
	if err := p.db.UpdateDocumentStatus(ctx, review.DocumentID, models.StatusFailed); err != nil {
		log.Printf("ReviewProcessor: could not mark document %s failed: %v", review.DocumentID, err)
	}
}
