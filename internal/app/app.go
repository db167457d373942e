package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/osanchez-dev/revisia/internal/config"
	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/core/analysis"
	db "github.com/osanchez-dev/revisia/internal/core/database"
	"github.com/osanchez-dev/revisia/internal/core/extractor"
	"github.com/osanchez-dev/revisia/internal/core/llm"
	objectclient "github.com/osanchez-dev/revisia/internal/core/object-client"
	"github.com/osanchez-dev/revisia/internal/core/plagiarism"
	"github.com/osanchez-dev/revisia/internal/core/review_engine"
	"github.com/osanchez-dev/revisia/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Processor    *review_engine.Processor
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	engine := analysis.NewEngine(llmProvider, cfg.GenModel)

	var detector plagiarism.Detector
	if cfg.PlagiarismMode == "embedding" {
		embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
		}
		detector = plagiarism.NewEmbeddingDetector(dbClient, embedder)
	} else {
		detector = plagiarism.NewStubDetector(time.Now().UnixNano())
	}

	processor := review_engine.NewProcessor(dbClient, engine, detector)
	processor.Start(ctx, cfg.ReviewWorkers)

	docExtractor := extractor.NewDocconvExtractor()
	userService := services.NewUserService(dbClient)
	documentService := services.NewDocumentService(dbClient, objClient, docExtractor, cfg.BucketName)
	reviewService := services.NewReviewService(dbClient, processor)

	server := NewServer(cfg, userService, documentService, reviewService)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Processor:    processor,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
