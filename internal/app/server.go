package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/osanchez-dev/revisia/internal/api/handlers"
	appMiddleware "github.com/osanchez-dev/revisia/internal/api/middlewares"
	"github.com/osanchez-dev/revisia/internal/config"
	"github.com/osanchez-dev/revisia/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, users *services.UserService, documents *services.DocumentService, reviews *services.ReviewService) *Server {
	authHandler := handlers.NewAuthHandler(users)
	docHandler := handlers.NewDocumentHandler(documents)
	reviewHandler := handlers.NewReviewHandler(reviews)
	statsHandler := handlers.NewStatisticsHandler(users)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)

			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Get("/documents", docHandler.GetDocuments)
			protected.Get("/documents/{documentID}", docHandler.GetDocument)

			protected.Post("/reviews/{documentID}", reviewHandler.CreateReview)
			protected.Get("/reviews", reviewHandler.ListReviews)
			protected.Get("/reviews/{reviewID}", reviewHandler.GetReview)
			protected.Post("/reviews/{reviewID}/feedback", reviewHandler.SubmitFeedback)
			protected.Patch("/reviews/{reviewID}/issues/{issueIndex}", reviewHandler.ResolveIssue)

			protected.Get("/statistics", statsHandler.GetStatistics)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
