package services

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osanchez-dev/revisia/internal/core"
	"github.com/osanchez-dev/revisia/internal/models"
)

type DocumentService struct {
	db        core.DbClient
	storage   core.ObjectClient
	extractor core.TextExtractor
	bucket    string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, extractor core.TextExtractor, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, extractor: extractor, bucket: bucket}
}

// UploadInput carries one uploaded document and its review settings.
type UploadInput struct {
	Title         string
	FileName      string
	ContentType   string
	Language      models.Language
	CitationStyle models.CitationStyle
	Data          []byte
}

// UploadAndCreate extracts the plain text, stores the original file, and
// persists the document record. WordCount is derived from the extracted text
// here, at write time.
func (s *DocumentService) UploadAndCreate(ctx context.Context, userID string, in UploadInput) (*models.Document, error) {
	if !in.Language.Valid() {
		in.Language = models.LanguageSpanish
	}
	if !in.CitationStyle.Valid() {
		in.CitationStyle = models.CitationAPA
	}

	text, err := s.extractor.ExtractText(ctx, in.Data, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	docID := uuid.NewString()
	key := s.objectKey(userID, docID, in.FileName)

	url, err := s.storage.UploadFile(ctx, s.bucket, key, in.Data, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:               docID,
		UserID:           userID,
		Title:            in.Title,
		TextContent:      text,
		OriginalFileName: in.FileName,
		StorageURL:       url,
		FileType:         fileType(in.FileName),
		Language:         in.Language,
		CitationStyle:    in.CitationStyle,
		Status:           models.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	doc.CountWords()

	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.db.IncrementDocumentsUploaded(ctx, userID); err != nil {
		log.Printf("DocumentService: could not bump upload counter for %s: %v", userID, err)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(userID, docID, filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("users", userID, "documents", docID, filename)
}

func fileType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	switch ext {
	case "pdf", "doc", "docx", "txt":
		return ext
	}
	return "txt"
}
