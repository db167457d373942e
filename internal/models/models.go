package models

import (
	"strings"
	"time"
)

// User represents an authenticated user of the platform.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Statistics   Statistics `db:"-" json:"statistics"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Statistics is the per-user rolling counters block. AverageScore is the
// running mean of the overall scores of all completed reviews the user has
// received.
type Statistics struct {
	DocumentsUploaded int     `db:"documents_uploaded" json:"documentsUploaded"`
	ReviewsReceived   int     `db:"reviews_received" json:"reviewsReceived"`
	AverageScore      float64 `db:"average_score" json:"averageScore"`
}

// Language of a document's text content.
type Language string

const (
	LanguageSpanish Language = "es"
	LanguageEnglish Language = "en"
)

func (l Language) Valid() bool {
	return l == LanguageSpanish || l == LanguageEnglish
}

// CitationStyle selects the citation convention a document is checked against.
type CitationStyle string

const (
	CitationAPA     CitationStyle = "apa"
	CitationIEEE    CitationStyle = "ieee"
	CitationMLA     CitationStyle = "mla"
	CitationChicago CitationStyle = "chicago"
)

func (c CitationStyle) Valid() bool {
	switch c {
	case CitationAPA, CitationIEEE, CitationMLA, CitationChicago:
		return true
	}
	return false
}

// Status is the shared lifecycle of documents and reviews.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProcessingMetadata records how a document's last review run went.
type ProcessingMetadata struct {
	ProcessingTimeMs int64   `json:"processingTimeMs"`
	ModelUsed        string  `json:"modelUsed"`
	Confidence       float64 `json:"confidence"`
}

// Document represents a user-uploaded academic text. TextContent is the
// extracted plain text; the original file lives in object storage at
// StorageURL. The review pipeline only mutates Status and
// ProcessingMetadata.
type Document struct {
	ID                 string             `db:"id" json:"id"`
	UserID             string             `db:"user_id" json:"user_id"`
	Title              string             `db:"title" json:"title"`
	TextContent        string             `db:"text_content" json:"textContent"`
	OriginalFileName   string             `db:"original_file_name" json:"originalFileName"`
	StorageURL         string             `db:"storage_url" json:"storageUrl"`
	FileType           string             `db:"file_type" json:"fileType"`
	Language           Language           `db:"language" json:"language"`
	CitationStyle      CitationStyle      `db:"citation_style" json:"citationStyle"`
	Status             Status             `db:"status" json:"status"`
	WordCount          int                `db:"word_count" json:"wordCount"`
	ProcessingMetadata ProcessingMetadata `db:"-" json:"processingMetadata"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// CountWords derives WordCount from TextContent. Call it whenever the
// content changes.
func (d *Document) CountWords() {
	d.WordCount = len(strings.Fields(d.TextContent))
}
