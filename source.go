package lexcrawl

import (
	"context"
	"strings"
	"time"
)

// SourceStatus tracks a candidate URL through the pipeline.
type SourceStatus string

// Source statuses.
const (
	StatusNew        SourceStatus = "new"
	StatusProcessing SourceStatus = "processing"
	StatusComplete   SourceStatus = "complete"
	StatusError      SourceStatus = "error"
)

// Source is a candidate legal-document URL queued for scraping.
type Source struct {
	ID         string       `json:"id"`
	URL        string       `json:"url"`
	Priority   int          `json:"priority"`
	Status     SourceStatus `json:"status"`
	LastScrape time.Time    `json:"lastScrape"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.URL == "" {
		return Errorf(EINVALID, "source URL required")
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return Errorf(EINVALID, "source URL must start with http:// or https://")
	}
	if len(s.URL) > 2200 {
		return Errorf(EINVALID, "source URL must not exceed 2200 characters")
	}
	if s.Priority < 1 || s.Priority > 5 {
		return Errorf(EINVALID, "source priority must be between 1 and 5")
	}
	return nil
}

// SourceService manages the queue of candidate URLs.
type SourceService interface {
	// CreateSource registers a new candidate URL. Duplicate URLs are a
	// no-op, not an error.
	CreateSource(ctx context.Context, source *Source) error

	// FindDue returns up to limit sources ordered by priority (highest
	// first) and last scrape time (oldest first).
	FindDue(ctx context.Context, limit int) ([]*Source, error)

	// UpdateStatus moves a source through the pipeline lifecycle.
	// Returns ENOTFOUND if the source does not exist.
	UpdateStatus(ctx context.Context, id string, status SourceStatus) error
}

// Document is a processed scraping result persisted for downstream layers.
type Document struct {
	ID          string      `json:"id"`
	SourceID    string      `json:"sourceId"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Content     string      `json:"content"` // markdown
	ContentHash string      `json:"contentHash"`
	Kind        ContentKind `json:"kind"`
	Metadata    string      `json:"metadata"` // free-form JSON object
	FetchedAt   time.Time   `json:"fetchedAt"`
	Success     bool        `json:"success"`
	Err         string      `json:"err"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	return nil
}

// DocumentService persists processed documents.
type DocumentService interface {
	// CreateDocument stores a new document.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if the document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)
}

// DocumentFilter restricts FindDocuments.
type DocumentFilter struct {
	ID  *string `json:"id"`
	URL *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
