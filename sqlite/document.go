package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexcrawl/lexcrawl"
)

// Compile-time interface verification.
var _ lexcrawl.DocumentService = (*DocumentService)(nil)

// DocumentService implements lexcrawl.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "id, source_id, url, title, content, content_hash, kind, metadata, fetched_at, success, err"

// CreateDocument stores a new document, assigning its ID.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *lexcrawl.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	doc.ID = uuid.New().String()
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = time.Now().UTC()
	}
	doc.FetchedAt = doc.FetchedAt.UTC().Truncate(time.Second)
	if doc.Kind == "" {
		doc.Kind = lexcrawl.KindHTML
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.SourceID, doc.URL, doc.Title, doc.Content, doc.ContentHash,
		string(doc.Kind), doc.Metadata, formatTime(doc.FetchedAt), doc.Success, doc.Err)
	return err
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*lexcrawl.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, lexcrawl.Errorf(lexcrawl.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindDocuments retrieves documents matching the filter, most recently
// fetched first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter lexcrawl.DocumentFilter) ([]*lexcrawl.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + documentColumns + " FROM documents WHERE 1=1")
	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	query.WriteString(" ORDER BY fetched_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*lexcrawl.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(row scanner) (*lexcrawl.Document, error) {
	var doc lexcrawl.Document
	var kind, fetchedAt string

	if err := row.Scan(&doc.ID, &doc.SourceID, &doc.URL, &doc.Title, &doc.Content,
		&doc.ContentHash, &kind, &doc.Metadata, &fetchedAt, &doc.Success, &doc.Err); err != nil {
		return nil, err
	}
	doc.Kind = lexcrawl.ContentKind(kind)

	var err error
	if doc.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
		return nil, err
	}
	return &doc, nil
}
