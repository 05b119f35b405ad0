package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lexcrawl/lexcrawl"
)

// Compile-time interface verification.
var _ lexcrawl.SourceService = (*SourceService)(nil)

// SourceService implements lexcrawl.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

// CreateSource registers a candidate URL. A URL already in the queue is a
// no-op; the existing row keeps its status and priority.
func (s *SourceService) CreateSource(ctx context.Context, source *lexcrawl.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}

	source.ID = uuid.New().String()
	if source.Status == "" {
		source.Status = lexcrawl.StatusNew
	}
	now := time.Now().UTC().Truncate(time.Second)
	source.CreatedAt = now
	source.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, url, priority, status, last_scrape, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, source.ID, source.URL, source.Priority, string(source.Status),
		formatTime(source.LastScrape), formatTime(source.CreatedAt), formatTime(source.UpdatedAt))
	return err
}

// FindDue returns up to limit sources that are not mid-flight, highest
// priority first and least recently scraped first within a priority.
func (s *SourceService) FindDue(ctx context.Context, limit int) ([]*lexcrawl.Source, error) {
	if limit <= 0 {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "limit must be positive")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, priority, status, last_scrape, created_at, updated_at
		FROM sources
		WHERE status != ?
		ORDER BY priority DESC, last_scrape ASC, created_at ASC
		LIMIT ?
	`, string(lexcrawl.StatusProcessing), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*lexcrawl.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// UpdateStatus moves a source through the pipeline lifecycle. Terminal
// statuses record the scrape time.
func (s *SourceService) UpdateStatus(ctx context.Context, id string, status lexcrawl.SourceStatus) error {
	now := time.Now().UTC().Truncate(time.Second)

	var result sql.Result
	var err error
	switch status {
	case lexcrawl.StatusComplete, lexcrawl.StatusError:
		result, err = s.db.ExecContext(ctx, `
			UPDATE sources SET status = ?, last_scrape = ?, updated_at = ? WHERE id = ?
		`, string(status), formatTime(now), formatTime(now), id)
	default:
		result, err = s.db.ExecContext(ctx, `
			UPDATE sources SET status = ?, updated_at = ? WHERE id = ?
		`, string(status), formatTime(now), id)
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return lexcrawl.Errorf(lexcrawl.ENOTFOUND, "source not found")
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanSource.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*lexcrawl.Source, error) {
	var source lexcrawl.Source
	var status, lastScrape, createdAt, updatedAt string

	if err := row.Scan(&source.ID, &source.URL, &source.Priority, &status,
		&lastScrape, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	source.Status = lexcrawl.SourceStatus(status)

	var err error
	if source.LastScrape, err = parseRFC3339(lastScrape, "last_scrape"); err != nil {
		return nil, err
	}
	if source.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if source.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &source, nil
}
