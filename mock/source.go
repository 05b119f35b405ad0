package mock

import (
	"context"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of lexcrawl.SourceService.
type SourceService struct {
	CreateSourceFn func(ctx context.Context, source *lexcrawl.Source) error
	FindDueFn      func(ctx context.Context, limit int) ([]*lexcrawl.Source, error)
	UpdateStatusFn func(ctx context.Context, id string, status lexcrawl.SourceStatus) error
}

func (s *SourceService) CreateSource(ctx context.Context, source *lexcrawl.Source) error {
	return s.CreateSourceFn(ctx, source)
}

func (s *SourceService) FindDue(ctx context.Context, limit int) ([]*lexcrawl.Source, error) {
	return s.FindDueFn(ctx, limit)
}

func (s *SourceService) UpdateStatus(ctx context.Context, id string, status lexcrawl.SourceStatus) error {
	return s.UpdateStatusFn(ctx, id, status)
}
