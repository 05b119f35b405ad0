package mock

import (
	"context"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of lexcrawl.DocumentService.
type DocumentService struct {
	CreateDocumentFn   func(ctx context.Context, doc *lexcrawl.Document) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*lexcrawl.Document, error)
	FindDocumentsFn    func(ctx context.Context, filter lexcrawl.DocumentFilter) ([]*lexcrawl.Document, error)
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *lexcrawl.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*lexcrawl.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter lexcrawl.DocumentFilter) ([]*lexcrawl.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}
