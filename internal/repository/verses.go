package repository

import (
	"context"

	"versefinder/internal/model"
)

// Fetcher is the transport the repository reads verses through.
// *bibleapi.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, passage string) (*model.VerseRecord, error)
}

// Repository is the seam between view state and the fetch client.
type Repository struct {
	fetcher Fetcher
}

func New(f Fetcher) *Repository {
	return &Repository{fetcher: f}
}

// GetVerse looks up passage. Errors from the fetcher are returned as-is.
func (r *Repository) GetVerse(ctx context.Context, passage string) (*model.VerseRecord, error) {
	return r.fetcher.Fetch(ctx, passage)
}
