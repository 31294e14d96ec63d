package store

import (
	"context"

	"internradar/internal/model"
)

// NopPostingStore is a no-op posting store used in dry-run mode. Lookups never
// match and writes are discarded, so every candidate appears new.
type NopPostingStore struct{}

func NewNopPostingStore() *NopPostingStore { return &NopPostingStore{} }

func (s *NopPostingStore) FindPosting(context.Context, int64, string) (*model.Posting, error) {
	return nil, nil
}
func (s *NopPostingStore) CreatePosting(context.Context, *model.Posting) error { return nil }
func (s *NopPostingStore) UpdateRequirementsSummary(context.Context, int64, string) error {
	return nil
}
