package model

import (
	"context"
	"time"
)

// Category labels a posting as a software or hardware role.
type Category string

const (
	CategorySoftware Category = "software"
	CategoryHardware Category = "hardware"
)

// Posting is the canonical, deduplicated job record stored by the system.
// Identity is the (OwnerID, Link) pair; the store enforces uniqueness on it.
type Posting struct {
	ID                  int64
	OwnerID             int64
	Title               string
	Link                string     // absolute apply URL
	PostingDate         time.Time  // author-asserted
	DiscoveryDate       time.Time  // our clock, set once at first ingestion
	Category            Category
	Description         string
	RequirementsSummary string
	IsActive            bool
	SourceLabel         string // which collaborator produced it
	Location            string
	SalaryInfo          string
}

// Candidate is a raw, unvalidated job record produced by a Source before
// enrichment and ingestion. Only Title and Link are required.
type Candidate struct {
	Title               string
	Link                string
	PostingDate         *time.Time // nil defaults to ingestion time
	Description         string
	Category            Category // empty means "classify for me"
	RequirementsSummary string
	Location            string
	SalaryInfo          string
	SourceJobID         string
}

// Source yields candidate postings for one crawl target (career page or board).
type Source interface {
	Fetch(ctx context.Context) ([]Candidate, error)
}

// Classifier maps a posting's text to a category. Implementations never fail;
// indecisive input yields the software default.
type Classifier interface {
	Classify(title, description string) Category
}

// Extractor derives a formatted requirements summary from free-text
// descriptions. Implementations never fail; unusable input yields a sentinel.
type Extractor interface {
	Extract(description string) string
}

// PostingStore persists postings. FindPosting returns (nil, nil) when no row
// matches; CreatePosting returns ErrDuplicatePosting on a uniqueness conflict.
type PostingStore interface {
	FindPosting(ctx context.Context, ownerID int64, link string) (*Posting, error)
	CreatePosting(ctx context.Context, p *Posting) error
	UpdateRequirementsSummary(ctx context.Context, postingID int64, summary string) error
}

// Notifier broadcasts a newly discovered posting. Delivery is best-effort:
// the ingestion path logs failures and moves on.
type Notifier interface {
	NotifyNewPosting(p Posting) error
}
