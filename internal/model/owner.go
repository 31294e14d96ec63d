package model

import (
	"context"
	"time"
)

// OwnerKind distinguishes company career pages from named job-board sources.
type OwnerKind string

const (
	OwnerCompany OwnerKind = "company"
	OwnerBoard   OwnerKind = "board"
)

// Owner is the unit the scheduler crawls: a company career page or a named
// job board. A nil LastCrawled means the owner has never been crawled and is
// always due.
type Owner struct {
	ID          int64
	Name        string // unique display name
	Kind        OwnerKind
	URL         string // crawl target locator
	SourceType  string // registry tag selecting the source collaborator
	Selector    string // CSS selector for careerpage sources, optional
	Cadence     time.Duration
	Priority    int // lower = crawled first; meaningful for board sources
	LastCrawled *time.Time
	Active      bool
}

// RunStatus is the lifecycle state of one crawl attempt.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// CrawlRun records one scheduler-invoked attempt against one owner.
type CrawlRun struct {
	ID           int64
	OwnerID      int64
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       RunStatus
	JobsFound    int
	JobsNew      int
	ErrorMessage string
}

// OwnerStore persists owners and their last-crawl timestamps.
type OwnerStore interface {
	// GetOrCreateOwner looks an owner up by URL, creating it if absent.
	// Config-provided fields (URL, cadence, priority, ...) are refreshed on
	// existing rows; LastCrawled is preserved.
	GetOrCreateOwner(ctx context.Context, o Owner) (Owner, error)
	ListActiveOwners(ctx context.Context) ([]Owner, error)
	TouchLastCrawled(ctx context.Context, ownerID int64, t time.Time) error
}

// RunStore persists crawl-run records. FinishRun transitions a run out of
// RunStarted exactly once and returns ErrRunFinished on a repeat attempt.
type RunStore interface {
	CreateRun(ctx context.Context, ownerID int64, startedAt time.Time) (int64, error)
	FinishRun(ctx context.Context, runID int64, status RunStatus, finishedAt time.Time, jobsFound, jobsNew int, errMsg string) error
	ListRecentRuns(ctx context.Context, limit int) ([]CrawlRun, error)
}
