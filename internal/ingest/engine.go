// Package ingest turns raw candidate postings into stored Posting rows:
// validity filtering, classifier/extractor enrichment, and the
// create-or-update decision keyed by (owner, link).
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"internradar/internal/extract"
	"internradar/internal/model"
)

// Titles that are UI boilerplate, not postings.
var boilerplateTitles = map[string]struct{}{
	"share this role":  {},
	"share this role.": {},
}

// Words that suggest a scraped element is page chrome rather than a posting.
// Only decisive for short titles; real postings can legitimately contain
// "apply" in a longer title.
var noiseWords = []string{"share", "favorite", "login", "sign in", "apply", "submit"}

const shortTitleLimit = 30

// Engine ingests candidate batches for one owner at a time. Dependencies are
// injected once at construction; the engine itself holds no per-owner state
// and is safe to use across owners.
type Engine struct {
	postings   model.PostingStore
	classifier model.Classifier
	extractor  model.Extractor
	notifier   model.Notifier // optional
	logger     *slog.Logger
	now        func() time.Time
}

// NewEngine creates an ingestion engine. notifier may be nil.
func NewEngine(postings model.PostingStore, classifier model.Classifier, extractor model.Extractor, notifier model.Notifier, logger *slog.Logger) *Engine {
	return &Engine{
		postings:   postings,
		classifier: classifier,
		extractor:  extractor,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Ingest processes candidates in order, independently: a failure on one
// candidate is logged and never aborts the batch. It returns the number of
// candidates that passed validity filtering and the number of new postings
// created.
func (e *Engine) Ingest(ctx context.Context, owner model.Owner, candidates []model.Candidate) (jobsFound, jobsNew int) {
	for _, cand := range candidates {
		if !e.valid(cand) {
			continue
		}
		jobsFound++

		created, err := e.ingestOne(ctx, owner, cand)
		if err != nil {
			e.logger.Error("candidate ingestion failed",
				"owner", owner.Name,
				"title", cand.Title,
				"error", err,
			)
			continue
		}
		if created {
			jobsNew++
		}
	}
	return jobsFound, jobsNew
}

// valid applies the validity filter: candidates must carry a title and link,
// and must not look like page chrome.
func (e *Engine) valid(cand model.Candidate) bool {
	if cand.Title == "" || cand.Link == "" {
		return false
	}
	titleLower := strings.ToLower(cand.Title)
	if _, ok := boilerplateTitles[titleLower]; ok {
		return false
	}
	if len(cand.Title) < shortTitleLimit {
		for _, w := range noiseWords {
			if strings.Contains(titleLower, w) {
				e.logger.Debug("dropping suspicious short title", "title", cand.Title)
				return false
			}
		}
	}
	return true
}

// ingestOne enriches one candidate and performs the create-or-update decision.
// Panics from any stage are converted to an error so siblings keep flowing.
func (e *Engine) ingestOne(ctx context.Context, owner model.Owner, cand model.Candidate) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			created = false
			err = fmt.Errorf("ingesting %q: panic: %v", cand.Title, r)
		}
	}()

	category := cand.Category
	if category == "" {
		category = e.safeClassify(cand.Title, cand.Description)
	}
	summary := cand.RequirementsSummary
	if summary == "" {
		summary = e.safeExtract(cand.Description)
	}

	existing, err := e.postings.FindPosting(ctx, owner.ID, cand.Link)
	if err != nil {
		return false, fmt.Errorf("looking up %q: %w", cand.Link, err)
	}

	if existing != nil {
		// Stable fields stay as stored; only a poor summary gets refreshed.
		if LowQualitySummary(existing.RequirementsSummary) && !LowQualitySummary(summary) {
			if err := e.postings.UpdateRequirementsSummary(ctx, existing.ID, summary); err != nil {
				return false, fmt.Errorf("refreshing summary for %q: %w", cand.Link, err)
			}
			e.logger.Info("refreshed requirements summary",
				"owner", owner.Name, "title", existing.Title)
		}
		return false, nil
	}

	now := e.now()
	postingDate := now
	if cand.PostingDate != nil {
		postingDate = *cand.PostingDate
	}

	posting := &model.Posting{
		OwnerID:             owner.ID,
		Title:               cand.Title,
		Link:                cand.Link,
		PostingDate:         postingDate,
		DiscoveryDate:       now,
		Category:            category,
		Description:         cand.Description,
		RequirementsSummary: summary,
		IsActive:            true,
		SourceLabel:         owner.SourceType,
		Location:            cand.Location,
		SalaryInfo:          cand.SalaryInfo,
	}

	if err := e.postings.CreatePosting(ctx, posting); err != nil {
		if errors.Is(err, model.ErrDuplicatePosting) {
			// Raced another writer; the row exists, which is all we wanted.
			e.logger.Debug("posting already exists", "owner", owner.Name, "link", cand.Link)
			return false, nil
		}
		return false, fmt.Errorf("creating posting %q: %w", cand.Link, err)
	}

	if e.notifier != nil {
		// Best effort: delivery failure never fails ingestion.
		if err := e.notifier.NotifyNewPosting(*posting); err != nil {
			e.logger.Warn("new-posting notification failed",
				"owner", owner.Name, "title", posting.Title, "error", err)
		}
	}

	e.logger.Info("created posting",
		"owner", owner.Name,
		"title", posting.Title,
		"category", posting.Category,
	)
	return true, nil
}

// safeClassify calls the classifier and converts a panic into the software
// default, the documented bias for indecisive input.
func (e *Engine) safeClassify(title, description string) (category model.Category) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("classifier panicked, defaulting to software", "title", title, "panic", r)
			category = model.CategorySoftware
		}
	}()
	return e.classifier.Classify(title, description)
}

// safeExtract calls the extractor and converts a panic into the failure
// sentinel.
func (e *Engine) safeExtract(description string) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("extractor panicked", "panic", r)
			summary = extract.SentinelFailed
		}
	}()
	return e.extractor.Extract(description)
}

// LowQualitySummary reports whether a stored requirements summary should be
// replaced when a better one becomes available: empty, too short to be real,
// or one of the extractor sentinels.
func LowQualitySummary(s string) bool {
	if len(s) < 30 {
		return true
	}
	if strings.HasPrefix(s, "No specific requirements") {
		return true
	}
	return s == extract.SentinelFailed
}
