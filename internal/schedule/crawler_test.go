package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"internradar/internal/ingest"
	"internradar/internal/metrics"
	"internradar/internal/model"
	"internradar/internal/runlog"
	"internradar/internal/source"
)

type memOwnerStore struct {
	owners  []model.Owner
	touched map[int64]time.Time
}

func (s *memOwnerStore) GetOrCreateOwner(_ context.Context, o model.Owner) (model.Owner, error) {
	return o, nil
}

func (s *memOwnerStore) ListActiveOwners(context.Context) ([]model.Owner, error) {
	return s.owners, nil
}

func (s *memOwnerStore) TouchLastCrawled(_ context.Context, ownerID int64, at time.Time) error {
	if s.touched == nil {
		s.touched = make(map[int64]time.Time)
	}
	s.touched[ownerID] = at
	return nil
}

type memRunStore struct {
	nextID   int64
	finished []model.CrawlRun
}

func (s *memRunStore) CreateRun(_ context.Context, ownerID int64, startedAt time.Time) (int64, error) {
	s.nextID++
	return s.nextID, nil
}

func (s *memRunStore) FinishRun(ctx context.Context, runID int64, status model.RunStatus, finishedAt time.Time, jobsFound, jobsNew int, errMsg string) error {
	// The real store fails its UPDATE on an expired context.
	if err := ctx.Err(); err != nil {
		return err
	}
	s.finished = append(s.finished, model.CrawlRun{
		ID: runID, Status: status, JobsFound: jobsFound, JobsNew: jobsNew, ErrorMessage: errMsg,
	})
	return nil
}

func (s *memRunStore) ListRecentRuns(context.Context, int) ([]model.CrawlRun, error) {
	return nil, nil
}

type memPostingStore struct {
	byLink map[string]*model.Posting
}

func (s *memPostingStore) FindPosting(_ context.Context, _ int64, link string) (*model.Posting, error) {
	if s.byLink == nil {
		return nil, nil
	}
	return s.byLink[link], nil
}

func (s *memPostingStore) CreatePosting(_ context.Context, p *model.Posting) error {
	if s.byLink == nil {
		s.byLink = make(map[string]*model.Posting)
	}
	if _, ok := s.byLink[p.Link]; ok {
		return model.ErrDuplicatePosting
	}
	s.byLink[p.Link] = p
	return nil
}

func (s *memPostingStore) UpdateRequirementsSummary(context.Context, int64, string) error {
	return nil
}

type constClassifier struct{}

func (constClassifier) Classify(string, string) model.Category { return model.CategorySoftware }

type constExtractor struct{}

func (constExtractor) Extract(string) string {
	return "Key Requirements:\n\nExperience:\n• Experience with Go services."
}

type stubSource struct {
	candidates []model.Candidate
	err        error
}

func (s *stubSource) Fetch(context.Context) ([]model.Candidate, error) {
	return s.candidates, s.err
}

// hangingSource blocks until the crawl context ends, simulating a stuck
// upstream server.
type hangingSource struct{}

func (hangingSource) Fetch(ctx context.Context) ([]model.Candidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func fastPoliteness() source.Politeness {
	return source.Politeness{
		MinDelay:         time.Millisecond,
		MaxDelay:         2 * time.Millisecond,
		RateLimitBackoff: time.Millisecond,
	}
}

func newTestCrawler(t *testing.T, owners *memOwnerStore, runs *memRunStore, src model.Source) *Crawler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := source.NewRegistry()
	registry.Register("stub", func(model.Owner, *http.Client) (model.Source, error) {
		return src, nil
	})

	engine := ingest.NewEngine(&memPostingStore{}, constClassifier{}, constExtractor{}, nil, logger)
	recorder := runlog.NewRecorder(runs, logger)
	return NewCrawler(owners, recorder, engine, registry, http.DefaultClient, fastPoliteness(), time.Minute, metrics.Nop{}, logger)
}

func TestCrawlDue_SuccessfulRun(t *testing.T) {
	owners := &memOwnerStore{owners: []model.Owner{
		{ID: 1, Name: "acme", SourceType: "stub", Cadence: time.Hour, Active: true},
	}}
	runs := &memRunStore{}
	src := &stubSource{candidates: []model.Candidate{
		{Title: "Software Engineer Intern", Link: "https://x/1", Description: "d"},
		{Title: "Hardware Engineer Intern", Link: "https://x/2", Description: "d"},
	}}

	c := newTestCrawler(t, owners, runs, src)
	if err := c.CrawlDue(context.Background()); err != nil {
		t.Fatalf("CrawlDue: %v", err)
	}

	if len(runs.finished) != 1 {
		t.Fatalf("finished %d runs, want 1", len(runs.finished))
	}
	run := runs.finished[0]
	if run.Status != model.RunCompleted || run.JobsFound != 2 || run.JobsNew != 2 {
		t.Errorf("run = %+v", run)
	}
	if _, ok := owners.touched[1]; !ok {
		t.Error("successful crawl must stamp last_crawled")
	}
}

func TestCrawlDue_FetchFailureMarksRunFailed(t *testing.T) {
	owners := &memOwnerStore{owners: []model.Owner{
		{ID: 1, Name: "acme", SourceType: "stub", Cadence: time.Hour, Active: true},
	}}
	runs := &memRunStore{}
	src := &stubSource{err: errors.New("connection refused")}

	c := newTestCrawler(t, owners, runs, src)
	if err := c.CrawlDue(context.Background()); err != nil {
		t.Fatalf("CrawlDue: %v", err)
	}

	if len(runs.finished) != 1 {
		t.Fatalf("finished %d runs, want 1", len(runs.finished))
	}
	run := runs.finished[0]
	if run.Status != model.RunFailed {
		t.Errorf("status = %q, want failed", run.Status)
	}
	if run.ErrorMessage == "" {
		t.Error("failed run should carry an error message")
	}
	if len(owners.touched) != 0 {
		t.Error("failed crawl must not stamp last_crawled")
	}
}

func TestCrawlOwner_TimeoutStillClosesRun(t *testing.T) {
	owners := &memOwnerStore{}
	runs := &memRunStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := source.NewRegistry()
	registry.Register("stub", func(model.Owner, *http.Client) (model.Source, error) {
		return hangingSource{}, nil
	})

	engine := ingest.NewEngine(&memPostingStore{}, constClassifier{}, constExtractor{}, nil, logger)
	recorder := runlog.NewRecorder(runs, logger)
	c := NewCrawler(owners, recorder, engine, registry, http.DefaultClient,
		fastPoliteness(), 50*time.Millisecond, metrics.Nop{}, logger)

	c.CrawlOwner(context.Background(), model.Owner{ID: 1, Name: "acme", SourceType: "stub", Cadence: time.Hour, Active: true})

	if len(runs.finished) != 1 {
		t.Fatalf("finished %d runs, want 1 (timed-out run must not stay started)", len(runs.finished))
	}
	run := runs.finished[0]
	if run.Status != model.RunFailed {
		t.Errorf("status = %q, want failed", run.Status)
	}
	if !strings.Contains(run.ErrorMessage, "deadline exceeded") {
		t.Errorf("error message = %q, want the deadline error recorded", run.ErrorMessage)
	}
	if len(owners.touched) != 0 {
		t.Error("timed-out crawl must not stamp last_crawled")
	}
}

func TestCrawlOwner_CancelledPassStillClosesRun(t *testing.T) {
	owners := &memOwnerStore{}
	runs := &memRunStore{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := newTestCrawler(t, owners, runs, hangingSource{})
	c.CrawlOwner(ctx, model.Owner{ID: 1, Name: "acme", SourceType: "stub", Cadence: time.Hour, Active: true})

	if len(runs.finished) != 1 {
		t.Fatalf("finished %d runs, want 1 (cancelled run must not stay started)", len(runs.finished))
	}
	if runs.finished[0].Status != model.RunFailed {
		t.Errorf("status = %q, want failed", runs.finished[0].Status)
	}
}

func TestCrawlDue_OwnerFailureDoesNotStopOthers(t *testing.T) {
	owners := &memOwnerStore{owners: []model.Owner{
		{ID: 1, Name: "broken", SourceType: "missing-type", Cadence: time.Hour, Active: true},
		{ID: 2, Name: "acme", SourceType: "stub", Cadence: time.Hour, Active: true},
	}}
	runs := &memRunStore{}
	src := &stubSource{candidates: []model.Candidate{
		{Title: "Software Engineer Intern", Link: "https://x/1", Description: "d"},
	}}

	c := newTestCrawler(t, owners, runs, src)
	if err := c.CrawlDue(context.Background()); err != nil {
		t.Fatalf("CrawlDue: %v", err)
	}

	if len(runs.finished) != 2 {
		t.Fatalf("finished %d runs, want 2", len(runs.finished))
	}
	byStatus := map[model.RunStatus]int{}
	for _, r := range runs.finished {
		byStatus[r.Status]++
	}
	if byStatus[model.RunFailed] != 1 || byStatus[model.RunCompleted] != 1 {
		t.Errorf("run statuses = %v", byStatus)
	}
	if _, ok := owners.touched[2]; !ok {
		t.Error("healthy owner should still complete after a broken sibling")
	}
}

func TestCrawlDue_NoOwnersDue(t *testing.T) {
	recent := time.Now()
	owners := &memOwnerStore{owners: []model.Owner{
		{ID: 1, Name: "acme", SourceType: "stub", Cadence: time.Hour, LastCrawled: &recent, Active: true},
	}}
	runs := &memRunStore{}

	c := newTestCrawler(t, owners, runs, &stubSource{})
	if err := c.CrawlDue(context.Background()); err != nil {
		t.Fatalf("CrawlDue: %v", err)
	}
	if len(runs.finished) != 0 {
		t.Errorf("no runs expected, got %d", len(runs.finished))
	}
}
