package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"internradar/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testOwner(t *testing.T, s *SQLiteStore, name string) model.Owner {
	t.Helper()
	o, err := s.GetOrCreateOwner(context.Background(), model.Owner{
		Name:       name,
		Kind:       model.OwnerCompany,
		URL:        "https://careers.example.com/" + name,
		SourceType: "careerpage",
		Cadence:    6 * time.Hour,
		Priority:   1,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("GetOrCreateOwner: %v", err)
	}
	return o
}

func TestGetOrCreateOwnerIdempotent(t *testing.T) {
	s := newTestStore(t)

	first := testOwner(t, s, "acme")
	second := testOwner(t, s, "acme")
	if first.ID != second.ID {
		t.Errorf("same URL produced two owners: %d vs %d", first.ID, second.ID)
	}
	if second.Cadence != 6*time.Hour {
		t.Errorf("cadence = %v, want 6h", second.Cadence)
	}
}

func TestGetOrCreateOwnerUpdatesConfig(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := testOwner(t, s, "acme")
	updated, err := s.GetOrCreateOwner(ctx, model.Owner{
		Name:       "acme",
		Kind:       model.OwnerCompany,
		URL:        o.URL,
		SourceType: "board",
		Cadence:    30 * time.Minute,
		Priority:   5,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("GetOrCreateOwner: %v", err)
	}
	if updated.ID != o.ID {
		t.Errorf("update created a new row: %d vs %d", updated.ID, o.ID)
	}
	if updated.SourceType != "board" || updated.Cadence != 30*time.Minute || updated.Priority != 5 {
		t.Errorf("config not updated: %+v", updated)
	}
}

func TestListActiveOwnersSkipsInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	testOwner(t, s, "alive")
	if _, err := s.GetOrCreateOwner(ctx, model.Owner{
		Name: "dead", Kind: model.OwnerBoard, URL: "https://boards.example.com/dead",
		SourceType: "board", Cadence: time.Hour, Active: false,
	}); err != nil {
		t.Fatalf("GetOrCreateOwner: %v", err)
	}

	owners, err := s.ListActiveOwners(ctx)
	if err != nil {
		t.Fatalf("ListActiveOwners: %v", err)
	}
	if len(owners) != 1 || owners[0].Name != "alive" {
		t.Errorf("ListActiveOwners = %+v, want just the active owner", owners)
	}
}

func TestTouchLastCrawled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := testOwner(t, s, "acme")
	if o.LastCrawled != nil {
		t.Fatalf("new owner should have nil last_crawled")
	}

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := s.TouchLastCrawled(ctx, o.ID, at); err != nil {
		t.Fatalf("TouchLastCrawled: %v", err)
	}

	owners, err := s.ListActiveOwners(ctx)
	if err != nil {
		t.Fatalf("ListActiveOwners: %v", err)
	}
	if owners[0].LastCrawled == nil || !owners[0].LastCrawled.Equal(at) {
		t.Errorf("last_crawled = %v, want %v", owners[0].LastCrawled, at)
	}
}

func TestCreatePostingAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	o := testOwner(t, s, "acme")

	p := &model.Posting{
		OwnerID:             o.ID,
		Title:               "Software Engineer Intern",
		Link:                "https://careers.example.com/acme/1",
		PostingDate:         time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		DiscoveryDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Category:            model.CategorySoftware,
		Description:         "Build backend services.",
		RequirementsSummary: "Key Requirements:\n\nTechnical Skills:\n• Python and SQL.",
		IsActive:            true,
		SourceLabel:         "careerpage",
		Location:            "Remote",
	}
	if err := s.CreatePosting(ctx, p); err != nil {
		t.Fatalf("CreatePosting: %v", err)
	}
	if p.ID == 0 {
		t.Error("CreatePosting did not assign an ID")
	}

	got, err := s.FindPosting(ctx, o.ID, p.Link)
	if err != nil {
		t.Fatalf("FindPosting: %v", err)
	}
	if got == nil {
		t.Fatal("FindPosting returned nil for stored posting")
	}
	if got.Title != p.Title || got.Category != p.Category || got.Location != "Remote" {
		t.Errorf("FindPosting = %+v", got)
	}
}

func TestCreatePostingDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	o := testOwner(t, s, "acme")

	p := model.Posting{
		OwnerID: o.ID, Title: "Intern", Link: "https://x/1",
		PostingDate: time.Now(), DiscoveryDate: time.Now(),
		Category: model.CategorySoftware,
	}
	first := p
	if err := s.CreatePosting(ctx, &first); err != nil {
		t.Fatalf("first CreatePosting: %v", err)
	}
	second := p
	if err := s.CreatePosting(ctx, &second); !errors.Is(err, model.ErrDuplicatePosting) {
		t.Errorf("second CreatePosting = %v, want ErrDuplicatePosting", err)
	}
}

func TestSameLinkDifferentOwners(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := testOwner(t, s, "acme")
	b := testOwner(t, s, "globex")

	link := "https://boards.example.com/shared/1"
	for _, o := range []model.Owner{a, b} {
		p := &model.Posting{
			OwnerID: o.ID, Title: "Intern", Link: link,
			PostingDate: time.Now(), DiscoveryDate: time.Now(),
			Category: model.CategorySoftware,
		}
		if err := s.CreatePosting(ctx, p); err != nil {
			t.Fatalf("CreatePosting for owner %d: %v", o.ID, err)
		}
	}
}

func TestUpdateRequirementsSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	o := testOwner(t, s, "acme")

	p := &model.Posting{
		OwnerID: o.ID, Title: "Intern", Link: "https://x/1",
		PostingDate: time.Now(), DiscoveryDate: time.Now(),
		Category: model.CategorySoftware, RequirementsSummary: "Failed to summarize requirements.",
	}
	if err := s.CreatePosting(ctx, p); err != nil {
		t.Fatalf("CreatePosting: %v", err)
	}

	want := "Key Requirements:\n\nExperience:\n• One prior internship."
	if err := s.UpdateRequirementsSummary(ctx, p.ID, want); err != nil {
		t.Fatalf("UpdateRequirementsSummary: %v", err)
	}
	got, err := s.FindPosting(ctx, o.ID, p.Link)
	if err != nil {
		t.Fatalf("FindPosting: %v", err)
	}
	if got.RequirementsSummary != want {
		t.Errorf("summary = %q, want %q", got.RequirementsSummary, want)
	}
}

func TestRunLifecycleAndDoubleFinish(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	o := testOwner(t, s, "acme")

	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runID, err := s.CreateRun(ctx, o.ID, started)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	finished := started.Add(2 * time.Minute)
	if err := s.FinishRun(ctx, runID, model.RunCompleted, finished, 12, 3, ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := s.FinishRun(ctx, runID, model.RunFailed, finished, 0, 0, "late"); !errors.Is(err, model.ErrRunFinished) {
		t.Errorf("second FinishRun = %v, want ErrRunFinished", err)
	}

	runs, err := s.ListRecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRecentRuns returned %d rows, want 1", len(runs))
	}
	r := runs[0]
	if r.Status != model.RunCompleted || r.JobsFound != 12 || r.JobsNew != 3 {
		t.Errorf("run row = %+v", r)
	}
	if r.FinishedAt == nil || !r.FinishedAt.Equal(finished) {
		t.Errorf("finished_at = %v, want %v", r.FinishedAt, finished)
	}
}

func TestListRecentRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	o := testOwner(t, s, "acme")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.CreateRun(ctx, o.ID, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, err := s.ListRecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit ignored: got %d rows", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}
