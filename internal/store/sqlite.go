// Package store persists owners, postings, and crawl runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"internradar/internal/model"
)

// SQLiteStore backs all persistence with a single SQLite database. It
// implements model.OwnerStore, model.PostingStore, and model.RunStore.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS owners (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	kind          TEXT NOT NULL,
	url           TEXT NOT NULL UNIQUE,
	source_type   TEXT NOT NULL,
	selector      TEXT NOT NULL DEFAULT '',
	cadence_secs  INTEGER NOT NULL,
	priority      INTEGER NOT NULL DEFAULT 0,
	last_crawled  DATETIME,
	active        BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS postings (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id             INTEGER NOT NULL REFERENCES owners(id),
	title                TEXT NOT NULL,
	link                 TEXT NOT NULL,
	posting_date         DATETIME NOT NULL,
	discovery_date       DATETIME NOT NULL,
	category             TEXT NOT NULL,
	description          TEXT NOT NULL DEFAULT '',
	requirements_summary TEXT NOT NULL DEFAULT '',
	is_active            BOOLEAN NOT NULL DEFAULT 1,
	source_label         TEXT NOT NULL DEFAULT '',
	location             TEXT NOT NULL DEFAULT '',
	salary_info          TEXT NOT NULL DEFAULT '',
	UNIQUE(owner_id, link)
);

CREATE TABLE IF NOT EXISTS crawl_runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id      INTEGER NOT NULL REFERENCES owners(id),
	started_at    DATETIME NOT NULL,
	finished_at   DATETIME,
	status        TEXT NOT NULL DEFAULT 'started',
	jobs_found    INTEGER NOT NULL DEFAULT 0,
	jobs_new      INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_postings_owner ON postings(owner_id);
CREATE INDEX IF NOT EXISTS idx_runs_owner ON crawl_runs(owner_id);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- owners ---

// GetOrCreateOwner finds an owner by URL, creating it when absent. Fields of
// an existing row other than the mutable configuration (source type, selector,
// cadence, priority, active) are left untouched.
func (s *SQLiteStore) GetOrCreateOwner(ctx context.Context, owner model.Owner) (model.Owner, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (name, kind, url, source_type, selector, cadence_secs, priority, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			source_type = excluded.source_type,
			selector = excluded.selector,
			cadence_secs = excluded.cadence_secs,
			priority = excluded.priority,
			active = excluded.active`,
		owner.Name, owner.Kind, owner.URL, owner.SourceType, owner.Selector,
		int64(owner.Cadence.Seconds()), owner.Priority, owner.Active,
	)
	if err != nil {
		return model.Owner{}, fmt.Errorf("upserting owner %q: %w", owner.Name, err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, url, source_type, selector, cadence_secs, priority, last_crawled, active
		FROM owners WHERE url = ?`, owner.URL)
	return scanOwner(row)
}

// ListActiveOwners returns every owner currently enabled for crawling.
func (s *SQLiteStore) ListActiveOwners(ctx context.Context) ([]model.Owner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, url, source_type, selector, cadence_secs, priority, last_crawled, active
		FROM owners WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing active owners: %w", err)
	}
	defer rows.Close()

	var owners []model.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// ListOwners returns all owners, active or not.
func (s *SQLiteStore) ListOwners(ctx context.Context) ([]model.Owner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, url, source_type, selector, cadence_secs, priority, last_crawled, active
		FROM owners ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	defer rows.Close()

	var owners []model.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// TouchLastCrawled records a successful crawl time for the owner.
func (s *SQLiteStore) TouchLastCrawled(ctx context.Context, ownerID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE owners SET last_crawled = ? WHERE id = ?`, at, ownerID)
	if err != nil {
		return fmt.Errorf("touching last_crawled for owner %d: %w", ownerID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (model.Owner, error) {
	var (
		o           model.Owner
		cadenceSecs int64
		lastCrawled sql.NullTime
	)
	err := row.Scan(&o.ID, &o.Name, &o.Kind, &o.URL, &o.SourceType, &o.Selector,
		&cadenceSecs, &o.Priority, &lastCrawled, &o.Active)
	if err != nil {
		return model.Owner{}, fmt.Errorf("scanning owner row: %w", err)
	}
	o.Cadence = time.Duration(cadenceSecs) * time.Second
	if lastCrawled.Valid {
		t := lastCrawled.Time
		o.LastCrawled = &t
	}
	return o, nil
}

// --- postings ---

const postingColumns = `id, owner_id, title, link, posting_date, discovery_date,
	category, description, requirements_summary, is_active, source_label, location, salary_info`

// FindPosting returns the posting for (ownerID, link), or nil when none exists.
func (s *SQLiteStore) FindPosting(ctx context.Context, ownerID int64, link string) (*model.Posting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE owner_id = ? AND link = ?`, ownerID, link)
	p, err := scanPosting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding posting %q: %w", link, err)
	}
	return &p, nil
}

// CreatePosting inserts a new posting. A row with the same (owner_id, link)
// already present yields model.ErrDuplicatePosting.
func (s *SQLiteStore) CreatePosting(ctx context.Context, p *model.Posting) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO postings (owner_id, title, link, posting_date, discovery_date,
			category, description, requirements_summary, is_active, source_label, location, salary_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, link) DO NOTHING`,
		p.OwnerID, p.Title, p.Link, p.PostingDate, p.DiscoveryDate,
		p.Category, p.Description, p.RequirementsSummary, p.IsActive,
		p.SourceLabel, p.Location, p.SalaryInfo,
	)
	if err != nil {
		return fmt.Errorf("inserting posting %q: %w", p.Link, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking posting insert: %w", err)
	}
	if n == 0 {
		return model.ErrDuplicatePosting
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading posting id: %w", err)
	}
	p.ID = id
	return nil
}

// UpdateRequirementsSummary replaces the stored summary for one posting.
func (s *SQLiteStore) UpdateRequirementsSummary(ctx context.Context, postingID int64, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE postings SET requirements_summary = ? WHERE id = ?`, summary, postingID)
	if err != nil {
		return fmt.Errorf("updating summary for posting %d: %w", postingID, err)
	}
	return nil
}

// ListPostingsByOwner returns an owner's postings, newest discovery first.
func (s *SQLiteStore) ListPostingsByOwner(ctx context.Context, ownerID int64) ([]model.Posting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE owner_id = ? ORDER BY discovery_date DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing postings for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning posting row: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func scanPosting(row rowScanner) (model.Posting, error) {
	var p model.Posting
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Link, &p.PostingDate, &p.DiscoveryDate,
		&p.Category, &p.Description, &p.RequirementsSummary, &p.IsActive,
		&p.SourceLabel, &p.Location, &p.SalaryInfo)
	return p, err
}

// --- crawl runs ---

// CreateRun opens a run row in the started state and returns its id.
func (s *SQLiteStore) CreateRun(ctx context.Context, ownerID int64, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO crawl_runs (owner_id, started_at, status) VALUES (?, ?, ?)`,
		ownerID, startedAt, model.RunStarted)
	if err != nil {
		return 0, fmt.Errorf("inserting crawl run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading crawl run id: %w", err)
	}
	return id, nil
}

// FinishRun closes a started run with its outcome. Closing a run that is not
// in the started state yields model.ErrRunFinished.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID int64, status model.RunStatus, finishedAt time.Time, jobsFound, jobsNew int, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE crawl_runs
		SET status = ?, finished_at = ?, jobs_found = ?, jobs_new = ?, error_message = ?
		WHERE id = ? AND status = ?`,
		status, finishedAt, jobsFound, jobsNew, errMsg, runID, model.RunStarted)
	if err != nil {
		return fmt.Errorf("finishing crawl run %d: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking crawl run update: %w", err)
	}
	if n == 0 {
		return model.ErrRunFinished
	}
	return nil
}

// ListRecentRuns returns the most recently started runs, newest first.
func (s *SQLiteStore) ListRecentRuns(ctx context.Context, limit int) ([]model.CrawlRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, started_at, finished_at, status, jobs_found, jobs_new, error_message
		FROM crawl_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []model.CrawlRun
	for rows.Next() {
		var (
			r        model.CrawlRun
			finished sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.StartedAt, &finished,
			&r.Status, &r.JobsFound, &r.JobsNew, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning crawl run row: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
