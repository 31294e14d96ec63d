package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"internradar/internal/ingest"
	"internradar/internal/metrics"
	"internradar/internal/model"
	"internradar/internal/runlog"
	"internradar/internal/source"
)

// closeTimeout bounds the bookkeeping writes (run closure, last-crawl stamp)
// that must land even after the per-owner context has expired.
const closeTimeout = 10 * time.Second

// Crawler executes crawl runs: it resolves each due owner's source, fetches
// candidates, and hands them to the ingestion engine, bracketed by run log
// records. Owners are crawled sequentially; one owner's failure never stops
// the rest.
type Crawler struct {
	owners     model.OwnerStore
	runs       *runlog.Recorder
	engine     *ingest.Engine
	registry   *source.Registry
	client     *http.Client
	politeness source.Politeness
	timeout    time.Duration // per-owner budget; zero means no limit
	metrics    metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewCrawler wires a crawler. timeout bounds each owner's crawl; pass zero to
// disable the per-owner deadline. rec may be metrics.Nop{}.
func NewCrawler(owners model.OwnerStore, runs *runlog.Recorder, engine *ingest.Engine,
	registry *source.Registry, client *http.Client, politeness source.Politeness,
	timeout time.Duration, rec metrics.Recorder, logger *slog.Logger) *Crawler {
	return &Crawler{
		owners:     owners,
		runs:       runs,
		engine:     engine,
		registry:   registry,
		client:     client,
		politeness: politeness,
		timeout:    timeout,
		metrics:    rec,
		logger:     logger,
		now:        time.Now,
	}
}

// CrawlDue selects the owners due now and crawls each in priority order.
func (c *Crawler) CrawlDue(ctx context.Context) error {
	owners, err := c.owners.ListActiveOwners(ctx)
	if err != nil {
		return fmt.Errorf("loading owners: %w", err)
	}

	due := DueOwners(owners, c.now())
	if len(due) == 0 {
		c.logger.Debug("no owners due")
		return nil
	}
	c.logger.Info("starting crawl cycle", "due", len(due), "total", len(owners))

	for _, owner := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.CrawlOwner(ctx, owner)
	}
	return nil
}

// CrawlOwner runs one full crawl for a single owner: open a run record, fetch,
// ingest, close the record, and on success stamp the owner's last-crawl time.
// A failed crawl leaves last_crawled untouched so the owner stays due.
func (c *Crawler) CrawlOwner(ctx context.Context, owner model.Owner) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	run, err := c.runs.Start(ctx, owner.ID)
	if err != nil {
		c.logger.Error("could not open crawl run", "owner", owner.Name, "error", err)
		return
	}

	found, fresh, err := c.crawl(ctx, owner)

	// Close the run on a context that survives the crawl's own deadline: when
	// the crawl failed because ctx expired, the run record must still
	// transition out of started.
	closeCtx, closeCancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer closeCancel()

	if err != nil {
		c.logger.Error("crawl failed", "owner", owner.Name, "error", err)
		if ferr := run.Fail(closeCtx, found, fresh, err); ferr != nil {
			c.logger.Error("could not close crawl run", "owner", owner.Name, "error", ferr)
		}
		c.metrics.RunFinished(string(model.RunFailed))
		return
	}

	if err := run.Complete(closeCtx, found, fresh); err != nil {
		c.logger.Error("could not close crawl run", "owner", owner.Name, "error", err)
	}
	c.metrics.RunFinished(string(model.RunCompleted))
	c.metrics.PostingsIngested(found, fresh)
	if err := c.owners.TouchLastCrawled(closeCtx, owner.ID, c.now()); err != nil {
		c.logger.Error("could not stamp last crawl", "owner", owner.Name, "error", err)
	}
}

// crawl does the fetch-and-ingest body of a run. A panic anywhere inside is
// converted to an error so the run record closes as failed.
func (c *Crawler) crawl(ctx context.Context, owner model.Owner) (found, fresh int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("crawling %s: panic: %v", owner.Name, r)
		}
	}()

	src, err := c.registry.New(owner, c.client)
	if err != nil {
		return 0, 0, err
	}
	polite := source.NewPoliteSource(src, c.politeness, c.logger)

	fetchStart := time.Now()
	candidates, err := polite.Fetch(ctx)
	c.metrics.ObserveFetch(owner.Name, time.Since(fetchStart))
	if err != nil {
		return 0, 0, fmt.Errorf("fetching %s: %w", owner.Name, err)
	}

	found, fresh = c.engine.Ingest(ctx, owner, candidates)
	c.logger.Info("crawl finished",
		"owner", owner.Name,
		"candidates", len(candidates),
		"jobs_found", found,
		"jobs_new", fresh,
	)
	return found, fresh, nil
}
