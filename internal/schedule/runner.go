package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner drives the crawler on a fixed interval using a cron scheduler. The
// first cycle fires immediately on Start; later cycles follow the interval.
type Runner struct {
	crawler  *Crawler
	interval time.Duration
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewRunner(crawler *Crawler, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		crawler:  crawler,
		interval: interval,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Run starts the cycle loop and blocks until ctx is cancelled. It returns nil
// on graceful shutdown.
func (r *Runner) Run(ctx context.Context) error {
	cycle := func() {
		if ctx.Err() != nil {
			return
		}
		if err := r.crawler.CrawlDue(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("crawl cycle failed", "error", err)
		}
	}

	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, cycle); err != nil {
		return fmt.Errorf("scheduling crawl cycle %q: %w", spec, err)
	}

	r.logger.Info("starting crawl runner", "interval", r.interval.String())
	cycle()
	r.cron.Start()

	<-ctx.Done()
	r.logger.Info("shutting down crawl runner")

	// Wait for any in-flight cycle registered with cron to return.
	<-r.cron.Stop().Done()
	return nil
}
