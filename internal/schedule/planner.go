// Package schedule decides which owners are due for a crawl and drives the
// crawl cycle on a cron cadence.
package schedule

import (
	"sort"
	"time"

	"internradar/internal/model"
)

// DueOwners returns the active owners that should be crawled now: owners whose
// cadence has elapsed since their last crawl, followed by owners that have
// never been crawled. Within the combined list, lower Priority values come
// first; ties keep their relative order.
func DueOwners(owners []model.Owner, now time.Time) []model.Owner {
	var due, fresh []model.Owner
	for _, o := range owners {
		if !o.Active {
			continue
		}
		switch {
		case o.LastCrawled == nil:
			fresh = append(fresh, o)
		case now.Sub(*o.LastCrawled) >= o.Cadence:
			due = append(due, o)
		}
	}

	out := append(due, fresh...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
