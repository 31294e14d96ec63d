// Package notify delivers new-posting alerts. Delivery is best effort; the
// ingestion pipeline never depends on it succeeding.
package notify

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"internradar/internal/model"
)

// Event wraps a posting for delivery with a unique identifier so downstream
// consumers can deduplicate redeliveries.
type Event struct {
	ID         string        `json:"id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Posting    model.Posting `json:"posting"`
}

// NewEvent stamps a posting into a delivery event.
func NewEvent(p model.Posting) Event {
	return Event{
		ID:         uuid.NewString(),
		OccurredAt: time.Now(),
		Posting:    p,
	}
}

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each new posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyNewPosting logs the posting. Returns nil (stdout logging does not fail).
func (n *LogNotifier) NotifyNewPosting(p model.Posting) error {
	ev := NewEvent(p)
	n.logger.Info("new posting",
		"event_id", ev.ID,
		"title", p.Title,
		"category", p.Category,
		"link", p.Link,
		"location", p.Location,
	)
	return nil
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) NotifyNewPosting(model.Posting) error { return nil }
