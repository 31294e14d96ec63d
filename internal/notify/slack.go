package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"internradar/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts each new posting to a Slack channel via Incoming
// Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NotifyNewPosting sends one Block Kit message for the posting. A 429 from
// Slack is retried once after the advertised delay.
func (s *SlackNotifier) NotifyNewPosting(p model.Posting) error {
	ev := NewEvent(p)
	body, err := json.Marshal(buildPayload(ev))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfterWait(resp.Header.Get("Retry-After"))
		s.logger.Warn("slack rate limited, retrying", "wait", wait)
		time.Sleep(wait)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "title", p.Title, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "event_id", ev.ID, "title", p.Title)
	return nil
}

// Bounds on the single 429 retry wait. The cap keeps a hostile or buggy
// Retry-After header from stalling the ingestion path for minutes.
const (
	minRetryAfter = 1 * time.Second
	maxRetryAfter = 30 * time.Second
)

// retryAfterWait converts a Retry-After header (seconds format) into a wait
// duration clamped to [minRetryAfter, maxRetryAfter].
func retryAfterWait(header string) time.Duration {
	secs, _ := strconv.Atoi(header)
	wait := time.Duration(secs) * time.Second
	if wait < minRetryAfter {
		return minRetryAfter
	}
	if wait > maxRetryAfter {
		return maxRetryAfter
	}
	return wait
}

// SendTestMessage sends a dummy posting to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	return n.NotifyNewPosting(model.Posting{
		Title:         "Test Notification: Integration Verified",
		Link:          "https://example.com/careers",
		Category:      model.CategorySoftware,
		Location:      "Everywhere",
		PostingDate:   time.Now(),
		DiscoveryDate: time.Now(),
		SourceLabel:   "test",
	})
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func buildPayload(ev Event) slackPayload {
	p := ev.Posting

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🎯 New internship: " + p.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Category:*\n" + string(p.Category)},
				{Type: "mrkdwn", Text: "*Location:*\n" + p.Location},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Posted:*\n" + p.PostingDate.Format(time.RFC1123)},
				{Type: "mrkdwn", Text: "*Source:*\n" + p.SourceLabel},
			},
		},
	}

	if p.RequirementsSummary != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: p.RequirementsSummary},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "Apply Now"},
					URL:   p.Link,
					Style: "primary",
				},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
