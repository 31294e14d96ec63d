package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"internradar/internal/model"
)

// boardJob is a single job in a JSON board API response.
type boardJob struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Location    boardLocation `json:"location"`
	AbsoluteURL string        `json:"absolute_url"`
	Content     string        `json:"content"`
	UpdatedAt   string        `json:"updated_at"`
}

type boardLocation struct {
	Name string `json:"name"`
}

// boardResponse is the top-level board API response.
type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

// BoardSource fetches candidates from a Greenhouse-style JSON board API.
type BoardSource struct {
	url       string
	ownerName string
	client    *http.Client
}

// NewBoardSource builds a board source from the owner's URL, which should
// point at the board's jobs endpoint.
func NewBoardSource(owner model.Owner, client *http.Client) (model.Source, error) {
	if owner.URL == "" {
		return nil, fmt.Errorf("board source for %q: empty URL", owner.Name)
	}
	return &BoardSource{url: owner.URL, ownerName: owner.Name, client: client}, nil
}

// Fetch retrieves all jobs from the board and normalizes them into candidates.
func (s *BoardSource) Fetch(ctx context.Context) ([]model.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.ownerName, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.ownerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("board fetch for %s: unexpected status %d", s.ownerName, resp.StatusCode),
		}
	}

	var board boardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", s.ownerName, err)
	}

	candidates := make([]model.Candidate, 0, len(board.Jobs))
	for _, bj := range board.Jobs {
		c := model.Candidate{
			Title:       bj.Title,
			Link:        bj.AbsoluteURL,
			Description: bj.Content,
			Location:    bj.Location.Name,
			SourceJobID: strconv.FormatInt(bj.ID, 10),
		}
		if bj.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, bj.UpdatedAt); err == nil {
				c.PostingDate = &t
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
