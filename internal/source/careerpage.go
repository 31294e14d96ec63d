package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"internradar/internal/model"
)

// defaultSelector is used when an owner does not configure its own. It targets
// anchors whose path looks like a job detail page.
const defaultSelector = `a[href*="job"], a[href*="career"], a[href*="position"], a[href*="opening"]`

// CareerPageSource scrapes posting candidates from an HTML careers page using
// a CSS selector.
type CareerPageSource struct {
	pageURL   *url.URL
	ownerName string
	selector  string
	client    *http.Client
}

// NewCareerPageSource builds a scraper for the owner's careers page. The
// owner's Selector, when set, overrides the default anchor heuristic.
func NewCareerPageSource(owner model.Owner, client *http.Client) (model.Source, error) {
	u, err := url.Parse(owner.URL)
	if err != nil {
		return nil, fmt.Errorf("career page source for %q: %w", owner.Name, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("career page source for %q: URL %q is not absolute", owner.Name, owner.URL)
	}
	selector := owner.Selector
	if selector == "" {
		selector = defaultSelector
	}
	return &CareerPageSource{
		pageURL:   u,
		ownerName: owner.Name,
		selector:  selector,
		client:    client,
	}, nil
}

// Fetch downloads the page and extracts one candidate per matched element.
// Relative links are resolved against the page URL; elements without a link
// or visible text are skipped.
func (s *CareerPageSource) Fetch(ctx context.Context) ([]model.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("career page fetch for %s: %w", s.ownerName, err)
	}
	req.Header.Set("User-Agent", "internradar/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("career page fetch for %s: %w", s.ownerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("career page fetch for %s: unexpected status %d", s.ownerName, resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("career page fetch for %s: parsing HTML: %w", s.ownerName, err)
	}

	var candidates []model.Candidate
	seen := make(map[string]struct{})
	doc.Find(s.selector).Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			href = strings.TrimSpace(sel.Find("a").First().AttrOr("href", ""))
		}
		title := collapseWhitespace(sel.Text())
		if href == "" || title == "" {
			return
		}

		link := s.resolve(href)
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		candidates = append(candidates, model.Candidate{
			Title:       title,
			Link:        link,
			Description: sel.AttrOr("title", ""),
		})
	})
	return candidates, nil
}

// resolve turns a scraped href into an absolute URL, dropping anchors and
// javascript pseudo-links.
func (s *CareerPageSource) resolve(href string) string {
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return s.pageURL.ResolveReference(ref).String()
}

// collapseWhitespace trims and squeezes internal runs of whitespace, which
// scraped anchor text is full of.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
