// Package extract derives a short, formatted requirements summary from the
// free-text description of a job posting. Input is noisy HTML-derived text;
// everything here is heuristic and best-effort, and Extract never fails from
// the caller's point of view.
package extract

import (
	"regexp"
	"strings"
)

// Sentinel outputs. The ingestion layer treats these as low-quality summaries
// eligible for refresh on a later crawl.
const (
	SentinelNoRequirements = "No specific requirements listed."
	SentinelNothingFound   = "No specific requirements extracted."
	SentinelFailed         = "Failed to summarize requirements."
)

// headerRe matches a line that introduces a requirements-like section.
var headerRe = regexp.MustCompile(`(?i)^\s*(?:•|\*|-|\d+\.)?\s*(?:basic |minimum |preferred )?(requirements?|qualifications?|what you.ll need|what we.re looking for|skills|about you|the ideal candidate|you should have)\b.{0,40}$`)

// sectionEndRe matches a line that looks like the start of a different
// section: short, starts capitalized, and ends with a colon.
var sectionEndRe = regexp.MustCompile(`^\s*[A-Z][A-Za-z ,&/'-]{2,60}:\s*$`)

// bulletRe captures the text of a bullet-style line.
var bulletRe = regexp.MustCompile(`^\s*(?:•|\*|-|\d+\.)\s+(.+)$`)

// requirementLeadRe matches sentences phrased like a requirement.
var requirementLeadRe = regexp.MustCompile(`(?i)^(must|should|need to|required to|ability to|experience (in|with))\b`)

// inlineHeaderRe finds a requirements header embedded mid-text, for
// descriptions collapsed onto a single line by HTML extraction.
var inlineHeaderRe = regexp.MustCompile(`(?i)(?:basic |minimum |preferred )?(?:requirements?|qualifications?|what you.ll need|what we.re looking for|skills)\s*:`)

// Extractor summarizes requirements sections. It is stateless and safe for
// concurrent use.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns a formatted "Key Requirements:" summary for the given
// description, or a sentinel string when the input is empty or unusable.
// It never panics outward; internal failures yield SentinelFailed.
func (e *Extractor) Extract(description string) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = SentinelFailed
		}
	}()

	if strings.TrimSpace(description) == "" {
		return SentinelNoRequirements
	}

	section := locateSection(description)
	items := extractItems(section)
	items = filterRelevant(items)
	if len(items) == 0 {
		return SentinelNothingFound
	}

	scored := scoreItems(items)
	buckets := categorize(scored)
	return formatBuckets(buckets)
}

// locateSection returns the slice of the description most likely to hold
// requirements: the text between a requirements-like header line and the next
// header-like line, the whole text when no header matches but requirement
// bullets exist, or the first ~30% of the text as a last resort.
func locateSection(description string) string {
	lines := strings.Split(description, "\n")

	for i, line := range lines {
		if !headerRe.MatchString(line) {
			continue
		}
		var section []string
		for _, next := range lines[i+1:] {
			if headerRe.MatchString(next) || sectionEndRe.MatchString(next) {
				break
			}
			section = append(section, next)
		}
		if text := strings.TrimSpace(strings.Join(section, "\n")); len(text) > 30 {
			return text
		}
	}

	// Header embedded mid-line rather than on its own line.
	if loc := inlineHeaderRe.FindStringIndex(description); loc != nil {
		rest := description[loc[1]:]
		if end := strings.Index(rest, "\n\n"); end > 0 {
			rest = rest[:end]
		}
		if text := strings.TrimSpace(rest); len(text) > 30 {
			return text
		}
	}

	// No usable header. If the text carries requirement-style bullets anywhere,
	// work on the whole thing.
	for _, line := range lines {
		if m := bulletRe.FindStringSubmatch(line); m != nil && requirementLeadRe.MatchString(m[1]) {
			return description
		}
	}

	// Last resort: descriptions often front-load key requirements.
	cut := len(description) * 3 / 10
	if cut < len(description) {
		return description[:cut]
	}
	return description
}

// extractItems pulls candidate requirement items out of the section: bullet
// lines first, then requirement-phrased sentences, then scored whole
// sentences of readable length.
func extractItems(section string) []string {
	var items []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(section, "\n") {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if len(item) <= 10 {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	if len(items) > 0 {
		return items
	}

	sentences := splitSentences(section)
	for _, s := range sentences {
		if requirementLeadRe.MatchString(s) {
			items = append(items, s)
		}
	}
	if len(items) > 0 {
		return items
	}

	for _, s := range sentences {
		if len(s) >= 15 && len(s) <= 200 {
			items = append(items, s)
		}
	}
	return items
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. Good enough for scraped prose; no NLP tokenizer needed.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') &&
			(i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t') {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
