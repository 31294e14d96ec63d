package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Vocabularies used for scoring and bucketing. Matching is lowercase
// substring containment, mirroring how the rest of the pipeline treats
// scraped text.
var (
	importantKeywords = []string{
		"experience", "degree", "knowledge", "skill", "background",
		"proficiency", "ability", "years", "understanding", "familiar",
		"bachelor", "master", "phd", "education", "required", "qualification",
		"programming", "language", "software", "hardware", "system", "design",
		"engineering", "computer science", "electrical", "team", "collaborate",
	}

	educationKeywords = []string{
		"degree", "bachelor", "master", "phd", "b.s.", "m.s.", "education",
		"university", "college", "graduate",
	}

	experienceKeywords = []string{
		"experience", "years", "professional", "industry", "background",
		"worked with", "internship",
	}

	technicalKeywords = []string{
		"programming", "language", "code", "development", "software",
		"hardware", "tools", "platform", "framework", "library", "system",
		"technical", "python", "java", "c++", "sql", "git", "cloud",
		"circuit", "fpga", "embedded", "verilog",
	}

	softSkillKeywords = []string{
		"communicat", "team", "collaborat", "interpersonal", "problem-solving",
		"problem solving", "analytical", "organized", "leadership", "detail",
		"time management",
	}
)

var yearsRe = regexp.MustCompile(`\b\d+\+?\s*(year|yr)s?\b`)

type scoredItem struct {
	text  string
	score float64
}

type bucket int

const (
	bucketEducation bucket = iota
	bucketExperience
	bucketTechnical
	bucketSoftSkills
	bucketOther
	bucketCount
)

// filterRelevant drops items that carry no requirements signal at all: no
// domain keyword and no number. A section full of UI chrome or marketing copy
// ends up empty here and the caller returns the nothing-found sentinel.
func filterRelevant(items []string) []string {
	var kept []string
	for _, item := range items {
		lower := strings.ToLower(item)
		if containsAny(lower, importantKeywords) || strings.ContainsFunc(item, unicode.IsDigit) {
			kept = append(kept, item)
		}
	}
	return kept
}

// scoreItems assigns each item an additive relevance score: domain keywords,
// digits (a proxy for "N years" requirements), explicit education terms, and
// a bonus for readable length with a penalty past ~200 characters.
func scoreItems(items []string) []scoredItem {
	scored := make([]scoredItem, 0, len(items))
	for _, item := range items {
		lower := strings.ToLower(item)
		score := 1.0

		for _, kw := range importantKeywords {
			if strings.Contains(lower, kw) {
				score += 2.0
			}
		}
		if strings.ContainsFunc(item, unicode.IsDigit) {
			score += 2.0
		}
		if containsAny(lower, educationKeywords) {
			score += 3.0
		}
		if yearsRe.MatchString(lower) {
			score += 3.0
		}

		switch n := len(item); {
		case n >= 20 && n <= 200:
			score += 1.0
		case n > 200:
			score -= 1.0
		}

		scored = append(scored, scoredItem{text: item, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// categorize assigns every item to exactly one bucket by first keyword match,
// in fixed priority order: education, experience, technical, soft skills,
// other.
func categorize(items []scoredItem) [bucketCount][]scoredItem {
	var buckets [bucketCount][]scoredItem
	for _, item := range items {
		lower := strings.ToLower(item.text)
		switch {
		case containsAny(lower, educationKeywords):
			buckets[bucketEducation] = append(buckets[bucketEducation], item)
		case containsAny(lower, experienceKeywords):
			buckets[bucketExperience] = append(buckets[bucketExperience], item)
		case containsAny(lower, technicalKeywords):
			buckets[bucketTechnical] = append(buckets[bucketTechnical], item)
		case containsAny(lower, softSkillKeywords):
			buckets[bucketSoftSkills] = append(buckets[bucketSoftSkills], item)
		default:
			buckets[bucketOther] = append(buckets[bucketOther], item)
		}
	}
	return buckets
}

// maxChars is the overall character budget for a rendered summary.
const maxChars = 1000

var bucketFormat = []struct {
	bucket   bucket
	header   string
	maxItems int
}{
	{bucketEducation, "Education:", 2},
	{bucketExperience, "Experience:", 3},
	{bucketTechnical, "Technical Skills:", 4},
	{bucketSoftSkills, "Soft Skills:", 2},
	{bucketOther, "Other Requirements:", 1},
}

// formatBuckets renders the selected items as a "Key Requirements:" block
// with one sub-header and bullet list per non-empty bucket.
func formatBuckets(buckets [bucketCount][]scoredItem) string {
	var b strings.Builder
	b.WriteString("Key Requirements:\n")

	for _, section := range bucketFormat {
		items := buckets[section.bucket]
		if len(items) == 0 {
			continue
		}
		if len(items) > section.maxItems {
			items = items[:section.maxItems]
		}

		var lines []string
		budget := b.Len() + len(section.header)
		for _, item := range items {
			line := "• " + finishSentence(capitalize(item.text))
			if budget+len(line) > maxChars {
				break
			}
			lines = append(lines, line)
			budget += len(line)
		}
		if len(lines) == 0 {
			continue
		}

		b.WriteString("\n")
		b.WriteString(section.header)
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	out := strings.TrimRight(b.String(), "\n")
	if out == "Key Requirements:" {
		return SentinelNothingFound
	}
	return out
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func finishSentence(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
