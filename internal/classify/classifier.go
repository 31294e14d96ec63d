package classify

import (
	"strings"

	"internradar/internal/model"
)

// Keyword lists for rule-based classification. Matching is case-insensitive
// substring containment, so multi-word phrases like "systems engineer" work
// against raw titles without tokenization.
var hardwareKeywords = []string{
	"hardware", "electrical", "electronics", "circuit", "pcb", "fpga",
	"embedded", "firmware", "asic", "rf", "analog", "signal",
	"systems engineer", "semiconductor", "silicon", "verilog", "vlsi",
	"microcontroller", "schematic", "layout", "chip",
}

var softwareKeywords = []string{
	"software", "web", "frontend", "backend", "full-stack", "fullstack",
	"cloud", "devops", "data scientist", "machine learning", "mobile",
	"ios", "android", "javascript", "python", "java", "c++", "react",
	"node", "django", "flask", "sql", "api", "aws", "azure", "gcp",
	"developer", "programming",
}

// Classifier labels postings as software or hardware. It is stateless after
// construction: New trains the bag-of-words fallback once and the instance is
// safe for concurrent use.
type Classifier struct {
	model *bayesModel
}

// New builds a classifier with the naive-Bayes fallback trained on the
// curated title set.
func New() *Classifier {
	return &Classifier{model: trainBayes(trainingTitles)}
}

// Classify applies the rules in strict precedence order:
//
//  1. hardware keyword in the title wins immediately,
//  2. then software keyword in the title,
//  3. then description keyword counts, where hardware must beat software by
//     a margin of at least 2 to overcome the software default bias,
//  4. then the trained bag-of-words fallback on the title,
//  5. and finally the software default.
func (c *Classifier) Classify(title, description string) model.Category {
	titleLower := strings.ToLower(title)
	for _, kw := range hardwareKeywords {
		if strings.Contains(titleLower, kw) {
			return model.CategoryHardware
		}
	}
	for _, kw := range softwareKeywords {
		if strings.Contains(titleLower, kw) {
			return model.CategorySoftware
		}
	}

	if description != "" {
		descLower := strings.ToLower(description)
		hardwareHits := countHits(descLower, hardwareKeywords)
		softwareHits := countHits(descLower, softwareKeywords)

		if hardwareHits > softwareHits+1 {
			return model.CategoryHardware
		}
		if softwareHits > 0 {
			return model.CategorySoftware
		}
	}

	if c.model != nil {
		if category, ok := c.model.predict(title); ok {
			return category
		}
	}

	// Software is the more common category.
	return model.CategorySoftware
}

// countHits counts how many distinct keywords appear in the text.
func countHits(textLower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(textLower, kw) {
			hits++
		}
	}
	return hits
}
