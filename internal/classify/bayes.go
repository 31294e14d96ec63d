package classify

import (
	"math"
	"strings"
	"unicode"

	"internradar/internal/model"
)

// bayesModel is a multinomial naive-Bayes text classifier over unigram and
// bigram features with add-one smoothing. It is the last-resort fallback for
// titles that match no keyword rule.
type bayesModel struct {
	termCounts map[model.Category]map[string]int
	totalTerms map[model.Category]int
	docCounts  map[model.Category]int
	totalDocs  int
	vocab      map[string]struct{}
}

var bayesClasses = []model.Category{model.CategorySoftware, model.CategoryHardware}

func trainBayes(samples []trainingSample) *bayesModel {
	if len(samples) == 0 {
		return nil
	}

	m := &bayesModel{
		termCounts: make(map[model.Category]map[string]int),
		totalTerms: make(map[model.Category]int),
		docCounts:  make(map[model.Category]int),
		vocab:      make(map[string]struct{}),
	}
	for _, class := range bayesClasses {
		m.termCounts[class] = make(map[string]int)
	}

	for _, s := range samples {
		m.docCounts[s.category]++
		m.totalDocs++
		for _, term := range extractTerms(s.title) {
			m.termCounts[s.category][term]++
			m.totalTerms[s.category]++
			m.vocab[term] = struct{}{}
		}
	}
	return m
}

// predict returns the most likely category for the text. The second return
// is false when the text shares no vocabulary with the training set, in which
// case the caller should fall back to the default.
func (m *bayesModel) predict(text string) (model.Category, bool) {
	terms := extractTerms(text)

	known := 0
	for _, term := range terms {
		if _, ok := m.vocab[term]; ok {
			known++
		}
	}
	if known == 0 {
		return "", false
	}

	best := model.CategorySoftware
	bestScore := math.Inf(-1)
	vocabSize := float64(len(m.vocab))

	// Iterate in fixed class order so ties resolve to software.
	for _, class := range bayesClasses {
		score := math.Log(float64(m.docCounts[class]) / float64(m.totalDocs))
		denom := float64(m.totalTerms[class]) + vocabSize
		for _, term := range terms {
			count := float64(m.termCounts[class][term])
			score += math.Log((count + 1) / denom)
		}
		if score > bestScore {
			bestScore = score
			best = class
		}
	}
	return best, true
}

// extractTerms lowercases the text, tokenizes on non-alphanumeric runes, and
// returns unigrams plus adjacent-word bigrams.
func extractTerms(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+'
	})

	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
