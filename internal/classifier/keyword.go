package classifier

import (
	"fmt"
	"strings"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
)

// Match is the outcome of keyword classification: the winning
// department and how many of its keywords the text contained.
type Match struct {
	DepartmentID string
	Count        int
	Confidence   domain.Confidence
}

// Score counts how many of the department's keywords occur in text.
// Matching is case-insensitive substring containment; pure, no I/O.
func Score(text string, dept registry.Department) int {
	lower := strings.ToLower(text)
	score := 0
	for _, kw := range dept.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			score++
		}
	}
	return score
}

// ClassifyKeywords scores the text against every registered department
// and keeps the strictly highest score. Ties keep the first department
// in registry order; a zero score across all departments means no match.
func ClassifyKeywords(text string) (Match, bool) {
	best := Match{}
	for _, dept := range registry.All() {
		score := Score(text, dept)
		if score > best.Count {
			best = Match{DepartmentID: dept.ID, Count: score}
		}
	}
	if best.Count == 0 {
		return Match{}, false
	}
	best.Confidence = keywordConfidence(best.Count)
	return best, true
}

func keywordConfidence(count int) domain.Confidence {
	switch {
	case count >= 3:
		return domain.ConfidenceHigh
	case count == 2:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// keywordResult converts a keyword match into a full classification
// result, with the same wording the remote path uses for its reason.
func keywordResult(m Match) domain.ClassificationResult {
	plural := ""
	if m.Count > 1 {
		plural = "es"
	}
	return domain.ClassificationResult{
		IsValid:      true,
		DepartmentID: m.DepartmentID,
		Reason:       fmt.Sprintf("Detected based on %d keyword match%s in your description", m.Count, plural),
		Confidence:   m.Confidence,
	}
}
