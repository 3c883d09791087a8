package model

import "strings"

var (
	highPriorityPatterns   = []string{"urgent", "asap", "immediately", "due today", "deadline", "important"}
	mediumPriorityPatterns = []string{"schedule", "later", "tomorrow", "soon"}
)

// SuggestPriority classifies free text by keyword. High patterns win over
// medium patterns; anything else is low.
func SuggestPriority(text string) Priority {
	t := strings.ToLower(text)
	if containsAny(t, highPriorityPatterns) {
		return PriorityHigh
	}
	if containsAny(t, mediumPriorityPatterns) {
		return PriorityMedium
	}
	return PriorityLow
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
