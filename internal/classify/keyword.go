package classify

import (
	"context"
	"strings"
)

// KeywordClassifier reads replies with fixed keyword lists. It is the
// fallback when no language model is reachable and covers the German and
// English phrasing companies actually use.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the rule-based classifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	completedKeywords = []string{
		"gelöscht", "entfernt", "vollständig gelöscht",
		"deleted", "removed", "completely deleted", "erasure has been completed",
	}
	// Refusals are checked before acknowledgements: a rejection letter often
	// also "confirms receipt".
	rejectedKeywords = []string{
		"ablehnen", "abgelehnt", "nicht möglich", "nicht erfüllen",
		"aufbewahrungspflicht", "aufbewahrungspflichten",
		"gesetzliche aufbewahrungspflicht", "gesetzlichen aufbewahrungspflichten",
		"reject", "rejected", "cannot", "can not", "unable",
		"legal obligation", "legal obligations",
		"retention obligation", "retention obligations",
	}
	confirmedKeywords = []string{
		"bestätigen", "erhalten", "bearbeiten", "prüfen",
		"acknowledge", "received", "processing",
	}
	clarificationKeywords = []string{
		"weitere informationen", "identifizierung", "nachweis",
		"more information", "identification", "proof",
	}
)

// Classify categorizes the reply text. The language tag is ignored; both
// keyword sets are always consulted.
func (k *KeywordClassifier) Classify(_ context.Context, text, _ string) (*Classification, error) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return &Classification{
			Category:       CategoryOther,
			Confidence:     1.0,
			Summary:        "empty reply",
			ActionRequired: true,
		}, nil
	}

	switch {
	case containsAny(lower, completedKeywords):
		return classification(CategoryCompleted, 0.7, "company reports the data has been deleted", false), nil
	case containsAny(lower, rejectedKeywords):
		return classification(CategoryRejected, 0.7, "company rejects the request", true), nil
	case containsAny(lower, confirmedKeywords):
		return classification(CategoryConfirmed, 0.6, "company acknowledged the request", true), nil
	case containsAny(lower, clarificationKeywords):
		return classification(CategoryNeedsClarification, 0.6, "company asks for more information", true), nil
	}

	return classification(CategoryOther, 0.3, "reply could not be categorized, manual review needed", true), nil
}

func classification(cat Category, confidence float64, summary string, actionRequired bool) *Classification {
	c := &Classification{
		Category:       cat,
		Confidence:     confidence,
		Summary:        summary,
		ActionRequired: actionRequired,
	}
	if status, ok := SuggestedStatusFor(cat); ok {
		c.SuggestedStatus = status
	}
	return c
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
