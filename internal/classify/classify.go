// Package classify turns a company's free-text reply into a structured
// category. The core treats classification as an opaque capability: it may be
// backed by a local language model or by keyword heuristics, and callers must
// tolerate low-confidence results.
package classify

import (
	"context"

	"github.com/anhofmann/dsar/internal/request"
)

// Category is the structured reading of a reply
type Category string

const (
	// CategoryConfirmed: the company acknowledged the request and is processing it
	CategoryConfirmed Category = "confirmed"
	// CategoryCompleted: the company reports the request has been fulfilled
	CategoryCompleted Category = "completed"
	// CategoryRejected: the company refuses the request
	CategoryRejected Category = "rejected"
	// CategoryPartial: the company fulfilled only part of the request
	CategoryPartial Category = "partial"
	// CategoryNeedsClarification: the company asks for more information
	CategoryNeedsClarification Category = "needs_clarification"
	// CategoryOther: the reply could not be read
	CategoryOther Category = "other"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryConfirmed, CategoryCompleted, CategoryRejected,
		CategoryPartial, CategoryNeedsClarification, CategoryOther:
		return true
	}
	return false
}

// Classification is the ephemeral result of analyzing one reply. It is
// consumed once to drive a transition; an unhandled category only annotates
// the request.
type Classification struct {
	Category        Category       `json:"category"`
	Confidence      float64        `json:"confidence"`
	Summary         string         `json:"summary"`
	ActionRequired  bool           `json:"action_required"`
	SuggestedStatus request.Status `json:"suggested_status,omitempty"`
}

// Classifier reads a reply in the given language
type Classifier interface {
	Classify(ctx context.Context, text, language string) (*Classification, error)
}

// SuggestedStatusFor maps a category to the terminal status it implies, if
// any. Ambiguous categories map to no status at all.
func SuggestedStatusFor(c Category) (request.Status, bool) {
	switch c {
	case CategoryConfirmed:
		return request.StatusConfirmed, true
	case CategoryCompleted:
		return request.StatusCompleted, true
	case CategoryRejected:
		return request.StatusRejected, true
	}
	return "", false
}
