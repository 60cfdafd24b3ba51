package classification

import (
	"github.com/m5cents/call-screening-backend/internal/domain/errors"
)

// Category is the closed set of caller intents the classifier may return.
// The category→outcome mapping in the routing engine switches exhaustively
// over these values; adding one forces a routing decision at compile time.
type Category string

const (
	CategorySales    Category = "Sales"
	CategorySupport  Category = "Support"
	CategoryPersonal Category = "Personal"
	CategoryUrgent   Category = "Urgent"
	CategorySpam     Category = "Spam"
)

// Categories lists every valid category, in prompt order.
func Categories() []Category {
	return []Category{CategorySales, CategorySupport, CategoryPersonal, CategoryUrgent, CategorySpam}
}

// ParseCategory validates a classifier-returned category string. Anything
// outside the closed set is rejected; callers substitute the safe default.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySales, CategorySupport, CategoryPersonal, CategoryUrgent, CategorySpam:
		return Category(s), nil
	default:
		return "", errors.NewValidationError("INVALID_CATEGORY", "category outside the fixed classification set")
	}
}

// Result is a validated classification of a caller's transcribed message.
// After adapter validation it is always well-formed.
type Result struct {
	Category Category `json:"category"`
	Summary  string   `json:"summary"`
}

// DefaultSummary is the fixed summary used whenever classification fails
// or returns a schema-invalid payload.
const DefaultSummary = "Unable to analyze caller message - defaulting to support"

// DefaultResult is the safe fallback substituted on any classification
// failure so a broken classifier can never block an in-progress call.
func DefaultResult() Result {
	return Result{
		Category: CategorySupport,
		Summary:  DefaultSummary,
	}
}
