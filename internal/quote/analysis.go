// Package quote turns a free-text project description into a rough
// category, time estimate and complexity for the contact form's quote helper.
package quote

import "strings"

// Complexity grades how involved a project is.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// ParseComplexity accepts any casing of the three grades.
func ParseComplexity(s string) (Complexity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ComplexityLow, true
	case "medium":
		return ComplexityMedium, true
	case "high":
		return ComplexityHigh, true
	default:
		return "", false
	}
}

// Trade categories produced by the keyword rules.
const (
	CategoryMajorConstruction = "Major Construction"
	CategoryDeck              = "Deck & Outdoor"
	CategoryPainting          = "Painting"
	CategoryDrywall           = "Drywall"
	CategoryPlumbing          = "Plumbing"
	CategoryElectrical        = "Electrical"
	CategoryFurniture         = "Furniture Assembly"
	CategoryDoorsWindows      = "Doors & Windows"
	CategoryCarpentry         = "Carpentry"
	CategoryGeneral           = "General Handyman"
)

// Analysis is the structured estimate shown to the customer and attached
// to the lead.
type Analysis struct {
	Category       string     `json:"category"`
	EstimatedHours string     `json:"estimatedHours"`
	Complexity     Complexity `json:"complexity"`
	Recommendation string     `json:"recommendation"`
}

// IsZero reports whether no field is set.
func (a Analysis) IsZero() bool {
	return a == Analysis{}
}
