package quote

import "strings"

// Rule pairs a predicate over the lower-cased description with the estimate
// it produces. Rules are evaluated in order and the first match wins, so
// broader-scope rules must precede the trade rules they overlap with.
type Rule struct {
	Name   string
	Match  func(desc string) bool
	Result func(desc string) Analysis
}

// band is one pre-authored estimate, chosen when any qualifier appears in
// the description. A band without qualifiers always applies.
type band struct {
	qualifiers []string
	analysis   Analysis
}

func keywordRule(name string, keywords []string, bands ...band) Rule {
	return Rule{
		Name:  name,
		Match: func(desc string) bool { return containsAny(desc, keywords...) },
		Result: func(desc string) Analysis {
			for _, b := range bands {
				if len(b.qualifiers) == 0 || containsAny(desc, b.qualifiers...) {
					return b.analysis
				}
			}
			return bands[len(bands)-1].analysis
		},
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var generalHandyman = Analysis{
	Category:       CategoryGeneral,
	EstimatedHours: "1-3 hours (estimate)",
	Complexity:     ComplexityMedium,
	Recommendation: "Please add a few more details about the project so we can give you an accurate estimate.",
}

var rules = []Rule{
	keywordRule("major_construction",
		[]string{"rebuild", "remodel", "renovation", "new deck", "build deck", "bathroom remodel", "kitchen remodel", "addition"},
		band{analysis: Analysis{
			Category:       CategoryMajorConstruction,
			EstimatedHours: "Multiple days (40-80+ hours)",
			Complexity:     ComplexityHigh,
			Recommendation: "This is a significant project that needs an in-person assessment before we can provide a detailed quote.",
		}},
	),
	keywordRule("deck",
		[]string{"deck"},
		band{qualifiers: []string{"repair", "board", "plank", "railing"}, analysis: Analysis{
			Category:       CategoryDeck,
			EstimatedHours: "4-8 hours",
			Complexity:     ComplexityMedium,
			Recommendation: "Deck repairs depend on how far the damage goes. Photos of the affected area help us estimate accurately.",
		}},
		band{analysis: Analysis{
			Category:       CategoryDeck,
			EstimatedHours: "2-5 days (16-40 hours)",
			Complexity:     ComplexityHigh,
			Recommendation: "Deck projects need an on-site visit to measure and evaluate the scope before a detailed quote.",
		}},
	),
	keywordRule("painting",
		[]string{"paint", "painting"},
		band{qualifiers: []string{"room", "bedroom", "living"}, analysis: Analysis{
			Category:       CategoryPainting,
			EstimatedHours: "4-8 hours per room",
			Complexity:     ComplexityMedium,
			Recommendation: "Time depends on room size, prep work and number of coats. Let us know if ceilings or trim are included.",
		}},
		band{qualifiers: []string{"house", "exterior", "whole"}, analysis: Analysis{
			Category:       CategoryPainting,
			EstimatedHours: "Multiple days (24-60+ hours)",
			Complexity:     ComplexityHigh,
			Recommendation: "Large painting projects need an on-site estimate of prep work, surface condition and square footage.",
		}},
		band{analysis: Analysis{
			Category:       CategoryPainting,
			EstimatedHours: "2-4 hours",
			Complexity:     ComplexityLow,
			Recommendation: "Touch-ups and small painting jobs are straightforward. Roughly how large is the area?",
		}},
	),
	keywordRule("drywall",
		[]string{"drywall", "hole", "wall damage"},
		band{qualifiers: []string{"large", "big", "multiple"}, analysis: Analysis{
			Category:       CategoryDrywall,
			EstimatedHours: "4-8 hours",
			Complexity:     ComplexityMedium,
			Recommendation: "Larger drywall repairs need proper patching and texture matching. Photos will help assess the scope.",
		}},
		band{analysis: Analysis{
			Category:       CategoryDrywall,
			EstimatedHours: "1-3 hours",
			Complexity:     ComplexityLow,
			Recommendation: "Small drywall repairs are quick fixes. Roughly how big is the damaged area?",
		}},
	),
	keywordRule("plumbing",
		[]string{"plumb", "faucet", "toilet", "leak", "drain", "pipe"},
		band{qualifiers: []string{"replace", "install", "new"}, analysis: Analysis{
			Category:       CategoryPlumbing,
			EstimatedHours: "2-4 hours",
			Complexity:     ComplexityMedium,
			Recommendation: "Fixture replacements usually take a few hours. Is there existing plumbing in place?",
		}},
		band{analysis: Analysis{
			Category:       CategoryPlumbing,
			EstimatedHours: "1-2 hours",
			Complexity:     ComplexityLow,
			Recommendation: "Minor plumbing fixes are usually quick. Where exactly is the issue located?",
		}},
	),
	keywordRule("electrical",
		[]string{"electric", "outlet", "switch", "light", "fan", "fixture"},
		band{qualifiers: []string{"install", "new", "ceiling fan"}, analysis: Analysis{
			Category:       CategoryElectrical,
			EstimatedHours: "2-4 hours",
			Complexity:     ComplexityMedium,
			Recommendation: "New installations need a check of the existing wiring. Is there already a fixture or outlet at that spot?",
		}},
		band{analysis: Analysis{
			Category:       CategoryElectrical,
			EstimatedHours: "1-2 hours",
			Complexity:     ComplexityLow,
			Recommendation: "Simple electrical repairs are straightforward. Is the problem with one fixture or several?",
		}},
	),
	keywordRule("furniture_assembly",
		[]string{"assemble", "assembly", "ikea", "furniture"},
		band{analysis: Analysis{
			Category:       CategoryFurniture,
			EstimatedHours: "1-3 hours",
			Complexity:     ComplexityLow,
			Recommendation: "Assembly time varies by item. Which pieces need to be put together?",
		}},
	),
	keywordRule("doors_windows",
		[]string{"door", "window"},
		band{qualifiers: []string{"install", "replace", "new"}, analysis: Analysis{
			Category:       CategoryDoorsWindows,
			EstimatedHours: "3-6 hours",
			Complexity:     ComplexityMedium,
			Recommendation: "Installation time depends on the type and whether the frame needs modification. What kind of door or window is it?",
		}},
		band{analysis: Analysis{
			Category:       CategoryDoorsWindows,
			EstimatedHours: "1-2 hours",
			Complexity:     ComplexityLow,
			Recommendation: "Door adjustments and minor repairs are quick fixes. What is the specific issue?",
		}},
	),
	keywordRule("carpentry",
		[]string{"carpentry", "wood", "shelf", "cabinet", "trim", "baseboard"},
		band{analysis: Analysis{
			Category:       CategoryCarpentry,
			EstimatedHours: "2-6 hours",
			Complexity:     ComplexityMedium,
			Recommendation: "Carpentry work varies a lot by scope. What needs to be built or repaired?",
		}},
	),
}

// Rules returns the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Analyze classifies description with the keyword rules alone. It needs no
// network access and always returns a result; unmatched text yields the
// general handyman estimate asking for more detail.
func Analyze(description string) Analysis {
	a, _ := analyzeRules(description)
	return a
}

// analyzeRules also reports the name of the matching rule ("" for the
// fallthrough).
func analyzeRules(description string) (Analysis, string) {
	desc := strings.ToLower(description)
	for _, r := range rules {
		if r.Match(desc) {
			return r.Result(desc), r.Name
		}
	}
	return generalHandyman, ""
}
