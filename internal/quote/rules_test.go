package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		description string
		category    string
		hours       string
		complexity  Complexity
	}{
		{"dripping faucet", "My kitchen faucet is dripping and the handle is loose", CategoryPlumbing, "1-2 hours", ComplexityLow},
		{"remodel beats paint", "planning a full kitchen remodel, also want to paint", CategoryMajorConstruction, "Multiple days (40-80+ hours)", ComplexityHigh},
		{"new deck is major", "We want a new deck off the kitchen", CategoryMajorConstruction, "Multiple days (40-80+ hours)", ComplexityHigh},
		{"deck boards", "Need to repair a few deck boards", CategoryDeck, "4-8 hours", ComplexityMedium},
		{"deck generic", "Looking at a deck for the backyard", CategoryDeck, "2-5 days (16-40 hours)", ComplexityHigh},
		{"paint bedroom", "Paint the bedroom", CategoryPainting, "4-8 hours per room", ComplexityMedium},
		{"paint exterior", "paint the exterior of the house", CategoryPainting, "Multiple days (24-60+ hours)", ComplexityHigh},
		{"paint touch up", "touch up paint on the trim", CategoryPainting, "2-4 hours", ComplexityLow},
		{"large drywall", "large hole in the drywall", CategoryDrywall, "4-8 hours", ComplexityMedium},
		{"small hole", "small hole behind the door", CategoryDrywall, "1-3 hours", ComplexityLow},
		{"replace toilet", "replace the toilet", CategoryPlumbing, "2-4 hours", ComplexityMedium},
		{"ceiling fan", "install a ceiling fan", CategoryElectrical, "2-4 hours", ComplexityMedium},
		{"dead outlet", "outlet stopped working", CategoryElectrical, "1-2 hours", ComplexityLow},
		{"ikea", "Assemble an IKEA dresser", CategoryFurniture, "1-3 hours", ComplexityLow},
		{"sticky door", "front door sticks", CategoryDoorsWindows, "1-2 hours", ComplexityLow},
		{"replace window", "replace a cracked window", CategoryDoorsWindows, "3-6 hours", ComplexityMedium},
		{"bookshelf", "build a bookshelf", CategoryCarpentry, "2-6 hours", ComplexityMedium},
		{"unmatched", "something odd is going on", CategoryGeneral, "1-3 hours (estimate)", ComplexityMedium},
		{"empty", "", CategoryGeneral, "1-3 hours (estimate)", ComplexityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.description)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.hours, got.EstimatedHours)
			assert.Equal(t, tt.complexity, got.Complexity)
			assert.NotEmpty(t, got.Recommendation)
		})
	}
}

func TestAnalyze_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Analyze("fix the leaky pipe"), Analyze("FIX THE LEAKY PIPE"))
}

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{
		"major_construction",
		"deck",
		"painting",
		"drywall",
		"plumbing",
		"electrical",
		"furniture_assembly",
		"doors_windows",
		"carpentry",
	}, names)
}

func TestRulesReturnsCopy(t *testing.T) {
	r := Rules()
	r[0] = Rule{Name: "tampered"}
	assert.Equal(t, "major_construction", Rules()[0].Name)
}

func TestParseComplexity(t *testing.T) {
	c, ok := ParseComplexity(" high ")
	require.True(t, ok)
	assert.Equal(t, ComplexityHigh, c)

	_, ok = ParseComplexity("extreme")
	assert.False(t, ok)
}
