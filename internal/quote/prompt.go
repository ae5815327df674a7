package quote

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an estimating assistant for a one-person handyman business.
You read a homeowner's project description and classify it.

TIME ESTIMATES GUIDE:
- Small repairs (faucet, doorknob, small hole): 1-2 hours
- Medium repairs (toilet, ceiling fan, door): 2-4 hours
- Larger repairs (deck boards, room paint): 4-8 hours
- Big projects (deck rebuild, bathroom): 1-3 DAYS (8-24 hours)
- Major projects (full deck build, remodel): Multiple DAYS/WEEKS (40-100+ hours)

Respond with ONLY valid JSON in this exact format:
{
  "category": "one of: %s",
  "estimatedHours": "realistic time range like '2-4 hours' or '2-3 days (16-24 hours)'",
  "complexity": "Low, Medium, or High",
  "recommendation": "one helpful sentence for the homeowner"
}`

var promptCategories = []string{
	CategoryPlumbing,
	CategoryElectrical,
	CategoryDrywall,
	CategoryPainting,
	CategoryCarpentry,
	CategoryDeck,
	CategoryDoorsWindows,
	CategoryFurniture,
	CategoryGeneral,
	CategoryMajorConstruction,
}

// BuildSystemPrompt returns the instructions sent ahead of every description.
func BuildSystemPrompt(businessName string) string {
	prompt := fmt.Sprintf(systemPrompt, strings.Join(promptCategories, ", "))
	if name := strings.TrimSpace(businessName); name != "" {
		prompt = strings.Replace(prompt, "a one-person handyman business", name, 1)
	}
	return prompt
}

// BuildUserPrompt wraps the customer's description as data.
func BuildUserPrompt(description string) string {
	return fmt.Sprintf("Analyze this project: %q", strings.TrimSpace(description))
}
