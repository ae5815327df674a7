package quote

import (
	"encoding/json"
	"strings"
)

// FallbackReason explains why a generative analysis was replaced by the
// keyword rules.
type FallbackReason string

const (
	ReasonNone         FallbackReason = ""
	ReasonBackendError FallbackReason = "backend_error"
	ReasonEmptyReply   FallbackReason = "empty_reply"
	ReasonNoJSON       FallbackReason = "no_json"
	ReasonInvalidJSON  FallbackReason = "invalid_json"
	ReasonInvalidShape FallbackReason = "invalid_shape"
	ReasonTimeout      FallbackReason = "timeout"
)

// firstJSONObject returns the first well-formed JSON object embedded in
// text. Leading and trailing prose or code fences are ignored.
func firstJSONObject(text string) (json.RawMessage, FallbackReason) {
	if !strings.Contains(text, "{") {
		return nil, ReasonNoJSON
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil && len(raw) > 0 && raw[0] == '{' {
			return raw, ReasonNone
		}
	}
	return nil, ReasonInvalidJSON
}

type wireAnalysis struct {
	Category       string `json:"category"`
	EstimatedHours string `json:"estimatedHours"`
	Complexity     string `json:"complexity"`
	Recommendation string `json:"recommendation"`
}

// parseReply turns a model reply into an Analysis, reporting the reason
// when the reply cannot be used.
func parseReply(text string) (Analysis, FallbackReason) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Analysis{}, ReasonEmptyReply
	}
	raw, reason := firstJSONObject(text)
	if reason != ReasonNone {
		return Analysis{}, reason
	}
	var wire wireAnalysis
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Analysis{}, ReasonInvalidShape
	}
	complexity, ok := ParseComplexity(wire.Complexity)
	if !ok {
		return Analysis{}, ReasonInvalidShape
	}
	a := Analysis{
		Category:       strings.TrimSpace(wire.Category),
		EstimatedHours: strings.TrimSpace(wire.EstimatedHours),
		Complexity:     complexity,
		Recommendation: strings.TrimSpace(wire.Recommendation),
	}
	if a.Category == "" || a.EstimatedHours == "" || a.Recommendation == "" {
		return Analysis{}, ReasonInvalidShape
	}
	return a, ReasonNone
}
