package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseSuggestion extracts a Suggestion from a model reply. The category has
// to be one of the allowed names (matched case-insensitively and returned in
// its canonical spelling); confidence is clamped to [0, 100].
func parseSuggestion(text string, allowed []string) (*Suggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	name := strings.TrimSpace(s.Category)
	canonical := ""
	for _, c := range allowed {
		if strings.EqualFold(c, name) {
			canonical = c
			break
		}
	}
	if canonical == "" {
		return nil, fmt.Errorf("category %q is not one of the allowed categories", name)
	}
	s.Category = canonical

	switch {
	case s.Confidence < 0:
		s.Confidence = 0
	case s.Confidence > 100:
		s.Confidence = 100
	}

	return &s, nil
}
