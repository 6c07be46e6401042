package classifier

import (
	"context"
	"fmt"
	"strings"
)

// Suggestion is a category picked by a model
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classifier asks a model to pick a category for a vendor
type Classifier interface {
	// Classify picks one of categories for vendorName
	Classify(ctx context.Context, vendorName string, categories []string) (*Suggestion, error)
	// Close releases resources held by the classifier
	Close() error
}

// categoryPrompt is shared by all model providers
const categoryPrompt = `You are classifying a business expense from an invoice.

Vendor name: %q

Pick exactly one category from this list:
%s

Return ONLY valid JSON in this exact format:
{
  "category": "Category Name",
  "confidence": 0
}

Important:
- The category must be copied exactly from the list above
- The confidence is a number from 0 to 100
- If no category fits, use "Uncategorized" with a low confidence
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// buildPrompt renders the prompt for a vendor and the allowed categories
func buildPrompt(vendorName string, categories []string) string {
	var list strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&list, "- %s\n", c)
	}
	return fmt.Sprintf(categoryPrompt, vendorName, strings.TrimRight(list.String(), "\n"))
}
