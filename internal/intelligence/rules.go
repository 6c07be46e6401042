package intelligence

import "strings"

// CategoryRule maps vendor-name keywords to a category suggestion
type CategoryRule struct {
	Keywords []string           `json:"keywords"`
	Result   CategorySuggestion `json:"result"`
}

// PaymentTermRule maps vendor-name keywords to a payment term preset
type PaymentTermRule struct {
	Keywords []string     `json:"keywords"`
	Result   PaymentTerms `json:"result"`
}

// KnownVendor is a canonical vendor name and the aliases that identify it
type KnownVendor struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// categoryRules are evaluated in order; the first match wins.
var categoryRules = []CategoryRule{
	{
		Keywords: []string{"staples", "office"},
		Result:   CategorySuggestion{CategoryID: "1", CategoryName: "Office Supplies", Confidence: 95},
	},
	{
		Keywords: []string{"microsoft", "adobe", "software"},
		Result:   CategorySuggestion{CategoryID: "2", CategoryName: "Software & Technology", Confidence: 92},
	},
	{
		Keywords: []string{"google", "facebook", "meta"},
		Result:   CategorySuggestion{CategoryID: "3", CategoryName: "Marketing", Confidence: 90},
	},
	{
		Keywords: []string{"airline", "hotel", "uber", "lyft"},
		Result:   CategorySuggestion{CategoryID: "4", CategoryName: "Travel", Confidence: 88},
	},
	{
		Keywords: []string{"electric", "water", "gas"},
		Result:   CategorySuggestion{CategoryID: "5", CategoryName: "Utilities", Confidence: 93},
	},
	{
		Keywords: []string{"consulting", "legal", "accounting"},
		Result:   CategorySuggestion{CategoryID: "6", CategoryName: "Professional Services", Confidence: 85},
	},
}

var uncategorized = CategorySuggestion{CategoryID: "10", CategoryName: "Uncategorized", Confidence: 50}

var paymentTermRules = []PaymentTermRule{
	{
		Keywords: []string{"microsoft", "adobe", "software"},
		Result:   PaymentTerms{Terms: "Immediate", DaysUntilDue: 0, Confidence: 85},
	},
	{
		Keywords: []string{"electric", "water", "gas", "utility"},
		Result:   PaymentTerms{Terms: "Net 30", DaysUntilDue: 30, Confidence: 90},
	},
	{
		Keywords: []string{"consulting", "legal", "accounting"},
		Result:   PaymentTerms{Terms: "Net 15", DaysUntilDue: 15, Confidence: 80},
	},
}

var defaultPaymentTerms = PaymentTerms{Terms: "Net 30", DaysUntilDue: 30, Confidence: 60}

var knownVendors = []KnownVendor{
	{Name: "Staples Inc.", Aliases: []string{"staples", "staples inc", "staples office", "staples.com"}},
	{Name: "Microsoft Corporation", Aliases: []string{"microsoft", "msft", "microsoft corp", "microsoft.com"}},
	{Name: "Adobe Systems", Aliases: []string{"adobe", "adobe inc", "adobe systems", "adobe.com"}},
	{Name: "Amazon Web Services", Aliases: []string{"aws", "amazon web services", "amazon aws"}},
	{Name: "Google LLC", Aliases: []string{"google", "google llc", "google inc", "google.com"}},
	{Name: "AT&T", Aliases: []string{"att", "at&t", "at & t"}},
	{Name: "Verizon", Aliases: []string{"verizon", "verizon wireless"}},
}

// containsAny reports whether s contains any of the substrings
func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CategoryRules returns a copy of the categorization rules in evaluation order
func CategoryRules() []CategoryRule {
	rules := make([]CategoryRule, len(categoryRules))
	for i, r := range categoryRules {
		rules[i] = CategoryRule{Keywords: append([]string(nil), r.Keywords...), Result: r.Result}
	}
	return rules
}

// PaymentTermRules returns a copy of the payment term rules in evaluation order
func PaymentTermRules() []PaymentTermRule {
	rules := make([]PaymentTermRule, len(paymentTermRules))
	for i, r := range paymentTermRules {
		rules[i] = PaymentTermRule{Keywords: append([]string(nil), r.Keywords...), Result: r.Result}
	}
	return rules
}

// KnownVendors returns a copy of the vendor normalization table in lookup order
func KnownVendors() []KnownVendor {
	vendors := make([]KnownVendor, len(knownVendors))
	for i, v := range knownVendors {
		vendors[i] = KnownVendor{Name: v.Name, Aliases: append([]string(nil), v.Aliases...)}
	}
	return vendors
}

// Uncategorized returns the suggestion used when no category rule matches
func Uncategorized() CategorySuggestion {
	return uncategorized
}
