package intelligence

import (
	"fmt"
	"math"
	"strings"
)

const (
	duplicateConfidence   = 98
	forecastConfidence    = 75
	lowForecastConfidence = 30
	forecastWindow        = 3
	trendThreshold        = 10.0

	minOCRConfidence       = 80
	unrecognizedAmountCap  = 1000
	maxAmountDeviation     = 0.5
	defaultPaymentMethod   = "Credit Card"
	uncategorizedName      = "Uncategorized"
	vendorDetailsBase      = 60
	vendorDetailsPerMatch  = 5
	vendorDetailsMaxConfid = 95
)

// Categorize suggests a category from the vendor name. Rules are tested in
// declaration order and the first match wins, even when a later rule would
// also match.
func Categorize(invoice Invoice) CategorySuggestion {
	vendor := strings.ToLower(invoice.VendorName)
	for _, rule := range categoryRules {
		if containsAny(vendor, rule.Keywords) {
			return rule.Result
		}
	}
	return uncategorized
}

// sameVendor compares vendor names case-insensitively
func sameVendor(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

// DetectDuplicate looks for another invoice in history with the same vendor,
// the same invoice date and an amount within one currency unit.
func DetectDuplicate(invoice Invoice, history []Invoice) DuplicateResult {
	for _, existing := range history {
		if existing.ID == invoice.ID {
			continue
		}
		if math.Abs(existing.TotalAmount-invoice.TotalAmount) < 1 &&
			sameVendor(existing.VendorName, invoice.VendorName) &&
			existing.InvoiceDate == invoice.InvoiceDate {
			return DuplicateResult{
				IsDuplicate: true,
				DuplicateID: existing.ID,
				Confidence:  duplicateConfidence,
			}
		}
	}
	return DuplicateResult{IsDuplicate: false, Confidence: 0}
}

// RecognizeVendor maps a raw vendor name to its canonical form when the name
// contains one of a known vendor's aliases.
func RecognizeVendor(rawName string) VendorMatch {
	lower := strings.ToLower(strings.TrimSpace(rawName))
	for _, v := range knownVendors {
		if containsAny(lower, v.Aliases) {
			return VendorMatch{
				NormalizedName: v.Name,
				IsRecognized:   true,
				Suggestions:    []string{v.Name},
			}
		}
	}
	return VendorMatch{
		NormalizedName: rawName,
		IsRecognized:   false,
		Suggestions:    []string{},
	}
}

// SuggestPaymentTerms picks a payment term preset from the vendor name
func SuggestPaymentTerms(vendorName string) PaymentTerms {
	vendor := strings.ToLower(vendorName)
	for _, rule := range paymentTermRules {
		if containsAny(vendor, rule.Keywords) {
			return rule.Result
		}
	}
	return defaultPaymentTerms
}

// ForecastNextMonth projects next month's spend from the three most recent
// invoices, optionally restricted to one category. The invoices must be
// ordered newest first; the order is not checked.
func ForecastNextMonth(invoices []Invoice, categoryID string) Forecast {
	filtered := invoices
	if categoryID != "" {
		filtered = make([]Invoice, 0, len(invoices))
		for _, inv := range invoices {
			if inv.CategoryID == categoryID {
				filtered = append(filtered, inv)
			}
		}
	}

	if len(filtered) < forecastWindow {
		return Forecast{Amount: 0, Confidence: lowForecastConfidence, Trend: TrendStable}
	}

	recent := filtered[:forecastWindow]
	var sum float64
	for _, inv := range recent {
		sum += inv.TotalAmount
	}
	avg := sum / float64(len(recent))

	newest := recent[0].TotalAmount
	oldest := recent[len(recent)-1].TotalAmount

	trend := TrendStable
	change := percentChange(oldest, newest)
	if change > trendThreshold {
		trend = TrendIncreasing
	}
	if change < -trendThreshold {
		trend = TrendDecreasing
	}

	forecast := avg
	switch trend {
	case TrendIncreasing:
		forecast = avg * 1.1
	case TrendDecreasing:
		forecast = avg * 0.9
	}

	return Forecast{
		Amount:     math.Round(forecast),
		Confidence: forecastConfidence,
		Trend:      trend,
	}
}

// percentChange returns the change from oldest to newest in percent. A zero
// baseline yields +Inf for a positive newest value and 0 otherwise.
func percentChange(oldest, newest float64) float64 {
	if oldest == 0 {
		if newest > 0 {
			return math.Inf(1)
		}
		if newest < 0 {
			return math.Inf(-1)
		}
		return 0
	}
	return (newest - oldest) / oldest * 100
}

// SuggestApproval runs the approval checks in priority order and returns on
// the first one that vetoes. The order of the checks is part of the result:
// a duplicate is always reported before low OCR confidence.
func SuggestApproval(invoice Invoice, history []Invoice) ApprovalSuggestion {
	if dup := DetectDuplicate(invoice, history); dup.IsDuplicate {
		return ApprovalSuggestion{
			ShouldApprove: false,
			Reason:        fmt.Sprintf("Possible duplicate of invoice #%s", dup.DuplicateID),
			Confidence:    dup.Confidence,
		}
	}

	if invoice.OCRConfidence < minOCRConfidence {
		return ApprovalSuggestion{
			ShouldApprove: false,
			Reason:        "Low OCR confidence - requires manual review",
			Confidence:    90,
		}
	}

	if !RecognizeVendor(invoice.VendorName).IsRecognized && invoice.TotalAmount > unrecognizedAmountCap {
		return ApprovalSuggestion{
			ShouldApprove: false,
			Reason:        "Unrecognized vendor with high amount - requires verification",
			Confidence:    85,
		}
	}

	var sum float64
	var count int
	for _, inv := range history {
		if sameVendor(inv.VendorName, invoice.VendorName) {
			sum += inv.TotalAmount
			count++
		}
	}
	// A zero average has no meaningful deviation
	if count > 0 && sum != 0 {
		avg := sum / float64(count)
		deviation := math.Abs(invoice.TotalAmount-avg) / avg
		if deviation > maxAmountDeviation {
			return ApprovalSuggestion{
				ShouldApprove: false,
				Reason:        fmt.Sprintf("Amount is %d%% different from average for this vendor", int(math.Round(deviation*100))),
				Confidence:    88,
			}
		}
	}

	return ApprovalSuggestion{
		ShouldApprove: true,
		Reason:        "All automated checks passed",
		Confidence:    92,
	}
}

// AutoFillVendorDetails suggests field values for a vendor from its past
// invoices. Confidence grows by five points per matching invoice up to 95.
func AutoFillVendorDetails(vendorName string, history []Invoice) VendorDetails {
	var matches []Invoice
	for _, inv := range history {
		if sameVendor(inv.VendorName, vendorName) {
			matches = append(matches, inv)
		}
	}

	if len(matches) == 0 {
		return VendorDetails{Confidence: 0}
	}

	// Counts are kept alongside first-seen order so ties resolve to the
	// category seen first.
	counts := make(map[string]int)
	var order []string
	var sum float64
	for _, inv := range matches {
		name := inv.CategoryName
		if name == "" {
			name = uncategorizedName
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
		sum += inv.TotalAmount
	}

	var mostCommon string
	var maxCount int
	for _, name := range order {
		if counts[name] > maxCount {
			maxCount = counts[name]
			mostCommon = name
		}
	}

	avg := math.Round(sum / float64(len(matches)))
	confidence := math.Min(vendorDetailsMaxConfid, float64(vendorDetailsBase+vendorDetailsPerMatch*len(matches)))

	return VendorDetails{
		SuggestedCategory:      mostCommon,
		SuggestedPaymentMethod: defaultPaymentMethod,
		AverageAmount:          &avg,
		Confidence:             confidence,
	}
}
