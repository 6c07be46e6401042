// Package intelligence holds the heuristic invoice helpers: categorization,
// duplicate detection, vendor normalization, payment terms, expense forecasting,
// approval suggestions and vendor auto-fill. Every function is pure and reads
// only its arguments.
package intelligence

// Invoice is the subset of invoice fields the heuristics read
type Invoice struct {
	ID            string
	VendorName    string
	InvoiceDate   string // compared as an exact string, normally YYYY-MM-DD
	TotalAmount   float64
	Currency      string
	OCRConfidence float64 // percentage, 0-100
	CategoryID    string
	CategoryName  string
}

// Trend describes the direction of recent spending
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// CategorySuggestion is the result of Categorize
type CategorySuggestion struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"`
}

// DuplicateResult is the result of DetectDuplicate
type DuplicateResult struct {
	IsDuplicate bool    `json:"is_duplicate"`
	DuplicateID string  `json:"duplicate_id,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// VendorMatch is the result of RecognizeVendor
type VendorMatch struct {
	NormalizedName string   `json:"normalized_name"`
	IsRecognized   bool     `json:"is_recognized"`
	Suggestions    []string `json:"suggestions"`
}

// PaymentTerms is the result of SuggestPaymentTerms
type PaymentTerms struct {
	Terms        string  `json:"terms"`
	DaysUntilDue int     `json:"days_until_due"`
	Confidence   float64 `json:"confidence"`
}

// Forecast is the result of ForecastNextMonth
type Forecast struct {
	Amount     float64 `json:"forecast"`
	Confidence float64 `json:"confidence"`
	Trend      Trend   `json:"trend"`
}

// ApprovalSuggestion is the result of SuggestApproval
type ApprovalSuggestion struct {
	ShouldApprove bool    `json:"should_approve"`
	Reason        string  `json:"reason"`
	Confidence    float64 `json:"confidence"`
}

// VendorDetails is the result of AutoFillVendorDetails. The optional fields
// are empty when no historical invoice matched the vendor.
type VendorDetails struct {
	SuggestedCategory      string   `json:"suggested_category,omitempty"`
	SuggestedPaymentMethod string   `json:"suggested_payment_method,omitempty"`
	AverageAmount          *float64 `json:"average_amount,omitempty"`
	Confidence             float64  `json:"confidence"`
}
