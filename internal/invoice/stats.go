package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/intelligence"
)

// insightWindow is how many of the newest invoices the insights summary inspects
const insightWindow = 10

// autoCategorizedAbove is the category confidence an invoice needs to count as auto-categorized
const autoCategorizedAbove = 85

// DashboardStats summarizes the stored invoices for the admin dashboard
type DashboardStats struct {
	TotalInvoices        int     `json:"total_invoices"`
	PendingInvoices      int     `json:"pending_invoices"`
	ProcessingInvoices   int     `json:"processing_invoices"`
	ApprovedInvoices     int     `json:"approved_invoices"`
	RejectedInvoices     int     `json:"rejected_invoices"`
	TotalAmount          float64 `json:"total_amount"`
	MonthlyAmount        float64 `json:"monthly_amount"`
	ClientCount          int     `json:"client_count"`
	AverageOCRConfidence float64 `json:"average_ocr_confidence"`
}

// ReviewItem is an invoice the approval heuristic would not approve
type ReviewItem struct {
	InvoiceID  string  `json:"invoice_id"`
	VendorName string  `json:"vendor_name"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Insights is the AI summary shown above the invoice list
type Insights struct {
	SampleSize           int                   `json:"sample_size"`
	CategorizationRate   float64               `json:"categorization_rate"`
	DuplicateIDs         []string              `json:"duplicate_ids"`
	AverageOCRConfidence float64               `json:"average_ocr_confidence"`
	Forecast             intelligence.Forecast `json:"forecast"`
	NeedsReview          []ReviewItem          `json:"needs_review"`
}

// sumAmounts adds money values without accumulating float error
func sumAmounts(amounts []float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// average returns the mean of values rounded to places, or 0 for no values
func average(values []float64, places int32) float64 {
	if len(values) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Div(decimal.NewFromInt(int64(len(values)))).Round(places).Float64()
	return f
}

// DashboardStats computes invoice totals by status and amount
func (s *Service) DashboardStats() (*DashboardStats, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	clients, err := s.db.ListClients()
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	month := s.timeSource.Now().Format("2006-01")
	stats := &DashboardStats{
		TotalInvoices: len(invoices),
		ClientCount:   len(clients),
	}

	var all, monthly, confidences []float64
	for _, inv := range invoices {
		switch inv.Status {
		case StatusPending:
			stats.PendingInvoices++
		case StatusProcessing:
			stats.ProcessingInvoices++
		case StatusApproved:
			stats.ApprovedInvoices++
		case StatusRejected:
			stats.RejectedInvoices++
		}
		all = append(all, inv.TotalAmount)
		if len(inv.InvoiceDate) >= len(month) && inv.InvoiceDate[:len(month)] == month {
			monthly = append(monthly, inv.TotalAmount)
		}
		confidences = append(confidences, inv.OCRConfidence)
	}

	stats.TotalAmount = sumAmounts(all)
	stats.MonthlyAmount = sumAmounts(monthly)
	stats.AverageOCRConfidence = average(confidences, 1)
	return stats, nil
}

// Insights summarizes the heuristics over the newest invoices. An empty store
// yields a zero summary with the low-confidence forecast.
func (s *Service) Insights() (*Insights, error) {
	history, err := s.History()
	if err != nil {
		return nil, err
	}
	all := views(history)

	recent := all
	if len(recent) > insightWindow {
		recent = recent[:insightWindow]
	}

	out := &Insights{
		SampleSize:   len(recent),
		DuplicateIDs: []string{},
		NeedsReview:  []ReviewItem{},
		Forecast:     intelligence.ForecastNextMonth(all, ""),
	}
	if len(recent) == 0 {
		return out, nil
	}

	var autoCategorized int
	var confidences []float64
	for _, inv := range recent {
		if intelligence.Categorize(inv).Confidence > autoCategorizedAbove {
			autoCategorized++
		}
		if intelligence.DetectDuplicate(inv, all).IsDuplicate {
			out.DuplicateIDs = append(out.DuplicateIDs, inv.ID)
		}
		if suggestion := intelligence.SuggestApproval(inv, all); !suggestion.ShouldApprove {
			out.NeedsReview = append(out.NeedsReview, ReviewItem{
				InvoiceID:  inv.ID,
				VendorName: inv.VendorName,
				Reason:     suggestion.Reason,
				Confidence: suggestion.Confidence,
			})
		}
		confidences = append(confidences, inv.OCRConfidence)
	}

	rate := decimal.NewFromInt(int64(autoCategorized)).
		Div(decimal.NewFromInt(int64(len(recent)))).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	out.CategorizationRate, _ = rate.Float64()
	out.AverageOCRConfidence = average(confidences, 0)
	return out, nil
}
