package invoice

import (
	"errors"
	"time"

	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/intelligence"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request fails validation
	ErrInvalidInput = errors.New("invalid input")
)

// Status is the workflow state of an invoice
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusProcessing:
		return true
	}
	return false
}

// LineItem is a single line on an invoice
type LineItem struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	UnitPrice   float64 `json:"unit_price" yaml:"unit_price"`
	Amount      float64 `json:"amount" yaml:"amount"`
	TaxRate     float64 `json:"tax_rate,omitempty" yaml:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount,omitempty" yaml:"tax_amount"`
}

// Invoice represents an invoice with its extracted data and workflow state
type Invoice struct {
	ID            string     `json:"id" yaml:"id"`
	InvoiceNumber string     `json:"invoice_number" yaml:"invoice_number"`
	VendorName    string     `json:"vendor_name" yaml:"vendor_name"`
	VendorEmail   string     `json:"vendor_email,omitempty" yaml:"vendor_email"`
	VendorPhone   string     `json:"vendor_phone,omitempty" yaml:"vendor_phone"`
	VendorAddress string     `json:"vendor_address,omitempty" yaml:"vendor_address"`
	InvoiceDate   string     `json:"invoice_date" yaml:"invoice_date"` // YYYY-MM-DD
	DueDate       string     `json:"due_date,omitempty" yaml:"due_date"`
	TotalAmount   float64    `json:"total_amount" yaml:"total_amount"`
	Currency      string     `json:"currency" yaml:"currency"`
	TaxAmount     float64    `json:"tax_amount,omitempty" yaml:"tax_amount"`
	Subtotal      float64    `json:"subtotal,omitempty" yaml:"subtotal"`
	Status        Status     `json:"status" yaml:"status"`
	OCRConfidence float64    `json:"ocr_confidence" yaml:"ocr_confidence"`
	ClientID      string     `json:"client_id,omitempty" yaml:"client_id"`
	ClientName    string     `json:"client_name,omitempty" yaml:"client_name"`
	CategoryID    string     `json:"category_id,omitempty" yaml:"category_id"`
	CategoryName  string     `json:"category_name,omitempty" yaml:"category_name"`
	Items         []LineItem `json:"items" yaml:"items"`
	FileName      string     `json:"file_name,omitempty" yaml:"-"`
	FileType      string     `json:"file_type,omitempty" yaml:"-"`
	PreviewName   string     `json:"preview_name,omitempty" yaml:"-"`
	Notes         string     `json:"notes,omitempty" yaml:"notes"`
	ApprovedBy    string     `json:"approved_by,omitempty" yaml:"-"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty" yaml:"-"`
	CreatedAt     time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"-"`
}

// View returns the fields the intelligence heuristics read
func (i *Invoice) View() intelligence.Invoice {
	return intelligence.Invoice{
		ID:            i.ID,
		VendorName:    i.VendorName,
		InvoiceDate:   i.InvoiceDate,
		TotalAmount:   i.TotalAmount,
		Currency:      i.Currency,
		OCRConfidence: i.OCRConfidence,
		CategoryID:    i.CategoryID,
		CategoryName:  i.CategoryName,
	}
}

// views converts invoices for the intelligence heuristics, keeping order
func views(invoices []*Invoice) []intelligence.Invoice {
	out := make([]intelligence.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.View())
	}
	return out
}

// Client is a customer of the firm whose invoices are processed
type Client struct {
	ID                        string    `json:"id" yaml:"id"`
	Name                      string    `json:"name" yaml:"name"`
	Email                     string    `json:"email" yaml:"email"`
	Phone                     string    `json:"phone,omitempty" yaml:"phone"`
	CompanyName               string    `json:"company_name,omitempty" yaml:"company_name"`
	Address                   string    `json:"address,omitempty" yaml:"address"`
	EmailMonitoringEnabled    bool      `json:"email_monitoring_enabled" yaml:"email_monitoring_enabled"`
	WhatsAppMonitoringEnabled bool      `json:"whatsapp_monitoring_enabled" yaml:"whatsapp_monitoring_enabled"`
	Status                    string    `json:"status" yaml:"status"` // active or inactive
	CreatedAt                 time.Time `json:"created_at" yaml:"-"`
}

// ClientSummary is a client with figures derived from its invoices
type ClientSummary struct {
	Client
	InvoiceCount int     `json:"invoice_count"`
	TotalSpent   float64 `json:"total_spent"`
}

// Category is an expense category
type Category struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description"`
	Keywords    []string  `json:"keywords" yaml:"keywords"`
	AccountCode string    `json:"account_code,omitempty" yaml:"account_code"`
	ParentID    string    `json:"parent_id,omitempty" yaml:"parent_id"`
	Color       string    `json:"color,omitempty" yaml:"color"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}

// Filter narrows ListInvoices. Zero values match everything.
type Filter struct {
	Statuses   []Status
	ClientID   string
	CategoryID string
	MinAmount  *float64
	MaxAmount  *float64
	Search     string
}

// Analysis bundles every heuristic result for one invoice
type Analysis struct {
	InvoiceID    string                          `json:"invoice_id"`
	Category     intelligence.CategorySuggestion `json:"category"`
	Duplicate    intelligence.DuplicateResult    `json:"duplicate"`
	Vendor       intelligence.VendorMatch        `json:"vendor"`
	PaymentTerms intelligence.PaymentTerms       `json:"payment_terms"`
	Approval     intelligence.ApprovalSuggestion `json:"approval"`
}
