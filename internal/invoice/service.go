package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/classifier"
	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/intelligence"
	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/preview"
)

const dateLayout = "2006-01-02"

// IDGenerator generates unique IDs for records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles invoice, client and category operations and feeds stored
// history to the intelligence heuristics
type Service struct {
	db          DB
	storage     Storage
	renderer    preview.Renderer
	classifier  classifier.Classifier
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUIDs and the wall clock. renderer and
// classifier may be nil to disable previews and model-backed categorization.
func NewService(db DB, storage Storage, renderer preview.Renderer, cls classifier.Classifier) *Service {
	return NewServiceWithDeps(db, storage, renderer, cls, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, renderer preview.Renderer, cls classifier.Classifier, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		renderer:    renderer,
		classifier:  cls,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename keeps alphanumerics, spaces, hyphens and underscores and
// truncates the base name to 50 characters
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "invoice"
	}
	return base + ext
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// validateInvoice checks the fields every stored invoice must satisfy
func validateInvoice(inv *Invoice) error {
	if strings.TrimSpace(inv.VendorName) == "" {
		return invalid("vendor name is required")
	}
	if inv.TotalAmount < 0 {
		return invalid("total amount must not be negative")
	}
	if inv.OCRConfidence < 0 || inv.OCRConfidence > 100 {
		return invalid("ocr confidence must be between 0 and 100")
	}
	if inv.InvoiceDate != "" {
		if _, err := time.Parse(dateLayout, inv.InvoiceDate); err != nil {
			return invalid("invoice date %q must be YYYY-MM-DD", inv.InvoiceDate)
		}
	}
	if inv.DueDate != "" {
		if _, err := time.Parse(dateLayout, inv.DueDate); err != nil {
			return invalid("due date %q must be YYYY-MM-DD", inv.DueDate)
		}
	}
	if !inv.Status.Valid() {
		return invalid("unknown status %q", inv.Status)
	}
	return nil
}

// CreateInvoice stores a new invoice. A missing category is filled in from
// the vendor name.
func (s *Service) CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	now := s.timeSource.Now()

	created := *inv
	created.ID = s.idGenerator.Generate()
	created.CreatedAt = now
	created.UpdatedAt = now
	created.FileName, created.FileType, created.PreviewName = "", "", ""
	created.ApprovedBy, created.ApprovedAt = "", nil
	if created.Status == "" {
		created.Status = StatusPending
	}
	if created.Currency == "" {
		created.Currency = "USD"
	}
	if created.Items == nil {
		created.Items = []LineItem{}
	}

	if err := validateInvoice(&created); err != nil {
		return nil, err
	}
	if err := s.resolveRelations(&created); err != nil {
		return nil, err
	}
	if created.CategoryID == "" {
		if err := s.categorize(ctx, &created); err != nil {
			return nil, err
		}
	}

	if err := s.db.SaveInvoice(&created); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}
	slog.Info("Invoice created", "id", created.ID, "vendor", created.VendorName, "category", created.CategoryName)
	return &created, nil
}

// resolveRelations fills client and category names from their IDs
func (s *Service) resolveRelations(inv *Invoice) error {
	if inv.ClientID != "" {
		client, err := s.db.GetClient(inv.ClientID)
		if err != nil {
			return invalid("client %s does not exist", inv.ClientID)
		}
		inv.ClientName = client.Name
	} else {
		inv.ClientName = ""
	}
	if inv.CategoryID != "" {
		category, err := s.db.GetCategory(inv.CategoryID)
		if err == nil {
			inv.CategoryName = category.Name
			return nil
		}
		name, ok := builtinCategoryName(inv.CategoryID)
		if !ok {
			return invalid("category %s does not exist", inv.CategoryID)
		}
		inv.CategoryName = name
	}
	return nil
}

// builtinCategoryName looks up a category ID produced by the heuristic rules
func builtinCategoryName(id string) (string, bool) {
	if u := intelligence.Uncategorized(); u.CategoryID == id {
		return u.CategoryName, true
	}
	for _, rule := range intelligence.CategoryRules() {
		if rule.Result.CategoryID == id {
			return rule.Result.CategoryName, true
		}
	}
	return "", false
}

// categorize assigns a category from the heuristic rules, asking the
// classifier only when the rules leave the invoice uncategorized
func (s *Service) categorize(ctx context.Context, inv *Invoice) error {
	categories, err := s.db.ListCategories()
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}

	suggestion := intelligence.Categorize(inv.View())
	if suggestion.CategoryID == intelligence.Uncategorized().CategoryID && s.classifier != nil {
		if fromModel, ok := s.classify(ctx, inv.VendorName, categories); ok {
			suggestion = fromModel
		}
	}

	inv.CategoryID, inv.CategoryName = resolveCategory(categories, suggestion)
	return nil
}

// classify asks the classifier for a category; failures are logged and
// reported as no suggestion
func (s *Service) classify(ctx context.Context, vendorName string, categories []*Category) (intelligence.CategorySuggestion, bool) {
	allowed := allowedCategoryNames(categories)
	result, err := s.classifier.Classify(ctx, vendorName, allowed)
	if err != nil {
		slog.Warn("Model categorization failed", "vendor", vendorName, "error", err)
		return intelligence.CategorySuggestion{}, false
	}
	if strings.EqualFold(result.Category, intelligence.Uncategorized().CategoryName) {
		return intelligence.CategorySuggestion{}, false
	}

	suggestion := intelligence.CategorySuggestion{CategoryName: result.Category, Confidence: result.Confidence}
	for _, rule := range intelligence.CategoryRules() {
		if rule.Result.CategoryName == result.Category {
			suggestion.CategoryID = rule.Result.CategoryID
		}
	}
	return suggestion, true
}

// allowedCategoryNames lists stored category names, or the built-in rule
// categories when none are stored, always including Uncategorized
func allowedCategoryNames(categories []*Category) []string {
	var names []string
	for _, c := range categories {
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		for _, rule := range intelligence.CategoryRules() {
			names = append(names, rule.Result.CategoryName)
		}
	}
	uncategorized := intelligence.Uncategorized().CategoryName
	for _, n := range names {
		if strings.EqualFold(n, uncategorized) {
			return names
		}
	}
	return append(names, uncategorized)
}

// resolveCategory maps a suggestion onto a stored category with the same
// name, keeping the suggestion's own ID otherwise
func resolveCategory(categories []*Category, suggestion intelligence.CategorySuggestion) (string, string) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, suggestion.CategoryName) {
			return c.ID, c.Name
		}
	}
	return suggestion.CategoryID, suggestion.CategoryName
}

// GetInvoice retrieves an invoice by ID
func (s *Service) GetInvoice(id string) (*Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return inv, nil
}

// sortNewestFirst orders invoices by invoice date, then creation time, newest first
func sortNewestFirst(invoices []*Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if a.InvoiceDate != b.InvoiceDate {
			return a.InvoiceDate > b.InvoiceDate
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// History returns every invoice, newest first. This is the order
// intelligence.ForecastNextMonth expects.
func (s *Service) History() ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	sortNewestFirst(invoices)
	return invoices, nil
}

// matches reports whether inv passes every set field of f
func (f Filter) matches(inv *Invoice) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if inv.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ClientID != "" && inv.ClientID != f.ClientID {
		return false
	}
	if f.CategoryID != "" && inv.CategoryID != f.CategoryID {
		return false
	}
	if f.MinAmount != nil && inv.TotalAmount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && inv.TotalAmount > *f.MaxAmount {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(inv.VendorName), q) &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), q) &&
			!strings.Contains(strings.ToLower(inv.Notes), q) {
			return false
		}
	}
	return true
}

// ListInvoices returns the invoices matching f, newest first
func (s *Service) ListInvoices(f Filter) ([]*Invoice, error) {
	all, err := s.History()
	if err != nil {
		return nil, err
	}
	out := make([]*Invoice, 0, len(all))
	for _, inv := range all {
		if f.matches(inv) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// Patch holds the invoice fields an update may change; nil fields are left alone
type Patch struct {
	InvoiceNumber *string     `json:"invoice_number"`
	VendorName    *string     `json:"vendor_name"`
	VendorEmail   *string     `json:"vendor_email"`
	InvoiceDate   *string     `json:"invoice_date"`
	DueDate       *string     `json:"due_date"`
	TotalAmount   *float64    `json:"total_amount"`
	Currency      *string     `json:"currency"`
	OCRConfidence *float64    `json:"ocr_confidence"`
	Status        *Status     `json:"status"`
	ClientID      *string     `json:"client_id"`
	CategoryID    *string     `json:"category_id"`
	Items         *[]LineItem `json:"items"`
	Notes         *string     `json:"notes"`
}

func (p *Patch) apply(inv *Invoice) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&inv.InvoiceNumber, p.InvoiceNumber)
	set(&inv.VendorName, p.VendorName)
	set(&inv.VendorEmail, p.VendorEmail)
	set(&inv.InvoiceDate, p.InvoiceDate)
	set(&inv.DueDate, p.DueDate)
	set(&inv.Currency, p.Currency)
	set(&inv.ClientID, p.ClientID)
	set(&inv.CategoryID, p.CategoryID)
	set(&inv.Notes, p.Notes)
	if p.TotalAmount != nil {
		inv.TotalAmount = *p.TotalAmount
	}
	if p.OCRConfidence != nil {
		inv.OCRConfidence = *p.OCRConfidence
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.Items != nil {
		inv.Items = *p.Items
	}
	if p.CategoryID != nil && *p.CategoryID == "" {
		inv.CategoryName = ""
	}
}

// UpdateInvoice applies a patch to an invoice. Clearing the category
// re-runs categorization.
func (s *Service) UpdateInvoice(ctx context.Context, id string, p Patch) (*Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	p.apply(inv)
	if err := validateInvoice(inv); err != nil {
		return nil, err
	}
	if err := s.resolveRelations(inv); err != nil {
		return nil, err
	}
	if inv.CategoryID == "" {
		if err := s.categorize(ctx, inv); err != nil {
			return nil, err
		}
	}
	inv.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveInvoice(inv); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}
	return inv, nil
}

// removeFiles deletes an invoice's stored document and preview, logging failures
func (s *Service) removeFiles(inv *Invoice) {
	for _, name := range []string{inv.FileName, inv.PreviewName} {
		if name == "" {
			continue
		}
		if err := s.storage.Delete(name); err != nil {
			slog.Warn("Failed to delete file", "filename", name, "error", err)
		}
	}
}

// DeleteInvoice removes an invoice and its files
func (s *Service) DeleteInvoice(id string) error {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return fmt.Errorf("getting invoice for deletion: %w", err)
	}

	s.removeFiles(inv)

	if err := s.db.DeleteInvoice(id); err != nil {
		return fmt.Errorf("deleting invoice from database: %w", err)
	}
	return nil
}

// setStatus moves an invoice to a new status
func (s *Service) setStatus(id string, status Status, approver string) (*Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	now := s.timeSource.Now()
	inv.Status = status
	inv.UpdatedAt = now
	if status == StatusApproved {
		inv.ApprovedBy = approver
		inv.ApprovedAt = &now
	} else {
		inv.ApprovedBy = ""
		inv.ApprovedAt = nil
	}

	if err := s.db.SaveInvoice(inv); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}
	return inv, nil
}

// ApproveInvoice marks an invoice approved by approver
func (s *Service) ApproveInvoice(id, approver string) (*Invoice, error) {
	return s.setStatus(id, StatusApproved, approver)
}

// RejectInvoice marks an invoice rejected
func (s *Service) RejectInvoice(id string) (*Invoice, error) {
	return s.setStatus(id, StatusRejected, "")
}

// BulkUpdateStatus approves or rejects every listed invoice. Unknown IDs are
// skipped; the number of updated invoices is returned.
func (s *Service) BulkUpdateStatus(ids []string, status Status, approver string) (int, error) {
	if status != StatusApproved && status != StatusRejected {
		return 0, invalid("bulk status must be approved or rejected, got %q", status)
	}

	updated := 0
	for _, id := range ids {
		if _, err := s.db.GetInvoice(id); err != nil {
			slog.Warn("Skipping unknown invoice in bulk update", "id", id)
			continue
		}
		if _, err := s.setStatus(id, status, approver); err != nil {
			return updated, fmt.Errorf("updating invoice %s: %w", id, err)
		}
		updated++
	}
	return updated, nil
}

// BulkDelete deletes every listed invoice. Unknown IDs are skipped; the number
// of deleted invoices is returned.
func (s *Service) BulkDelete(ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		inv, err := s.db.GetInvoice(id)
		if err != nil {
			slog.Warn("Skipping unknown invoice in bulk delete", "id", id)
			continue
		}
		s.removeFiles(inv)
		if err := s.db.DeleteInvoice(id); err != nil {
			return deleted, fmt.Errorf("deleting invoice %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

// AttachDocument stores the original invoice document and, when a renderer is
// configured, a PNG preview of it. Previous files are replaced.
func (s *Service) AttachDocument(id, filename string, data []byte, contentType string) (*Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	if len(data) == 0 {
		return nil, invalid("document is empty")
	}

	previous := *inv

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	previewPath := ""
	if s.renderer != nil {
		thumb, err := s.renderer.Render(data, contentType)
		if err != nil {
			slog.Warn("Failed to render preview",
				"filename", filename,
				"content_type", contentType,
				"file_size", len(data),
				"error", err,
			)
		} else if previewPath, err = s.storage.Save(id+"_preview.png", thumb); err != nil {
			slog.Warn("Failed to save preview", "filename", filename, "error", err)
			previewPath = ""
		}
	}

	inv.FileName = savedPath
	inv.FileType = contentType
	inv.PreviewName = previewPath
	inv.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveInvoice(inv); err != nil {
		// Clean up files if database save fails
		s.removeFiles(inv)
		return nil, fmt.Errorf("saving invoice to database: %w", err)
	}

	if previous.FileName != "" && previous.FileName != savedPath {
		s.removeFiles(&Invoice{FileName: previous.FileName})
	}
	if previous.PreviewName != "" && previous.PreviewName != previewPath {
		s.removeFiles(&Invoice{PreviewName: previous.PreviewName})
	}

	return inv, nil
}

// GetDocument returns the stored document of an invoice and its content type
func (s *Service) GetDocument(id string) ([]byte, string, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}
	if inv.FileName == "" {
		return nil, "", fmt.Errorf("invoice %s has no document: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(inv.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice document: %w", err)
	}
	return data, inv.FileType, nil
}

// GetPreview returns the PNG preview of an invoice document
func (s *Service) GetPreview(id string) ([]byte, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	if inv.PreviewName == "" {
		return nil, fmt.Errorf("invoice %s has no preview: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(inv.PreviewName)
	if err != nil {
		return nil, fmt.Errorf("getting invoice preview: %w", err)
	}
	return data, nil
}

// Analyze runs every per-invoice heuristic against the stored history
func (s *Service) Analyze(id string) (*Analysis, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	history, err := s.History()
	if err != nil {
		return nil, err
	}

	view := inv.View()
	hist := views(history)
	return &Analysis{
		InvoiceID:    inv.ID,
		Category:     intelligence.Categorize(view),
		Duplicate:    intelligence.DetectDuplicate(view, hist),
		Vendor:       intelligence.RecognizeVendor(inv.VendorName),
		PaymentTerms: intelligence.SuggestPaymentTerms(inv.VendorName),
		Approval:     intelligence.SuggestApproval(view, hist),
	}, nil
}

// Forecast projects next month's spend, optionally for one category
func (s *Service) Forecast(categoryID string) (intelligence.Forecast, error) {
	history, err := s.History()
	if err != nil {
		return intelligence.Forecast{}, err
	}
	return intelligence.ForecastNextMonth(views(history), categoryID), nil
}

// VendorDetails suggests field values for a vendor from stored invoices
func (s *Service) VendorDetails(vendorName string) (intelligence.VendorDetails, error) {
	history, err := s.History()
	if err != nil {
		return intelligence.VendorDetails{}, err
	}
	return intelligence.AutoFillVendorDetails(vendorName, views(history)), nil
}

// RecognizeVendor normalizes a raw vendor name
func (s *Service) RecognizeVendor(name string) intelligence.VendorMatch {
	return intelligence.RecognizeVendor(name)
}

// PaymentTerms suggests payment terms for a vendor
func (s *Service) PaymentTerms(vendorName string) intelligence.PaymentTerms {
	return intelligence.SuggestPaymentTerms(vendorName)
}

// CreateClient stores a new client
func (s *Service) CreateClient(c *Client) (*Client, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, invalid("client name is required")
	}
	created := *c
	created.ID = s.idGenerator.Generate()
	created.CreatedAt = s.timeSource.Now()
	if created.Status == "" {
		created.Status = "active"
	}
	if created.Status != "active" && created.Status != "inactive" {
		return nil, invalid("unknown client status %q", created.Status)
	}
	if err := s.db.SaveClient(&created); err != nil {
		return nil, fmt.Errorf("saving client: %w", err)
	}
	return &created, nil
}

// summarize attaches invoice figures to a client
func summarize(c *Client, invoices []*Invoice) ClientSummary {
	sum := ClientSummary{Client: *c}
	var spent []float64
	for _, inv := range invoices {
		if inv.ClientID == c.ID {
			sum.InvoiceCount++
			spent = append(spent, inv.TotalAmount)
		}
	}
	sum.TotalSpent = sumAmounts(spent)
	return sum
}

// GetClient returns a client with its invoice count and total spent
func (s *Service) GetClient(id string) (*ClientSummary, error) {
	c, err := s.db.GetClient(id)
	if err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	sum := summarize(c, invoices)
	return &sum, nil
}

// ListClients returns every client with its invoice figures, sorted by name
func (s *Service) ListClients() ([]ClientSummary, error) {
	clients, err := s.db.ListClients()
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	out := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		out = append(out, summarize(c, invoices))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// DeleteClient removes a client. Its invoices keep their client name.
func (s *Service) DeleteClient(id string) error {
	if err := s.db.DeleteClient(id); err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return nil
}

// CreateCategory stores a new category; names are unique case-insensitively
func (s *Service) CreateCategory(c *Category) (*Category, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil, invalid("category name is required")
	}
	existing, err := s.db.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, name) {
			return nil, invalid("category %q already exists", name)
		}
	}

	created := *c
	created.ID = s.idGenerator.Generate()
	created.Name = name
	created.CreatedAt = s.timeSource.Now()
	if created.Keywords == nil {
		created.Keywords = []string{}
	}
	if err := s.db.SaveCategory(&created); err != nil {
		return nil, fmt.Errorf("saving category: %w", err)
	}
	return &created, nil
}

// ListCategories returns every category sorted by name
func (s *Service) ListCategories() ([]*Category, error) {
	categories, err := s.db.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

// DeleteCategory removes a category
func (s *Service) DeleteCategory(id string) error {
	if err := s.db.DeleteCategory(id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}
