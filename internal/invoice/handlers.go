package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/intelligence"
)

// maxUploadSize caps invoice document uploads
const maxUploadSize = int64(10 << 20) // 10MB

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".gif":  "image/gif",
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeJSONError writes {"error": message} with the given status
func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeError maps service errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("Request failed", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeBody decodes a JSON request body into v
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid request body: %v", err)
	}
	return nil
}

// parseAmount reads an optional float query parameter
func parseAmount(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalid("%s must be a number", key)
	}
	return &v, nil
}

// parseFilter builds a Filter from the query string. status accepts a
// comma-separated list.
func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		ClientID:   q.Get("client_id"),
		CategoryID: q.Get("category_id"),
		Search:     q.Get("search"),
	}
	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st := Status(strings.TrimSpace(part))
			if st == "" {
				continue
			}
			if !st.Valid() {
				return Filter{}, invalid("unknown status %q", st)
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	var err error
	if f.MinAmount, err = parseAmount(r, "min_amount"); err != nil {
		return Filter{}, err
	}
	if f.MaxAmount, err = parseAmount(r, "max_amount"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// requestUser returns the basic auth user of a request, if any
func requestUser(r *http.Request) string {
	user, _, _ := r.BasicAuth()
	return user
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "invoice-intel",
		"version": s.options.Version,
	})
}

// handleListInvoices returns invoices matching the query filter
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	invoices, err := s.service.ListInvoices(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// handleCreateInvoice stores an invoice from a JSON body
func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv Invoice
	if err := decodeBody(r, &inv); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.service.CreateInvoice(r.Context(), &inv)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.service.GetInvoice(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}
	inv, err := s.service.UpdateInvoice(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteInvoice(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApproveInvoice approves an invoice. The approver comes from the
// optional approved_by field, then the basic auth user.
func (s *Server) handleApproveInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApprovedBy string `json:"approved_by"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, invalid("invalid request body: %v", err))
			return
		}
	}
	approver := strings.TrimSpace(req.ApprovedBy)
	if approver == "" {
		approver = requestUser(r)
	}

	inv, err := s.service.ApproveInvoice(r.PathValue("id"), approver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleRejectInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.service.RejectInvoice(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// handleBulkStatus approves or rejects a list of invoices
func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs        []string `json:"ids"`
		Status     Status   `json:"status"`
		ApprovedBy string   `json:"approved_by"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	approver := strings.TrimSpace(req.ApprovedBy)
	if approver == "" {
		approver = requestUser(r)
	}

	updated, err := s.service.BulkUpdateStatus(req.IDs, req.Status, approver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	deleted, err := s.service.BulkDelete(req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// detectContentType picks the upload content type from the part header, the
// file extension, then the data itself
func detectContentType(header string, filename string, data []byte) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if ct, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return http.DetectContentType(data)
}

// handleUploadDocument attaches a multipart "file" to an invoice
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeJSONError(w, "Error parsing form. Maximum file size is 10MB.", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeJSONError(w, "File is too large. Maximum size is 10MB.", http.StatusBadRequest)
		return
	}
	if _, ok := allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))]; !ok {
		writeJSONError(w, "Unsupported file type. Allowed: PDF, PNG, JPG, TIFF, HEIC, GIF.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), header.Filename, data)
	inv, err := s.service.AttachDocument(r.PathValue("id"), header.Filename, data, contentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetDocument(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.GetPreview(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleAnalyzeInvoice runs the per-invoice heuristics
func (s *Server) handleAnalyzeInvoice(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.service.Analyze(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.service.ListClients()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c Client
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.service.CreateClient(&c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.GetClient(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteClient(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.ListCategories()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c Category
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.service.CreateCategory(&c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCategory(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleForecast projects next month's spend, optionally per category_id
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	forecast, err := s.service.Forecast(r.URL.Query().Get("category_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleRecognizeVendor(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, invalid("name is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.service.RecognizeVendor(name))
}

func (s *Server) handleVendorDetails(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, invalid("name is required"))
		return
	}
	details, err := s.service.VendorDetails(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handlePaymentTerms(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, invalid("name is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.service.PaymentTerms(name))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.service.Insights()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// handleRules exposes the rule tables the heuristics evaluate
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":    intelligence.CategoryRules(),
		"uncategorized": intelligence.Uncategorized(),
		"payment_terms": intelligence.PaymentTermRules(),
		"vendors":       intelligence.KnownVendors(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.DashboardStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
