package invoice

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// Server handles HTTP requests for invoices, clients, categories and the
// intelligence endpoints
type Server struct {
	service *Service
	options Options
	mux     *http.ServeMux
	handler http.Handler
	httpSrv *http.Server
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Options configures a Server
type Options struct {
	BasicAuth      BasicAuth
	AllowedOrigins []string // defaults to "*"
	Version        string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, opts Options) *Server {
	return NewServerWithMux(service, opts, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, opts Options, mux *http.ServeMux) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		service: service,
		options: opts,
		mux:     mux,
	}
	s.registerRoutes()

	s.handler = cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           3600,
	})(s.mux)
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	creds := s.options.BasicAuth
	if creds.Username == "" && creds.Password == "" {
		return true // No auth required if not configured
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(creds.Password)) == 1
	return userOK && passOK
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Invoice Intelligence"`)
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Invoices: bulk operations and sub-resources before the bare {id} routes
	s.mux.HandleFunc("POST /api/invoices/bulk/status", s.requireAuth(s.handleBulkStatus))
	s.mux.HandleFunc("POST /api/invoices/bulk/delete", s.requireAuth(s.handleBulkDelete))
	s.mux.HandleFunc("POST /api/invoices/{id}/approve", s.requireAuth(s.handleApproveInvoice))
	s.mux.HandleFunc("POST /api/invoices/{id}/reject", s.requireAuth(s.handleRejectInvoice))
	s.mux.HandleFunc("POST /api/invoices/{id}/document", s.requireAuth(s.handleUploadDocument))
	s.mux.HandleFunc("GET /api/invoices/{id}/document", s.requireAuth(s.handleGetDocument))
	s.mux.HandleFunc("GET /api/invoices/{id}/preview", s.requireAuth(s.handleGetPreview))
	s.mux.HandleFunc("GET /api/invoices/{id}/analysis", s.requireAuth(s.handleAnalyzeInvoice))
	s.mux.HandleFunc("GET /api/invoices/{id}", s.requireAuth(s.handleGetInvoice))
	s.mux.HandleFunc("PUT /api/invoices/{id}", s.requireAuth(s.handleUpdateInvoice))
	s.mux.HandleFunc("DELETE /api/invoices/{id}", s.requireAuth(s.handleDeleteInvoice))
	s.mux.HandleFunc("GET /api/invoices", s.requireAuth(s.handleListInvoices))
	s.mux.HandleFunc("POST /api/invoices", s.requireAuth(s.handleCreateInvoice))

	// Clients
	s.mux.HandleFunc("GET /api/clients/{id}", s.requireAuth(s.handleGetClient))
	s.mux.HandleFunc("DELETE /api/clients/{id}", s.requireAuth(s.handleDeleteClient))
	s.mux.HandleFunc("GET /api/clients", s.requireAuth(s.handleListClients))
	s.mux.HandleFunc("POST /api/clients", s.requireAuth(s.handleCreateClient))

	// Categories
	s.mux.HandleFunc("DELETE /api/categories/{id}", s.requireAuth(s.handleDeleteCategory))
	s.mux.HandleFunc("GET /api/categories", s.requireAuth(s.handleListCategories))
	s.mux.HandleFunc("POST /api/categories", s.requireAuth(s.handleCreateCategory))

	// Intelligence
	s.mux.HandleFunc("GET /api/intelligence/forecast", s.requireAuth(s.handleForecast))
	s.mux.HandleFunc("GET /api/intelligence/vendors", s.requireAuth(s.handleRecognizeVendor))
	s.mux.HandleFunc("GET /api/intelligence/vendor-details", s.requireAuth(s.handleVendorDetails))
	s.mux.HandleFunc("GET /api/intelligence/payment-terms", s.requireAuth(s.handlePaymentTerms))
	s.mux.HandleFunc("GET /api/intelligence/insights", s.requireAuth(s.handleInsights))
	s.mux.HandleFunc("GET /api/intelligence/rules", s.requireAuth(s.handleRules))

	s.mux.HandleFunc("GET /api/stats", s.requireAuth(s.handleStats))
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	slog.Info("Starting server", "address", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a server started with Start
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
