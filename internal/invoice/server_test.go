package invoice

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		opts        Options
		server      *Server
		ghttpServer *ghttp.Server
	)

	do := func(method, path string, body io.Reader) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, body)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, v any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(v)).To(Succeed())
	}

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		opts = Options{Version: "1.2.3"}
	})

	JustBeforeEach(func() {
		clock := &mockTimeSource{now: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)}
		service := NewServiceWithDeps(db, storage, &mockRenderer{output: []byte("png")}, nil, &mockIDGenerator{}, clock)
		server = NewServerWithMux(service, opts, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
			ghttpServer.RouteToHandler(method, regexp.MustCompile(`.*`), server.ServeHTTP)
		}
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("GET /health", func() {
		It("should report healthy with the version", func() {
			resp := do("GET", "/health", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("status", "healthy"))
			Expect(body).To(HaveKeyWithValue("version", "1.2.3"))
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			opts.BasicAuth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("should reject requests without credentials", func() {
			resp := do("GET", "/api/invoices", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("should accept valid credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/invoices", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "secret")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should leave health open", func() {
			resp := do("GET", "/health", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should use the auth user as approver", func() {
			db.invoices["a"] = &Invoice{ID: "a", VendorName: "Staples", Status: StatusPending}
			req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/invoices/a/approve", nil)
			Expect(err).NotTo(HaveOccurred())
			req.SetBasicAuth("admin", "secret")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var inv Invoice
			decode(resp, &inv)
			Expect(inv.ApprovedBy).To(Equal("admin"))
		})
	})

	Describe("CORS", func() {
		It("should answer preflight requests", func() {
			req, err := http.NewRequest("OPTIONS", ghttpServer.URL()+"/api/invoices", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Origin", "http://example.com")
			req.Header.Set("Access-Control-Request-Method", "POST")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("POST /api/invoices", func() {
		It("should create and categorize the invoice", func() {
			resp := do("POST", "/api/invoices", strings.NewReader(`{"vendor_name":"Adobe Inc","invoice_date":"2024-03-01","total_amount":52.99,"ocr_confidence":96}`))
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			var inv Invoice
			decode(resp, &inv)
			Expect(inv.ID).To(Equal("id-1"))
			Expect(inv.CategoryName).To(Equal("Software & Technology"))
		})

		It("should return 400 for invalid input", func() {
			resp := do("POST", "/api/invoices", strings.NewReader(`{"total_amount":10}`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			var body map[string]string
			decode(resp, &body)
			Expect(body["error"]).To(ContainSubstring("vendor name is required"))
		})

		It("should return 400 for a malformed body", func() {
			resp := do("POST", "/api/invoices", strings.NewReader(`{`))
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/invoices", func() {
		BeforeEach(func() {
			db.invoices["a"] = &Invoice{ID: "a", VendorName: "Staples", InvoiceDate: "2024-01-01", TotalAmount: 10, Status: StatusPending}
			db.invoices["b"] = &Invoice{ID: "b", VendorName: "Adobe", InvoiceDate: "2024-02-01", TotalAmount: 200, Status: StatusApproved}
		})

		It("should filter by status and amount", func() {
			resp := do("GET", "/api/invoices?status=pending,approved&min_amount=50", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			var invoices []*Invoice
			decode(resp, &invoices)
			Expect(invoices).To(HaveLen(1))
			Expect(invoices[0].ID).To(Equal("b"))
		})

		It("should return 400 for an unknown status", func() {
			resp := do("GET", "/api/invoices?status=archived", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("should return 400 for a non-numeric amount", func() {
			resp := do("GET", "/api/invoices?max_amount=lots", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("invoice by ID", func() {
		BeforeEach(func() {
			db.invoices["a"] = &Invoice{ID: "a", VendorName: "Staples", InvoiceDate: "2024-01-01", TotalAmount: 10, Status: StatusPending, Currency: "USD"}
		})

		It("should return 404 for a missing invoice", func() {
			resp := do("GET", "/api/invoices/missing", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should update the invoice", func() {
			resp := do("PUT", "/api/invoices/a", strings.NewReader(`{"notes":"paid by card"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var inv Invoice
			decode(resp, &inv)
			Expect(inv.Notes).To(Equal("paid by card"))
		})

		It("should approve with an explicit approver", func() {
			resp := do("POST", "/api/invoices/a/approve", strings.NewReader(`{"approved_by":"carol"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var inv Invoice
			decode(resp, &inv)
			Expect(inv.Status).To(Equal(StatusApproved))
			Expect(inv.ApprovedBy).To(Equal("carol"))
		})

		It("should reject", func() {
			resp := do("POST", "/api/invoices/a/reject", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var inv Invoice
			decode(resp, &inv)
			Expect(inv.Status).To(Equal(StatusRejected))
		})

		It("should analyze", func() {
			resp := do("GET", "/api/invoices/a/analysis", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var a Analysis
			decode(resp, &a)
			Expect(a.Category.CategoryID).To(Equal("1"))
			Expect(a.Vendor.NormalizedName).To(Equal("Staples Inc."))
		})

		It("should delete", func() {
			resp := do("DELETE", "/api/invoices/a", nil)
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.invoices).To(BeEmpty())
		})
	})

	Describe("POST /api/invoices/{id}/document", func() {
		var (
			filename string
			partType string
		)

		upload := func() *http.Response {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
			if partType != "" {
				h.Set("Content-Type", partType)
			}
			part, err := mw.CreatePart(h)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("%PDF-1.4 test"))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/invoices/a/document", &buf)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", mw.FormDataContentType())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		BeforeEach(func() {
			db.invoices["a"] = &Invoice{ID: "a", VendorName: "Staples"}
			filename = "invoice.pdf"
			partType = ""
		})

		It("should attach the document and preview", func() {
			resp := upload()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var inv Invoice
			decode(resp, &inv)
			Expect(inv.FileName).To(Equal("a_invoice.pdf"))
			Expect(inv.FileType).To(Equal("application/pdf"))
			Expect(inv.PreviewName).To(Equal("a_preview.png"))

			doc := do("GET", "/api/invoices/a/document", nil)
			defer doc.Body.Close()
			Expect(doc.Header.Get("Content-Type")).To(Equal("application/pdf"))

			prev := do("GET", "/api/invoices/a/preview", nil)
			defer prev.Body.Close()
			Expect(prev.Header.Get("Content-Type")).To(Equal("image/png"))
			data, err := io.ReadAll(prev.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("png")))
		})

		When("the part carries a content type", func() {
			BeforeEach(func() {
				filename = "scan.heic"
				partType = "image/HEIC"
			})

			It("should use it", func() {
				resp := upload()
				var inv Invoice
				decode(resp, &inv)
				Expect(inv.FileType).To(Equal("image/heic"))
			})
		})

		When("the extension is not allowed", func() {
			BeforeEach(func() {
				filename = "invoice.exe"
			})

			It("should return 400", func() {
				resp := upload()
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		It("should return 404 when there is no document", func() {
			resp := do("GET", "/api/invoices/a/document", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("bulk operations", func() {
		BeforeEach(func() {
			db.invoices["a"] = &Invoice{ID: "a", VendorName: "Staples", Status: StatusPending}
			db.invoices["b"] = &Invoice{ID: "b", VendorName: "Adobe", Status: StatusPending}
		})

		It("should update statuses", func() {
			resp := do("POST", "/api/invoices/bulk/status", strings.NewReader(`{"ids":["a","b","zzz"],"status":"rejected"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]int
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("updated", 2))
		})

		It("should refuse other statuses", func() {
			resp := do("POST", "/api/invoices/bulk/status", strings.NewReader(`{"ids":["a"],"status":"pending"}`))
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("should delete", func() {
			resp := do("POST", "/api/invoices/bulk/delete", strings.NewReader(`{"ids":["a"]}`))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]int
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("deleted", 1))
		})
	})

	Describe("clients and categories", func() {
		It("should create and list clients", func() {
			resp := do("POST", "/api/clients", strings.NewReader(`{"name":"Acme","email":"ap@acme.test"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			resp.Body.Close()

			resp = do("GET", "/api/clients", nil)
			var clients []ClientSummary
			decode(resp, &clients)
			Expect(clients).To(HaveLen(1))
			Expect(clients[0].Name).To(Equal("Acme"))
			Expect(clients[0].InvoiceCount).To(BeZero())
		})

		It("should return 404 for a missing client", func() {
			resp := do("GET", "/api/clients/missing", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should create, list and delete categories", func() {
			resp := do("POST", "/api/categories", strings.NewReader(`{"name":"Rent"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			var created Category
			decode(resp, &created)

			resp = do("GET", "/api/categories", nil)
			var categories []Category
			decode(resp, &categories)
			Expect(categories).To(HaveLen(1))

			resp = do("DELETE", "/api/categories/"+created.ID, nil)
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		})
	})

	Describe("intelligence endpoints", func() {
		BeforeEach(func() {
			db.invoices["a"] = &Invoice{ID: "a", VendorName: "Adobe", InvoiceDate: "2024-03-01", TotalAmount: 130, CategoryID: "2", CategoryName: "Software & Technology"}
			db.invoices["b"] = &Invoice{ID: "b", VendorName: "Adobe", InvoiceDate: "2024-02-01", TotalAmount: 100, CategoryID: "2", CategoryName: "Software & Technology"}
			db.invoices["c"] = &Invoice{ID: "c", VendorName: "Adobe", InvoiceDate: "2024-01-01", TotalAmount: 100, CategoryID: "2", CategoryName: "Software & Technology"}
		})

		It("should forecast", func() {
			resp := do("GET", "/api/intelligence/forecast?category_id=2", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]any
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("forecast", 121.0))
			Expect(body).To(HaveKeyWithValue("trend", "increasing"))
		})

		It("should recognize vendors", func() {
			resp := do("GET", "/api/intelligence/vendors?name=MSFT%20billing", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]any
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("normalized_name", "Microsoft Corporation"))
		})

		It("should require a vendor name", func() {
			resp := do("GET", "/api/intelligence/vendors", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("should auto-fill vendor details", func() {
			resp := do("GET", "/api/intelligence/vendor-details?name=adobe", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]any
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("suggested_category", "Software & Technology"))
			Expect(body).To(HaveKeyWithValue("average_amount", 110.0))
			Expect(body).To(HaveKeyWithValue("confidence", 75.0))
		})

		It("should suggest payment terms", func() {
			resp := do("GET", "/api/intelligence/payment-terms?name=City%20Water", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]any
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("terms", "Net 30"))
		})

		It("should summarize insights", func() {
			resp := do("GET", "/api/intelligence/insights", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var in Insights
			decode(resp, &in)
			Expect(in.SampleSize).To(Equal(3))
		})

		It("should expose the rule tables", func() {
			resp := do("GET", "/api/intelligence/rules", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]json.RawMessage
			decode(resp, &body)
			Expect(body).To(HaveKey("categories"))
			Expect(body).To(HaveKey("payment_terms"))
			Expect(body).To(HaveKey("vendors"))
		})

		It("should report dashboard stats", func() {
			resp := do("GET", "/api/stats", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var stats DashboardStats
			decode(resp, &stats)
			Expect(stats.TotalInvoices).To(Equal(3))
			Expect(stats.TotalAmount).To(Equal(330.0))
			Expect(stats.MonthlyAmount).To(Equal(130.0))
		})
	})
})
