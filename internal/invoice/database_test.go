package invoice

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveInvoice", func() {
		var (
			invoice *Invoice
			err     error
		)

		BeforeEach(func() {
			approvedAt := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
			invoice = &Invoice{
				ID:          "test-id",
				VendorName:  "Staples Inc.",
				InvoiceDate: "2024-01-15",
				TotalAmount: 25.99,
				Currency:    "USD",
				Status:      StatusApproved,
				Items:       []LineItem{{ID: "l1", Description: "Paper", Quantity: 2, UnitPrice: 12.995, Amount: 25.99}},
				ApprovedBy:  "alice",
				ApprovedAt:  &approvedAt,
				CreatedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveInvoice(invoice)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round-trip every field", func() {
				saved, getErr := db.GetInvoice("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.VendorName).To(Equal("Staples Inc."))
				Expect(saved.Items).To(HaveLen(1))
				Expect(saved.ApprovedAt.Equal(*invoice.ApprovedAt)).To(BeTrue())
				Expect(saved.CreatedAt.Equal(invoice.CreatedAt)).To(BeTrue())
			})
		})

		When("the invoice already exists", func() {
			JustBeforeEach(func() {
				invoice.TotalAmount = 30
				err = db.SaveInvoice(invoice)
			})

			It("should replace it", func() {
				saved, getErr := db.GetInvoice("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.TotalAmount).To(Equal(30.0))

				all, listErr := db.ListInvoices()
				Expect(listErr).NotTo(HaveOccurred())
				Expect(all).To(HaveLen(1))
			})
		})
	})

	Describe("GetInvoice", func() {
		When("the invoice does not exist", func() {
			It("returns a not found error", func() {
				_, err := db.GetInvoice("missing")
				Expect(err).To(MatchError(ErrNotFound))
				Expect(err).To(MatchError(ContainSubstring("invoice missing")))
			})
		})
	})

	Describe("ListInvoices", func() {
		When("the bucket is empty", func() {
			It("should return an empty, non-nil slice", func() {
				all, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(all).NotTo(BeNil())
				Expect(all).To(BeEmpty())
			})
		})
	})

	Describe("DeleteInvoice", func() {
		BeforeEach(func() {
			Expect(db.SaveInvoice(&Invoice{ID: "a"})).To(Succeed())
		})

		It("should remove the invoice", func() {
			Expect(db.DeleteInvoice("a")).To(Succeed())
			_, err := db.GetInvoice("a")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns a not found error for a missing invoice", func() {
			Expect(db.DeleteInvoice("b")).To(MatchError(ErrNotFound))
		})
	})

	Describe("clients and categories", func() {
		It("should store clients separately from categories", func() {
			Expect(db.SaveClient(&Client{ID: "1", Name: "Acme", Status: "active"})).To(Succeed())
			Expect(db.SaveCategory(&Category{ID: "1", Name: "Travel", Keywords: []string{"hotel"}})).To(Succeed())

			c, err := db.GetClient("1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("Acme"))

			cat, err := db.GetCategory("1")
			Expect(err).NotTo(HaveOccurred())
			Expect(cat.Keywords).To(Equal([]string{"hotel"}))

			clients, err := db.ListClients()
			Expect(err).NotTo(HaveOccurred())
			Expect(clients).To(HaveLen(1))

			Expect(db.DeleteClient("1")).To(Succeed())
			_, err = db.GetCategory("1")
			Expect(err).NotTo(HaveOccurred())
			Expect(db.DeleteCategory("1")).To(Succeed())
			Expect(db.DeleteCategory("1")).To(MatchError(ErrNotFound))
		})
	})

	When("reopening the database", func() {
		It("should keep saved records", func() {
			Expect(db.SaveInvoice(&Invoice{ID: "persisted", VendorName: "Adobe"})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			inv, err := db.GetInvoice("persisted")
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.VendorName).To(Equal("Adobe"))
		})
	})
})
