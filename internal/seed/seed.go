// Package seed loads a YAML dataset of categories, clients and invoices into
// an invoice.DB so a fresh install has history for the heuristics to work on.
package seed

import (
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bewithsachiin/invoice-ocr-ai-platform/internal/invoice"
)

// Default is the embedded demo dataset
//
//go:embed default.yaml
var Default []byte

// Dataset is the document layout of a seed file
type Dataset struct {
	Categories []invoice.Category `yaml:"categories"`
	Clients    []invoice.Client   `yaml:"clients"`
	Invoices   []invoice.Invoice  `yaml:"invoices"`
}

// Result reports what Load wrote
type Result struct {
	Categories int
	Clients    int
	Invoices   int
	Skipped    bool
}

// Parse decodes and checks a seed document
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing seed data: %w", err)
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// validate checks IDs are present and unique and references resolve
func (ds *Dataset) validate() error {
	categories := make(map[string]string, len(ds.Categories))
	for _, c := range ds.Categories {
		if c.ID == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("seed category needs an id and name: %w", invoice.ErrInvalidInput)
		}
		if _, dup := categories[c.ID]; dup {
			return fmt.Errorf("duplicate seed category %s: %w", c.ID, invoice.ErrInvalidInput)
		}
		categories[c.ID] = c.Name
	}

	clients := make(map[string]string, len(ds.Clients))
	for _, c := range ds.Clients {
		if c.ID == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("seed client needs an id and name: %w", invoice.ErrInvalidInput)
		}
		if _, dup := clients[c.ID]; dup {
			return fmt.Errorf("duplicate seed client %s: %w", c.ID, invoice.ErrInvalidInput)
		}
		clients[c.ID] = c.Name
	}

	seen := make(map[string]bool, len(ds.Invoices))
	for i := range ds.Invoices {
		inv := &ds.Invoices[i]
		if inv.ID == "" || strings.TrimSpace(inv.VendorName) == "" {
			return fmt.Errorf("seed invoice %d needs an id and vendor name: %w", i, invoice.ErrInvalidInput)
		}
		if seen[inv.ID] {
			return fmt.Errorf("duplicate seed invoice %s: %w", inv.ID, invoice.ErrInvalidInput)
		}
		seen[inv.ID] = true

		if inv.Status != "" && !inv.Status.Valid() {
			return fmt.Errorf("seed invoice %s has unknown status %q: %w", inv.ID, inv.Status, invoice.ErrInvalidInput)
		}
		if inv.ClientID != "" {
			name, ok := clients[inv.ClientID]
			if !ok {
				return fmt.Errorf("seed invoice %s references unknown client %s: %w", inv.ID, inv.ClientID, invoice.ErrInvalidInput)
			}
			if inv.ClientName == "" {
				inv.ClientName = name
			}
		}
		if inv.CategoryID != "" && inv.CategoryName == "" {
			inv.CategoryName = categories[inv.CategoryID]
		}
	}
	return nil
}

// isEmpty reports whether db holds no records at all
func isEmpty(db invoice.DB) (bool, error) {
	invoices, err := db.ListInvoices()
	if err != nil {
		return false, fmt.Errorf("listing invoices: %w", err)
	}
	clients, err := db.ListClients()
	if err != nil {
		return false, fmt.Errorf("listing clients: %w", err)
	}
	categories, err := db.ListCategories()
	if err != nil {
		return false, fmt.Errorf("listing categories: %w", err)
	}
	return len(invoices) == 0 && len(clients) == 0 && len(categories) == 0, nil
}

// Load writes the dataset in data to db. Unless force is set, a store that
// already holds records is left untouched. Records with the same ID are
// overwritten.
func Load(db invoice.DB, data []byte, force bool, now time.Time) (*Result, error) {
	ds, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if !force {
		empty, err := isEmpty(db)
		if err != nil {
			return nil, err
		}
		if !empty {
			slog.Info("Store already has data, skipping seed")
			return &Result{Skipped: true}, nil
		}
	}

	res := &Result{}
	for _, c := range ds.Categories {
		c.CreatedAt = now
		if c.Keywords == nil {
			c.Keywords = []string{}
		}
		if err := db.SaveCategory(&c); err != nil {
			return res, fmt.Errorf("saving category %s: %w", c.ID, err)
		}
		res.Categories++
	}
	for _, c := range ds.Clients {
		c.CreatedAt = now
		if c.Status == "" {
			c.Status = "active"
		}
		if err := db.SaveClient(&c); err != nil {
			return res, fmt.Errorf("saving client %s: %w", c.ID, err)
		}
		res.Clients++
	}
	for _, inv := range ds.Invoices {
		inv.CreatedAt = now
		inv.UpdatedAt = now
		if inv.Status == "" {
			inv.Status = invoice.StatusPending
		}
		if inv.Currency == "" {
			inv.Currency = "USD"
		}
		if inv.Items == nil {
			inv.Items = []invoice.LineItem{}
		}
		if err := db.SaveInvoice(&inv); err != nil {
			return res, fmt.Errorf("saving invoice %s: %w", inv.ID, err)
		}
		res.Invoices++
	}

	slog.Info("Seed data loaded",
		"categories", res.Categories,
		"clients", res.Clients,
		"invoices", res.Invoices,
	)
	return res, nil
}
