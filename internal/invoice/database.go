package invoice

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	invoiceBucketName  = "invoices"
	clientBucketName   = "clients"
	categoryBucketName = "categories"
)

// DB defines the interface for database operations
type DB interface {
	// SaveInvoice creates or replaces an invoice
	SaveInvoice(invoice *Invoice) error

	// GetInvoice retrieves an invoice by ID
	GetInvoice(id string) (*Invoice, error)

	// ListInvoices returns all invoices
	ListInvoices() ([]*Invoice, error)

	// DeleteInvoice removes an invoice
	DeleteInvoice(id string) error

	SaveClient(client *Client) error
	GetClient(id string) (*Client, error)
	ListClients() ([]*Client, error)
	DeleteClient(id string) error

	SaveCategory(category *Category) error
	GetCategory(id string) (*Category, error)
	ListCategories() ([]*Category, error)
	DeleteCategory(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{invoiceBucketName, clientBucketName, categoryBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// put stores v as JSON under id in the named bucket
func (b *BoltDB) put(bucketName, id string, v any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", bucketName, err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(id), data)
	})
}

// get decodes the value under id in the named bucket into v
func (b *BoltDB) get(bucketName, kind, id string, v any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

// remove deletes id from the named bucket, failing when it is missing
func (b *BoltDB) remove(bucketName, kind, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

// each decodes every value in the named bucket, in key order
func each[T any](b *BoltDB, bucketName string) ([]*T, error) {
	items := make([]*T, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling %s %s: %w", bucketName, k, err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveInvoice saves an invoice to the database
func (b *BoltDB) SaveInvoice(invoice *Invoice) error {
	return b.put(invoiceBucketName, invoice.ID, invoice)
}

// GetInvoice retrieves an invoice by ID
func (b *BoltDB) GetInvoice(id string) (*Invoice, error) {
	var invoice Invoice
	if err := b.get(invoiceBucketName, "invoice", id, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListInvoices returns all invoices
func (b *BoltDB) ListInvoices() ([]*Invoice, error) {
	return each[Invoice](b, invoiceBucketName)
}

// DeleteInvoice removes an invoice from the database
func (b *BoltDB) DeleteInvoice(id string) error {
	return b.remove(invoiceBucketName, "invoice", id)
}

func (b *BoltDB) SaveClient(client *Client) error {
	return b.put(clientBucketName, client.ID, client)
}

func (b *BoltDB) GetClient(id string) (*Client, error) {
	var client Client
	if err := b.get(clientBucketName, "client", id, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (b *BoltDB) ListClients() ([]*Client, error) {
	return each[Client](b, clientBucketName)
}

func (b *BoltDB) DeleteClient(id string) error {
	return b.remove(clientBucketName, "client", id)
}

func (b *BoltDB) SaveCategory(category *Category) error {
	return b.put(categoryBucketName, category.ID, category)
}

func (b *BoltDB) GetCategory(id string) (*Category, error) {
	var category Category
	if err := b.get(categoryBucketName, "category", id, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (b *BoltDB) ListCategories() ([]*Category, error) {
	return each[Category](b, categoryBucketName)
}

func (b *BoltDB) DeleteCategory(id string) error {
	return b.remove(categoryBucketName, "category", id)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
