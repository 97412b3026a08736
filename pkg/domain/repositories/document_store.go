package repositories

import "context"

// Collection names a group of documents in the store.
type Collection string

const (
	Parts     Collection = "parts"
	BOMs      Collection = "boms"
	Inventory Collection = "inventory"
	Quotes    Collection = "quotes"
	Orders    Collection = "orders"
)

// Collections lists every collection the application reads.
var Collections = []Collection{Parts, BOMs, Inventory, Quotes, Orders}

// Document is a stored JSON object and its store-assigned id.
type Document struct {
	ID   string
	Body []byte
}

// DocumentStore persists JSON documents keyed by collection and id.
type DocumentStore interface {
	// Create stores doc, marshalled as a JSON object, and returns its new id.
	Create(ctx context.Context, collection Collection, doc any) (string, error)
	// Update merges the top-level fields of patch into an existing document.
	// A missing document yields entities.ErrNotFound.
	Update(ctx context.Context, collection Collection, id string, patch any) error
	// ListAll returns every document in the collection in creation order.
	ListAll(ctx context.Context, collection Collection) ([]Document, error)
	// Delete removes a document. A missing document yields entities.ErrNotFound.
	Delete(ctx context.Context, collection Collection, id string) error
}
