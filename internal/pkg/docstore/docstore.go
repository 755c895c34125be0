// Package docstore describes the document store the service keeps its
// records in. Backends live under internal/repository (postgresql, firestore)
// plus the in-memory Memory store in this package.
package docstore

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
)

var ErrDocumentNotFound = apperr.NotFound("document not found")

// Filter is an equality filter on a top-level field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Document is a stored record as returned by Get and Query.
type Document interface {
	ID() string
	// DataTo decodes the document into dst, a pointer to a struct carrying
	// matching json and firestore tags.
	DataTo(dst any) error
}

// Store is a collection/id keyed document store. Every call is a single
// attempt; there is no multi-document transaction.
type Store interface {
	// Get returns ErrDocumentNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query returns the documents matching all filters, in no particular order.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Set writes the document. With merge, fields must be a map and only
	// the given top-level fields are replaced.
	Set(ctx context.Context, collection, id string, fields any, merge bool) error
	// Update replaces the given top-level fields of an existing document and
	// returns ErrDocumentNotFound when it does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// UpdateWhere is Update guarded by check, which sees the current document
	// and runs atomically with the write. A non-nil error from check aborts
	// the update and is returned unchanged.
	UpdateWhere(ctx context.Context, collection, id string, check func(Document) error, fields map[string]any) error
	// Add stores a new document under a generated id.
	Add(ctx context.Context, collection string, fields any) (string, error)
}
