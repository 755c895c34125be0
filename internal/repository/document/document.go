// Package document implements the domain repositories on top of a
// docstore.Store, so the same code runs against Postgres, Firestore and the
// in-memory store.
package document

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
)

// Collection names.
const (
	CollectionUsers      = "users"
	CollectionAttendance = "attendance"
	CollectionLeaves     = "leaves"
	CollectionDutyStatus = "duty_status"
)

// decodeAll decodes docs into T and lets setID copy the document id.
func decodeAll[T any](docs []docstore.Document, setID func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", doc.ID(), err)
		}
		setID(&v, doc.ID())
		out = append(out, v)
	}
	return out, nil
}

// notFoundAs swaps the store's not-found error for a domain one.
func notFoundAs(err error, domainErr error) error {
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return domainErr
	}
	return err
}
