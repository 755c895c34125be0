// Package firestore implements docstore.Store on Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type DocumentStore struct {
	client *firestore.Client
}

func NewDocumentStore(client *firestore.Client) *DocumentStore {
	return &DocumentStore{client: client}
}

var _ docstore.Store = (*DocumentStore)(nil)

type snapshot struct {
	snap *firestore.DocumentSnapshot
}

func (d snapshot) ID() string { return d.snap.Ref.ID }

func (d snapshot) DataTo(dst any) error { return d.snap.DataTo(dst) }

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// Get implements docstore.Store.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, docstore.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return snapshot{snap: snap}, nil
}

// Query implements docstore.Store.
func (s *DocumentStore) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []docstore.Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}
		docs = append(docs, snapshot{snap: snap})
	}
	return docs, nil
}

// Set implements docstore.Store.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields any, merge bool) error {
	ref := s.client.Collection(collection).Doc(id)
	var err error
	if merge {
		patch, ok := fields.(map[string]any)
		if !ok {
			return fmt.Errorf("merge set on %s/%s requires a map, got %T", collection, id, fields)
		}
		_, err = ref.Set(ctx, patch, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, fields)
	}
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update implements docstore.Store.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return docstore.ErrDocumentNotFound
		}
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return nil
}

// UpdateWhere implements docstore.Store inside a Firestore transaction, which
// retries when the document changes between the read and the write.
func (s *DocumentStore) UpdateWhere(ctx context.Context, collection, id string, check func(docstore.Document) error, fields map[string]any) error {
	ref := s.client.Collection(collection).Doc(id)
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return docstore.ErrDocumentNotFound
			}
			return fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
		}
		if err := check(snapshot{snap: snap}); err != nil {
			return err
		}
		return tx.Update(ref, updates)
	})
}

// Add implements docstore.Store.
func (s *DocumentStore) Add(ctx context.Context, collection string, fields any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("failed to add document to %s: %w", collection, err)
	}
	return ref.ID, nil
}
