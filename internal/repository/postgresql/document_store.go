package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops)`,
}

// DocumentStore keeps every collection in one JSONB table.
type DocumentStore struct {
	db *database.DB
}

func NewDocumentStore(db *database.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

var _ docstore.Store = (*DocumentStore)(nil)

// EnsureSchema creates the documents table when missing.
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	return WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)
		for _, stmt := range schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}

// Get implements docstore.Store.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	q := GetQuerier(ctx, s.db)

	var raw []byte
	err := q.QueryRow(ctx, `SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return docstore.NewJSONDocument(id, raw), nil
}

// Query implements docstore.Store. Filters become one JSONB containment
// check, so a nil value matches an explicit JSON null only.
func (s *DocumentStore) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	q := GetQuerier(ctx, s.db)

	match := make(map[string]any, len(filters))
	for _, f := range filters {
		match[f.Field] = f.Value
	}
	pattern, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filters: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, data
		FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
	`, collection, string(pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, docstore.NewJSONDocument(id, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	return docs, nil
}

// Set implements docstore.Store.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields any, merge bool) error {
	if merge {
		if _, ok := fields.(map[string]any); !ok {
			return fmt.Errorf("merge set on %s/%s requires a map, got %T", collection, id, fields)
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = NOW()
	`
	if merge {
		query = `
			INSERT INTO documents (collection, id, data)
			VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (collection, id) DO UPDATE
			SET data = documents.data || EXCLUDED.data, updated_at = NOW()
		`
	}

	q := GetQuerier(ctx, s.db)
	if _, err := q.Exec(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update implements docstore.Store.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	q := GetQuerier(ctx, s.db)
	tag, err := q.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrDocumentNotFound
	}
	return nil
}

// UpdateWhere implements docstore.Store. The row is locked with FOR UPDATE
// while check runs.
func (s *DocumentStore) UpdateWhere(ctx context.Context, collection, id string, check func(docstore.Document) error, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	return WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		var current []byte
		err := q.QueryRow(ctx, `
			SELECT data FROM documents
			WHERE collection = $1 AND id = $2
			FOR UPDATE
		`, collection, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return docstore.ErrDocumentNotFound
			}
			return fmt.Errorf("failed to lock document %s/%s: %w", collection, id, err)
		}
		if err := check(docstore.NewJSONDocument(id, current)); err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `
			UPDATE documents
			SET data = data || $3::jsonb, updated_at = NOW()
			WHERE collection = $1 AND id = $2
		`, collection, id, string(raw)); err != nil {
			return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// Add implements docstore.Store.
func (s *DocumentStore) Add(ctx context.Context, collection string, fields any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, fields, false); err != nil {
		return "", err
	}
	return id, nil
}
