// Package storetest holds behaviour checks shared by every docstore.Store
// backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	EmployeeID string     `json:"employeeId" firestore:"employeeId"`
	Date       string     `json:"date" firestore:"date"`
	StartTime  time.Time  `json:"startTime" firestore:"startTime"`
	EndTime    *time.Time `json:"endTime" firestore:"endTime"`
}

// Run exercises store. Each run works in fresh collections.
func Run(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()
	collection := "storetest_" + uuid.NewString()
	start := time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, collection, "missing")
		assert.ErrorIs(t, err, docstore.ErrDocumentNotFound)
	})

	t.Run("AddQueryUpdate", func(t *testing.T) {
		open, err := store.Add(ctx, collection, session{EmployeeID: "e1", Date: "2024-02-05", StartTime: start})
		require.NoError(t, err)
		_, err = store.Add(ctx, collection, session{EmployeeID: "e2", Date: "2024-02-05", StartTime: start})
		require.NoError(t, err)

		docs, err := store.Query(ctx, collection, docstore.Eq("employeeId", "e1"), docstore.Eq("endTime", nil))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, open, docs[0].ID())

		end := start.Add(8 * time.Hour)
		require.NoError(t, store.Update(ctx, collection, open, map[string]any{"endTime": end}))

		docs, err = store.Query(ctx, collection, docstore.Eq("employeeId", "e1"), docstore.Eq("endTime", nil))
		require.NoError(t, err)
		assert.Empty(t, docs)

		doc, err := store.Get(ctx, collection, open)
		require.NoError(t, err)
		var got session
		require.NoError(t, doc.DataTo(&got))
		require.NotNil(t, got.EndTime)
		assert.True(t, end.Equal(*got.EndTime))
		assert.Equal(t, "e1", got.EmployeeID)

		err = store.Update(ctx, collection, "missing", map[string]any{"endTime": end})
		assert.ErrorIs(t, err, docstore.ErrDocumentNotFound)
	})

	t.Run("SetAndMerge", func(t *testing.T) {
		status := collection + "_status"
		require.NoError(t, store.Set(ctx, status, "e1", map[string]any{"status": "on_duty", "isActive": true}, false))
		require.NoError(t, store.Set(ctx, status, "e1", map[string]any{"isActive": false}, true))

		doc, err := store.Get(ctx, status, "e1")
		require.NoError(t, err)
		var fields struct {
			Status   string `json:"status" firestore:"status"`
			IsActive bool   `json:"isActive" firestore:"isActive"`
		}
		require.NoError(t, doc.DataTo(&fields))
		assert.Equal(t, "on_duty", fields.Status)
		assert.False(t, fields.IsActive)

		require.NoError(t, store.Set(ctx, status, "e1", map[string]any{"isActive": true}, false))
		docs, err := store.Query(ctx, status, docstore.Eq("status", "on_duty"))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("UpdateWhereWritesOnce", func(t *testing.T) {
		requests := collection + "_requests"
		id, err := store.Add(ctx, requests, map[string]any{"status": "pending"})
		require.NoError(t, err)

		errResolved := errors.New("already resolved")
		pending := func(doc docstore.Document) error {
			var fields struct {
				Status string `json:"status" firestore:"status"`
			}
			if err := doc.DataTo(&fields); err != nil {
				return err
			}
			if fields.Status != "pending" {
				return errResolved
			}
			return nil
		}

		const writers = 4
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners []string
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				by := fmt.Sprintf("admin-%d", i)
				err := store.UpdateWhere(ctx, requests, id, pending, map[string]any{"status": "approved", "respondedBy": by})
				if err == nil {
					mu.Lock()
					winners = append(winners, by)
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, errResolved)
			}(i)
		}
		wg.Wait()
		require.Len(t, winners, 1)

		doc, err := store.Get(ctx, requests, id)
		require.NoError(t, err)
		var got struct {
			Status      string `json:"status" firestore:"status"`
			RespondedBy string `json:"respondedBy" firestore:"respondedBy"`
		}
		require.NoError(t, doc.DataTo(&got))
		assert.Equal(t, "approved", got.Status)
		assert.Equal(t, winners[0], got.RespondedBy)

		err = store.UpdateWhere(ctx, requests, "missing", pending, map[string]any{"status": "approved"})
		assert.ErrorIs(t, err, docstore.ErrDocumentNotFound)
	})
}
