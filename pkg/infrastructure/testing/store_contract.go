package testing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
)

// RunDocumentStoreContract checks the behaviour every DocumentStore backend shares.
func RunDocumentStoreContract(t *testing.T, newStore func(t *testing.T) repositories.DocumentStore) {
	ctx := context.Background()

	t.Run("create then list in creation order", func(t *testing.T) {
		store := newStore(t)
		first, err := store.Create(ctx, repositories.Parts, map[string]any{"partNumber": "A"})
		require.NoError(t, err)
		second, err := store.Create(ctx, repositories.Parts, map[string]any{"partNumber": "B"})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		docs, err := store.ListAll(ctx, repositories.Parts)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, first, docs[0].ID)
		assert.Equal(t, second, docs[1].ID)
		assert.JSONEq(t, `{"partNumber":"A"}`, string(docs[0].Body))
	})

	t.Run("collections are isolated", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Create(ctx, repositories.Orders, map[string]any{"supplier": "Acme"})
		require.NoError(t, err)

		docs, err := store.ListAll(ctx, repositories.Quotes)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("update merges top-level fields", func(t *testing.T) {
		store := newStore(t)
		id, err := store.Create(ctx, repositories.Inventory, map[string]any{
			"partId": "p1", "currentStock": 3, "status": "low",
		})
		require.NoError(t, err)

		require.NoError(t, store.Update(ctx, repositories.Inventory, id, map[string]any{"status": "normal"}))

		docs, err := store.ListAll(ctx, repositories.Inventory)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(docs[0].Body, &fields))
		assert.Equal(t, "p1", fields["partId"])
		assert.Equal(t, float64(3), fields["currentStock"])
		assert.Equal(t, "normal", fields["status"])
	})

	t.Run("update missing document", func(t *testing.T) {
		store := newStore(t)
		err := store.Update(ctx, repositories.Parts, "missing", map[string]any{"name": "x"})
		assert.True(t, errors.Is(err, entities.ErrNotFound), "got %v", err)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		a, err := store.Create(ctx, repositories.BOMs, map[string]any{"name": "a"})
		require.NoError(t, err)
		b, err := store.Create(ctx, repositories.BOMs, map[string]any{"name": "b"})
		require.NoError(t, err)
		c, err := store.Create(ctx, repositories.BOMs, map[string]any{"name": "c"})
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, repositories.BOMs, b))
		err = store.Delete(ctx, repositories.BOMs, b)
		assert.True(t, errors.Is(err, entities.ErrNotFound), "got %v", err)

		docs, err := store.ListAll(ctx, repositories.BOMs)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, a, docs[0].ID)
		assert.Equal(t, c, docs[1].ID)

		require.NoError(t, store.Update(ctx, repositories.BOMs, c, map[string]any{"name": "c2"}))
	})

	t.Run("non-object documents are rejected", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Create(ctx, repositories.Parts, []string{"a"})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		store := newStore(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.ListAll(cancelled, repositories.Parts)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
