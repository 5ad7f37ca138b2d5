package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/shopbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	userID := time.Now().UnixNano()

	t.Run("Set and Get", func(t *testing.T) {
		err := store.Set(ctx, userID, domain.StateViewingCart)
		require.NoError(t, err, "Set should not return error")

		got, err := store.Get(ctx, userID)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, domain.StateViewingCart, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, userID, domain.StateBrowsingMenu))
		require.NoError(t, store.Set(ctx, userID, domain.StateAwaitingEmail))

		got, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateAwaitingEmail, got)
	})

	t.Run("Get Unknown", func(t *testing.T) {
		_, err := store.Get(ctx, userID+1)
		assert.ErrorIs(t, err, domain.ErrUnknownUser)
	})

	t.Run("Users Are Isolated", func(t *testing.T) {
		other := userID + 2
		require.NoError(t, store.Set(ctx, other, domain.StateInitial))
		require.NoError(t, store.Set(ctx, userID, domain.StateViewingProduct))

		got, err := store.Get(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, domain.StateInitial, got)
	})

	t.Run("All States Round Trip", func(t *testing.T) {
		for _, s := range domain.States() {
			require.NoError(t, store.Set(ctx, userID, s))
			got, err := store.Get(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})
}
