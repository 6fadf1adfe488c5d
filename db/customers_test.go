// ABOUTME: Tests for the SQLite lead store
// ABOUTME: Runs the shared store contract plus SQLite-specific index checks
package db

import (
	"context"
	"testing"

	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/store"
	"github.com/harperreed/quotedesk/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (store.Store, storetest.Corrupter) {
		database := setupTestDB(t)
		s := NewSQLiteStore(database, nil)

		return s, func(t *testing.T, raw []byte) {
			_, err := database.Exec(`INSERT INTO customers (position, id, data) VALUES (999, 'bad', ?)`, string(raw))
			require.NoError(t, err)
		}
	})
}

func TestSQLiteStoreIndexesNormalizedPhone(t *testing.T) {
	database := setupTestDB(t)
	s := NewSQLiteStore(database, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []models.CustomerRecord{{ID: "a", Phone: "(615) 555-1234"}}))

	var phone string
	require.NoError(t, database.QueryRow(`SELECT phone FROM customers WHERE id = 'a'`).Scan(&phone))
	assert.Equal(t, "6155551234", phone)
}

func TestSQLiteStoreSaveIsAllOrNothing(t *testing.T) {
	database := setupTestDB(t)
	s := NewSQLiteStore(database, nil)

	require.NoError(t, s.Save(context.Background(), []models.CustomerRecord{{ID: "a"}, {ID: "b"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Save(ctx, []models.CustomerRecord{{ID: "c"}}))

	result := s.Load(context.Background())
	require.Len(t, result.Records, 2)
	assert.Equal(t, "a", result.Records[0].ID)
}

func TestSQLiteStoreLoadFailureIsNotRecovery(t *testing.T) {
	database := setupTestDB(t)
	s := NewSQLiteStore(database, nil)
	require.NoError(t, s.Save(context.Background(), []models.CustomerRecord{{ID: "a"}}))
	require.NoError(t, database.Close())

	result := s.Load(context.Background())
	assert.Error(t, result.Err)
	assert.False(t, result.Recovered)
	assert.Empty(t, result.Records)
}
