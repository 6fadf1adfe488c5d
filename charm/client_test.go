// ABOUTME: Tests for the charm KV driver using an offline badger backend
// ABOUTME: Runs the shared store contract and checks key listing and reset
package charm

import (
	"context"
	"testing"

	"github.com/harperreed/quotedesk/store"
	"github.com/harperreed/quotedesk/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharmStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (store.Store, storetest.Corrupter) {
		c, cleanup := NewTestClient(t)
		t.Cleanup(cleanup)

		return store.NewKVStore(c, nil), func(t *testing.T, raw []byte) {
			require.NoError(t, c.Set(context.Background(), store.KeyCustomers, raw))
		}
	})
}

func TestClientMissingKey(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, c.Delete(context.Background(), "missing"))
}

func TestClientKeysAndReset(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, store.KeyTheme, []byte("dark")))
	require.NoError(t, c.Set(ctx, store.AutosaveKey("quote"), []byte(`{}`)))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"theme", "autosave:quote"}, keys)

	require.NoError(t, c.Reset())
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOfflineClientIsConnected(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	assert.True(t, c.IsConnected())
	assert.NoError(t, c.Sync())
	assert.False(t, c.Config().AutoSync)
}
