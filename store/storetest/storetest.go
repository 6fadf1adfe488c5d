// ABOUTME: Shared behaviour tests every Store backend must pass
// ABOUTME: Run from each backend's test file with a constructor for a fresh store
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/harperreed/quotedesk/models"
	"github.com/harperreed/quotedesk/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Corrupter writes raw bytes under the lead collection key, bypassing Save.
type Corrupter func(t *testing.T, raw []byte)

// Run exercises s against the Store contract. corrupt may be nil when the
// backend cannot hold arbitrary bytes.
func Run(t *testing.T, newStore func(t *testing.T) (store.Store, Corrupter)) {
	t.Run("empty load", func(t *testing.T) {
		s, _ := newStore(t)
		result := s.Load(context.Background())
		assert.Empty(t, result.Records)
		assert.False(t, result.Recovered)
	})

	t.Run("save and load preserves order and unknown fields", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		records := []models.CustomerRecord{
			{ID: "b", FirstName: "Bo", Phone: "6155550000", Status: models.StatusQuoted},
			{ID: "a", FirstName: "Ann", Phone: "6155551234", Extra: map[string]json.RawMessage{"legacyScore": json.RawMessage(`7`)}},
		}
		require.NoError(t, s.Save(ctx, records))

		result := s.Load(ctx)
		require.False(t, result.Recovered)
		require.Len(t, result.Records, 2)
		assert.Equal(t, "b", result.Records[0].ID)
		assert.Equal(t, models.StatusQuoted, result.Records[0].Status)
		assert.JSONEq(t, `7`, string(result.Records[1].Extra["legacyScore"]))
	})

	t.Run("save replaces collection", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, []models.CustomerRecord{{ID: "a"}, {ID: "b"}}))
		require.NoError(t, s.Save(ctx, []models.CustomerRecord{{ID: "c"}}))

		result := s.Load(ctx)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "c", result.Records[0].ID)

		require.NoError(t, s.Save(ctx, nil))
		assert.Empty(t, s.Load(ctx).Records)
	})

	t.Run("corrupt collection recovers to empty", func(t *testing.T) {
		s, corrupt := newStore(t)
		if corrupt == nil {
			t.Skip("backend cannot hold corrupt state")
		}
		corrupt(t, []byte(`[{"id":"a",`))

		result := s.Load(context.Background())
		assert.Empty(t, result.Records)
		assert.True(t, result.Recovered)
		assert.NotEmpty(t, result.Reason)
	})

	t.Run("pending queue", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		pending, err := s.LoadPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		require.NoError(t, s.AppendPending(ctx, models.Submission{FirstName: "Ann", Phone: "6155551234"}))
		require.NoError(t, s.AppendPending(ctx, models.Submission{FirstName: "Bo", Phone: "6155550000"}))

		pending, err = s.LoadPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "Bo", pending[1].FirstName)

		require.NoError(t, s.ClearPending(ctx))
		pending, err = s.LoadPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		require.NoError(t, s.ClearPending(ctx))
	})

	t.Run("autosave per form", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		_, ok, err := s.LoadAutosave(ctx, "quote")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SaveAutosave(ctx, "quote", map[string]string{"firstName": "Ann"}))
		require.NoError(t, s.SaveAutosave(ctx, "admin", map[string]string{"firstName": "Bo"}))

		fields, ok, err := s.LoadAutosave(ctx, "quote")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Ann", fields["firstName"])

		require.NoError(t, s.ClearAutosave(ctx, "quote"))
		_, ok, err = s.LoadAutosave(ctx, "quote")
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = s.LoadAutosave(ctx, "admin")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("theme", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		theme, err := s.Theme(ctx)
		require.NoError(t, err)
		assert.Equal(t, store.DefaultTheme, theme)

		require.NoError(t, s.SetTheme(ctx, "dark"))
		theme, err = s.Theme(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dark", theme)
	})

	t.Run("removing pending keeps later submissions", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AppendPending(ctx, models.Submission{ID: "s1", Phone: "1"}))
		require.NoError(t, s.AppendPending(ctx, models.Submission{Timestamp: "2024-06-01T12:00:00Z", Phone: "2"}))
		snapshot, err := s.LoadPending(ctx)
		require.NoError(t, err)
		require.NoError(t, s.AppendPending(ctx, models.Submission{ID: "s3", Phone: "3"}))

		require.NoError(t, s.RemovePending(ctx, snapshot))
		pending, err := s.LoadPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "s3", pending[0].ID)

		require.NoError(t, s.RemovePending(ctx, nil))
		pending, err = s.LoadPending(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("clearing pending keeps leads", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, []models.CustomerRecord{{ID: "a"}}))
		require.NoError(t, s.AppendPending(ctx, models.Submission{Phone: "1"}))
		require.NoError(t, s.ClearPending(ctx))

		assert.Len(t, s.Load(ctx).Records, 1)
	})
}
