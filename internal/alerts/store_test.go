package alerts

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	getErr error
	setErr error
}

func (f *failingStorage) Get(string) (string, bool, error) { return "", false, f.getErr }
func (f *failingStorage) Set(string, string) error         { return f.setErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAlerts() []Alert {
	ts := time.Date(2026, 1, 14, 8, 0, 0, 0, time.UTC)
	return []Alert{
		{ID: "lift-maintenance", Type: SeverityInfo, Category: "lifts", Title: "Lift closed", Priority: 5, Dismissible: true, Timestamp: ts},
		{ID: "avalanche-risk", Type: SeverityDanger, Category: "safety", Title: "Avalanche risk", Priority: 1, Dismissible: false, Timestamp: ts},
		{ID: "road-chains", Type: SeverityWarning, Category: "access", Title: "Chains required", Priority: 2, Dismissible: true, Timestamp: ts},
		{ID: "early-season", Type: SeverityInfo, Category: "conditions", Title: "Limited terrain", Priority: 2, Dismissible: true, Timestamp: ts},
	}
}

func TestActiveAlertsOrdering(t *testing.T) {
	store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

	active := store.ActiveAlerts()
	require.Len(t, active, 4)

	assert.Equal(t, "avalanche-risk", active[0].ID)
	// Equal priorities keep their seed order.
	assert.Equal(t, "road-chains", active[1].ID)
	assert.Equal(t, "early-season", active[2].ID)
	assert.Equal(t, "lift-maintenance", active[3].ID)
}

func TestDismissAlert(t *testing.T) {
	t.Run("removes the alert from the active list", func(t *testing.T) {
		store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

		store.DismissAlert("road-chains")

		for _, a := range store.ActiveAlerts() {
			assert.NotEqual(t, "road-chains", a.ID)
		}
		assert.Equal(t, 1, store.DismissedCount())
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

		store.DismissAlert("road-chains")
		store.DismissAlert("road-chains")

		assert.Equal(t, 1, store.DismissedCount())
		assert.Len(t, store.ActiveAlerts(), 3)
	})

	t.Run("non-dismissible alerts can still be dismissed here", func(t *testing.T) {
		// The flag is presentation-level; the store does not enforce it.
		store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

		store.DismissAlert("avalanche-risk")

		assert.Len(t, store.ActiveAlerts(), 3)
	})

	t.Run("unknown ID is stored but matches nothing", func(t *testing.T) {
		store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

		store.DismissAlert("no-such-alert")

		assert.Equal(t, 1, store.DismissedCount())
		assert.Len(t, store.ActiveAlerts(), 4)
	})
}

func TestDismissedPersistence(t *testing.T) {
	t.Run("round-trips through memory storage", func(t *testing.T) {
		storage := NewMemoryStorage()

		first := NewStore(sampleAlerts(), storage, discardLogger())
		first.DismissAlert("road-chains")
		first.DismissAlert("lift-maintenance")

		raw, ok, err := storage.Get(StorageKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `["lift-maintenance","road-chains"]`, raw)

		second := NewStore(sampleAlerts(), storage, discardLogger())
		assert.Equal(t, 2, second.DismissedCount())
		assert.Len(t, second.ActiveAlerts(), 2)
	})

	t.Run("round-trips through file storage", func(t *testing.T) {
		storage, err := NewFileStorage(t.TempDir())
		require.NoError(t, err)

		first := NewStore(sampleAlerts(), storage, discardLogger())
		first.DismissAlert("early-season")

		second := NewStore(sampleAlerts(), storage, discardLogger())
		assert.Equal(t, 1, second.DismissedCount())
		for _, a := range second.ActiveAlerts() {
			assert.NotEqual(t, "early-season", a.ID)
		}
	})

	t.Run("stale persisted IDs are harmless", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(StorageKey, `["removed-last-season","road-chains"]`))

		store := NewStore(sampleAlerts(), storage, discardLogger())

		assert.Equal(t, 2, store.DismissedCount())
		assert.Len(t, store.ActiveAlerts(), 3)
	})

	t.Run("corrupt payload degrades to an empty set", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(StorageKey, `{"not":"an array"}`))

		store := NewStore(sampleAlerts(), storage, discardLogger())

		assert.Zero(t, store.DismissedCount())
		assert.Len(t, store.ActiveAlerts(), 4)
	})

	t.Run("failing storage never propagates errors", func(t *testing.T) {
		storage := &failingStorage{
			getErr: errors.New("disk gone"),
			setErr: errors.New("disk gone"),
		}

		store := NewStore(sampleAlerts(), storage, discardLogger())
		store.DismissAlert("road-chains")

		// Dismissal still takes effect for the session.
		assert.Equal(t, 1, store.DismissedCount())
		assert.Len(t, store.ActiveAlerts(), 3)
	})
}

func TestRestoreAlerts(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(sampleAlerts(), storage, discardLogger())

	store.DismissAlert("road-chains")
	store.DismissAlert("lift-maintenance")
	store.RestoreAlerts()

	assert.Zero(t, store.DismissedCount())
	assert.Len(t, store.ActiveAlerts(), 4)

	raw, ok, err := storage.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, raw)
}

func TestAddAlert(t *testing.T) {
	t.Run("new alerts join the active list in priority order", func(t *testing.T) {
		store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

		store.AddAlert(Alert{ID: "storm-incoming", Type: SeverityWarning, Category: "conditions", Priority: 0})

		active := store.ActiveAlerts()
		require.Len(t, active, 5)
		assert.Equal(t, "storm-incoming", active[0].ID)
	})

	t.Run("a previously dismissed ID stays hidden", func(t *testing.T) {
		store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())
		store.DismissAlert("storm-incoming")

		store.AddAlert(Alert{ID: "storm-incoming", Type: SeverityWarning, Priority: 0})

		assert.Len(t, store.ActiveAlerts(), 4)
	})
}

func TestFilters(t *testing.T) {
	store := NewStore(sampleAlerts(), NewMemoryStorage(), discardLogger())

	t.Run("by type", func(t *testing.T) {
		infos := store.ByType(SeverityInfo)
		require.Len(t, infos, 2)
		for _, a := range infos {
			assert.Equal(t, SeverityInfo, a.Type)
		}
		assert.Empty(t, store.ByType(Severity("unknown")))
	})

	t.Run("by category", func(t *testing.T) {
		safety := store.ByCategory("safety")
		require.Len(t, safety, 1)
		assert.Equal(t, "avalanche-risk", safety[0].ID)
	})

	t.Run("filters skip dismissed alerts", func(t *testing.T) {
		store.DismissAlert("lift-maintenance")
		assert.Len(t, store.ByType(SeverityInfo), 1)
		assert.Empty(t, store.ByCategory("lifts"))
	})
}
