package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuelxose/appski-weather/internal/weather"
)

func obsAt(ts time.Time, temp float64) weather.CurrentObservation {
	return weather.CurrentObservation{
		Timestamp:  ts,
		TempC:      temp,
		Condition:  weather.ConditionSnow,
		Confidence: 0.9,
	}
}

func TestRecordAndLatest(t *testing.T) {
	store := NewStore(0, 0)
	now := time.Now().UTC()

	store.Record("baqueira-beret", obsAt(now.Add(-2*time.Hour), -1))
	store.Record("baqueira-beret", obsAt(now.Add(-1*time.Hour), -2))
	store.Record("baqueira-beret", obsAt(now, -3))

	latest, err := store.Latest("baqueira-beret")
	require.NoError(t, err)
	assert.Equal(t, -3.0, latest.TempC)

	_, err = store.Latest("sierra-nevada")
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestCountRetention(t *testing.T) {
	store := NewStore(3, 0)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		store.Record("formigal", obsAt(now.Add(time.Duration(i)*time.Minute), float64(i)))
	}

	entries, err := store.Range("formigal", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Oldest entries were evicted.
	assert.Equal(t, 2.0, entries[0].TempC)
	assert.Equal(t, 4.0, entries[2].TempC)
}

func TestAgeRetention(t *testing.T) {
	store := NewStore(0, time.Hour)
	now := time.Now().UTC()

	store.Record("formigal", obsAt(now.Add(-3*time.Hour), -1))
	store.Record("formigal", obsAt(now.Add(-2*time.Hour), -2))
	store.Record("formigal", obsAt(now.Add(-10*time.Minute), -3))

	entries, err := store.Range("formigal", now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, -3.0, entries[0].TempC)
}

func TestRange(t *testing.T) {
	store := NewStore(0, 0)
	base := time.Date(2026, 1, 14, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		store.Record("baqueira-beret", obsAt(base.Add(time.Duration(i)*time.Hour), float64(i)))
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		entries, err := store.Range("baqueira-beret", base.Add(time.Hour), base.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 1.0, entries[0].TempC)
		assert.Equal(t, 2.0, entries[1].TempC)
	})

	t.Run("empty window yields no history", func(t *testing.T) {
		_, err := store.Range("baqueira-beret", base.Add(10*time.Hour), base.Add(12*time.Hour))
		assert.ErrorIs(t, err, ErrNoHistory)
	})

	t.Run("unknown station yields no history", func(t *testing.T) {
		_, err := store.Range("nowhere", base, base.Add(time.Hour))
		assert.ErrorIs(t, err, ErrNoHistory)
	})
}

func TestStationsAreIndependent(t *testing.T) {
	store := NewStore(0, 0)
	now := time.Now().UTC()

	store.Record("baqueira-beret", obsAt(now, -1))
	store.Record("sierra-nevada", obsAt(now, -5))

	a, err := store.Latest("baqueira-beret")
	require.NoError(t, err)
	b, err := store.Latest("sierra-nevada")
	require.NoError(t, err)

	assert.Equal(t, -1.0, a.TempC)
	assert.Equal(t, -5.0, b.TempC)
}
