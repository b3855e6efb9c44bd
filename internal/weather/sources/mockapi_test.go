package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackoff keeps retry tests fast.
var testBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 5 * time.Millisecond,
	MaxInterval:     20 * time.Millisecond,
}

func newTestMockAPISource(t *testing.T, baseURL string, backoff BackoffConfig) *MockAPISource {
	t.Helper()
	src, err := NewMockAPISource(&http.Client{Timeout: 2 * time.Second}, baseURL, backoff)
	require.NoError(t, err)
	return src
}

func TestNewMockAPISourceValidation(t *testing.T) {
	httpClient := &http.Client{}

	_, err := NewMockAPISource(nil, "http://example.com", DefaultBackoff())
	assert.Error(t, err)

	_, err = NewMockAPISource(httpClient, "http://example.com", BackoffConfig{MaxRetries: -1, InitialInterval: time.Second})
	assert.Error(t, err)

	_, err = NewMockAPISource(httpClient, "http://example.com", BackoffConfig{MaxRetries: 3})
	assert.Error(t, err)

	_, err = NewMockAPISource(httpClient, "http://example.com", DefaultBackoff())
	assert.NoError(t, err)
}

func TestBackoffDelay(t *testing.T) {
	b := BackoffConfig{MaxRetries: 5, InitialInterval: 100 * time.Millisecond, MaxInterval: 500 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, b.delay(0))
	assert.Equal(t, 200*time.Millisecond, b.delay(1))
	assert.Equal(t, 400*time.Millisecond, b.delay(2))
	// Capped from here on.
	assert.Equal(t, 500*time.Millisecond, b.delay(3))
	assert.Equal(t, 500*time.Millisecond, b.delay(10))
}

func TestMockAPISourceEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/stations/baqueira-beret/now.json":
			w.Write([]byte(`{"timestamp":"2026-01-14T10:00:00Z","tempC":-3.5,"windKmh":22,"condition":"snow","confidence":0.85}`))
		case "/stations/baqueira-beret/forecast.json":
			assert.Equal(t, "72", r.URL.Query().Get("hours"))
			w.Write([]byte(`{"stationSlug":"baqueira-beret","horizonH":72,"points":[{"timestamp":"2026-01-14T12:00:00Z","band":"mid","tempC":-4,"windKmh":18,"snowCm":2,"confidence":0.8}]}`))
		case "/stations/baqueira-beret/webcams.json":
			w.Write([]byte(`[{"id":"cam-1","name":"Base","url":"https://example.com/1.jpg","active":true}]`))
		case "/stations/baqueira-beret/radar.json":
			w.Write([]byte(`{"region":"Val d'Aran","tileUrl":"https://radar.example/{z}/{x}/{y}.png"}`))
		case "/stations/baqueira-beret/profile.json":
			w.Write([]byte(`{"slug":"baqueira-beret","name":"Baqueira Beret","open":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	src := newTestMockAPISource(t, server.URL, testBackoff)
	ctx := context.Background()

	obs, err := src.GetNow(ctx, "baqueira-beret")
	require.NoError(t, err)
	assert.Equal(t, -3.5, obs.TempC)

	forecast, err := src.GetForecast(ctx, "baqueira-beret", 72)
	require.NoError(t, err)
	require.Len(t, forecast.Points, 1)
	assert.Equal(t, 2.0, forecast.Points[0].SnowCm)

	cams, err := src.GetWebcams(ctx, "baqueira-beret")
	require.NoError(t, err)
	require.Len(t, cams, 1)
	assert.True(t, cams[0].Active)

	radar, err := src.GetRadar(ctx, "baqueira-beret")
	require.NoError(t, err)
	assert.Equal(t, "Val d'Aran", radar.Region)

	profile, err := src.GetStationProfile(ctx, "baqueira-beret")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, profile.Open)
}

func TestMockAPISourceNullProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	src := newTestMockAPISource(t, server.URL, testBackoff)

	profile, err := src.GetStationProfile(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestMockAPISourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timestamp":"2026-01-14T10:00:00Z","tempC":-1,"windKmh":10,"condition":"clear","confidence":1}`))
	}))
	defer server.Close()

	src := newTestMockAPISource(t, server.URL, testBackoff)

	obs, err := src.GetNow(context.Background(), "baqueira-beret")
	require.NoError(t, err)
	assert.Equal(t, -1.0, obs.TempC)
	assert.Equal(t, int32(3), calls.Load())
}

func TestMockAPISourceGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := newTestMockAPISource(t, server.URL, testBackoff)

	_, err := src.GetNow(context.Background(), "baqueira-beret")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUpstreamFailure)
}

func TestMockAPISourceNotFoundDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := newTestMockAPISource(t, server.URL, BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond})

	_, err := src.GetNow(context.Background(), "nowhere")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMockAPISourceBreakersPerEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stations/baqueira-beret/radar.json" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timestamp":"2026-01-14T10:00:00Z","tempC":-1,"windKmh":10,"condition":"clear","confidence":1}`))
	}))
	defer server.Close()

	src := newTestMockAPISource(t, server.URL, testBackoff)
	ctx := context.Background()

	// Drive the radar breaker open: each call burns 3 attempts, and the
	// breaker trips after more than 5 consecutive failures.
	for i := 0; i < 3; i++ {
		_, err := src.GetRadar(ctx, "baqueira-beret")
		require.Error(t, err)
	}
	_, err := src.GetRadar(ctx, "baqueira-beret")
	require.Error(t, err)
	assert.ErrorIs(t, err, errCircuitOpen)

	// The now endpoint has its own breaker and keeps working.
	obs, err := src.GetNow(ctx, "baqueira-beret")
	require.NoError(t, err)
	assert.Equal(t, -1.0, obs.TempC)
}
