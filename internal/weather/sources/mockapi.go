package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/manuelxose/appski-weather/internal/weather"
)

// MockAPISource implements weather.DataSource against the platform's static
// mock-JSON tree, served over HTTP:
//
//	<base>/stations/<slug>/now.json
//	<base>/stations/<slug>/forecast.json?hours=<n>
//	<base>/stations/<slug>/webcams.json
//	<base>/stations/<slug>/radar.json
//	<base>/stations/<slug>/profile.json
//
// An unknown station profile is published as a JSON "null" body; that decodes
// to a nil profile without an error, keeping failure distinguishable from
// absence.
type MockAPISource struct {
	baseURL string
	client  *retryClient
}

// NewMockAPISource creates a source rooted at baseURL. Each endpoint gets
// its own circuit breaker; the backoff settings apply to all of them.
func NewMockAPISource(httpClient *http.Client, baseURL string, backoff BackoffConfig) (*MockAPISource, error) {
	client, err := newRetryClient(httpClient, backoff)
	if err != nil {
		return nil, err
	}
	return &MockAPISource{baseURL: baseURL, client: client}, nil
}

func (s *MockAPISource) GetNow(ctx context.Context, stationSlug string) (*weather.CurrentObservation, error) {
	var obs weather.CurrentObservation
	if err := s.client.getJSON(ctx, "now", s.stationPath(stationSlug, "now.json"), &obs); err != nil {
		return nil, err
	}
	return &obs, nil
}

func (s *MockAPISource) GetForecast(ctx context.Context, stationSlug string, hours int) (*weather.Forecast, error) {
	u := fmt.Sprintf("%s?hours=%d", s.stationPath(stationSlug, "forecast.json"), hours)

	var forecast weather.Forecast
	if err := s.client.getJSON(ctx, "forecast", u, &forecast); err != nil {
		return nil, err
	}
	return &forecast, nil
}

func (s *MockAPISource) GetWebcams(ctx context.Context, stationSlug string) ([]weather.WebcamItem, error) {
	var cams []weather.WebcamItem
	if err := s.client.getJSON(ctx, "webcams", s.stationPath(stationSlug, "webcams.json"), &cams); err != nil {
		return nil, err
	}
	return cams, nil
}

func (s *MockAPISource) GetRadar(ctx context.Context, stationSlug string) (*weather.RadarInfo, error) {
	var radar weather.RadarInfo
	if err := s.client.getJSON(ctx, "radar", s.stationPath(stationSlug, "radar.json"), &radar); err != nil {
		return nil, err
	}
	return &radar, nil
}

func (s *MockAPISource) GetStationProfile(ctx context.Context, stationSlug string) (*weather.StationProfile, error) {
	var profile *weather.StationProfile
	if err := s.client.getJSON(ctx, "profile", s.stationPath(stationSlug, "profile.json"), &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *MockAPISource) stationPath(slug, file string) string {
	return fmt.Sprintf("%s/stations/%s/%s", s.baseURL, url.PathEscape(slug), file)
}
