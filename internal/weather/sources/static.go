package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manuelxose/appski-weather/internal/weather"
)

// ErrStationUnknown is returned when a fixture source has no data for a slug.
var ErrStationUnknown = errors.New("unknown station")

// StationFixture bundles everything a StaticSource serves for one station.
type StationFixture struct {
	Profile  *weather.StationProfile
	Now      weather.CurrentObservation
	Forecast weather.Forecast
	Webcams  []weather.WebcamItem
	Radar    weather.RadarInfo
}

// StaticSource is an in-memory weather.DataSource used for tests and local
// development. It never does I/O and fails only for unknown stations.
type StaticSource struct {
	fixtures map[string]StationFixture
}

// NewStaticSource creates a source serving the given fixtures, keyed by slug.
func NewStaticSource(fixtures map[string]StationFixture) *StaticSource {
	return &StaticSource{fixtures: fixtures}
}

func (s *StaticSource) GetNow(_ context.Context, stationSlug string) (*weather.CurrentObservation, error) {
	fx, err := s.fixture(stationSlug)
	if err != nil {
		return nil, err
	}
	obs := fx.Now
	return &obs, nil
}

func (s *StaticSource) GetForecast(_ context.Context, stationSlug string, hours int) (*weather.Forecast, error) {
	fx, err := s.fixture(stationSlug)
	if err != nil {
		return nil, err
	}
	forecast := fx.Forecast
	if hours > 0 && hours < forecast.HorizonH {
		cutoff := forecast.Generated.Add(time.Duration(hours) * time.Hour)
		firstDay := forecast.Generated.Add(24 * time.Hour)

		// The accumulation totals must describe the served points, so they
		// are recomputed over the trimmed set (mid band, matching how the
		// fixtures compute them).
		var points []weather.ForecastPoint
		var snow24, snowTotal float64
		for _, p := range forecast.Points {
			if p.Timestamp.After(cutoff) {
				continue
			}
			points = append(points, p)
			if p.Band == weather.BandMid {
				if p.Timestamp.Before(firstDay) {
					snow24 += p.SnowCm
				}
				snowTotal += p.SnowCm
			}
		}
		forecast.Points = points
		forecast.HorizonH = hours
		forecast.Snow24hCm = snow24
		forecast.Snow72hCm = snowTotal
	}
	return &forecast, nil
}

func (s *StaticSource) GetWebcams(_ context.Context, stationSlug string) ([]weather.WebcamItem, error) {
	fx, err := s.fixture(stationSlug)
	if err != nil {
		return nil, err
	}
	return append([]weather.WebcamItem(nil), fx.Webcams...), nil
}

func (s *StaticSource) GetRadar(_ context.Context, stationSlug string) (*weather.RadarInfo, error) {
	fx, err := s.fixture(stationSlug)
	if err != nil {
		return nil, err
	}
	radar := fx.Radar
	return &radar, nil
}

func (s *StaticSource) GetStationProfile(_ context.Context, stationSlug string) (*weather.StationProfile, error) {
	fx, ok := s.fixtures[stationSlug]
	if !ok {
		// Absence of a profile is not a failure.
		return nil, nil
	}
	return fx.Profile, nil
}

func (s *StaticSource) fixture(slug string) (StationFixture, error) {
	fx, ok := s.fixtures[slug]
	if !ok {
		return StationFixture{}, fmt.Errorf("%w: %s", ErrStationUnknown, slug)
	}
	return fx, nil
}

// DefaultFixtures generates a plausible winter dataset for the bundled
// stations: 72 hours of 3-hourly points per altitude band, colder and
// windier toward the top.
func DefaultFixtures() map[string]StationFixture {
	fixtures := make(map[string]StationFixture)
	now := time.Now().UTC().Truncate(time.Hour)

	stations := []struct {
		slug    string
		name    string
		region  string
		country string
		baseAlt float64
	}{
		{"baqueira-beret", "Baqueira Beret", "Val d'Aran", "ES", 1500},
		{"sierra-nevada", "Sierra Nevada", "Granada", "ES", 2100},
		{"formigal", "Formigal", "Huesca", "ES", 1550},
	}

	for i, st := range stations {
		visibility := 4000.0
		snowBase := 80.0 + float64(i)*15
		snowTop := 140.0 + float64(i)*20
		newSnow := 12.0
		isoZero := 1200.0

		fx := StationFixture{
			Profile: &weather.StationProfile{
				Slug:    st.slug,
				Name:    st.name,
				Region:  st.region,
				Country: st.country,
				AltitudesM: map[weather.AltitudeBand]float64{
					weather.BandBase: st.baseAlt,
					weather.BandMid:  st.baseAlt + 450,
					weather.BandTop:  st.baseAlt + 900,
				},
				Lat:  42.7 - float64(i)*2.5,
				Lon:  0.9 + float64(i)*0.8,
				Open: true,
			},
			Now: weather.CurrentObservation{
				Timestamp:    now,
				TempC:        -2 + float64(i),
				WindKmh:      18,
				GustKmh:      32,
				VisibilityM:  &visibility,
				SnowBaseCm:   &snowBase,
				SnowTopCm:    &snowTop,
				NewSnow24hCm: &newSnow,
				IsoZeroM:     &isoZero,
				Condition:    weather.ConditionSnow,
				Confidence:   0.9,
				Sources: []weather.SourceContribution{
					{Name: "aemet", Weight: 0.6},
					{Name: "meteoblue", Weight: 0.4},
				},
			},
			Forecast: buildForecast(st.slug, now),
			Webcams: []weather.WebcamItem{
				{ID: st.slug + "-base", Name: st.name + " Base", URL: "https://cams.appski.example/" + st.slug + "/base.jpg", Active: true, Band: bandPtr(weather.BandBase)},
				{ID: st.slug + "-mid", Name: st.name + " Mid Mountain", URL: "https://cams.appski.example/" + st.slug + "/mid.jpg", Active: true, Band: bandPtr(weather.BandMid)},
				{ID: st.slug + "-top", Name: st.name + " Summit", URL: "https://cams.appski.example/" + st.slug + "/top.jpg", Active: true, Band: bandPtr(weather.BandTop)},
				{ID: st.slug + "-pano", Name: st.name + " Panorama", URL: "https://cams.appski.example/" + st.slug + "/pano.jpg", Active: true},
				{ID: st.slug + "-old", Name: st.name + " (retired)", URL: "https://cams.appski.example/" + st.slug + "/old.jpg", Active: false},
			},
			Radar: weather.RadarInfo{
				Region:    st.region,
				TileURL:   "https://radar.appski.example/" + st.slug + "/{z}/{x}/{y}.png",
				UpdatedAt: now,
			},
		}
		fixtures[st.slug] = fx
	}

	return fixtures
}

func buildForecast(slug string, now time.Time) weather.Forecast {
	bands := []weather.AltitudeBand{weather.BandBase, weather.BandMid, weather.BandTop}
	bandTempOffset := map[weather.AltitudeBand]float64{
		weather.BandBase: 2,
		weather.BandMid:  0,
		weather.BandTop:  -4,
	}
	bandWindOffset := map[weather.AltitudeBand]float64{
		weather.BandBase: -5,
		weather.BandMid:  0,
		weather.BandTop:  12,
	}

	forecast := weather.Forecast{
		StationSlug: slug,
		Generated:   now,
		HorizonH:    72,
	}

	var snow24, snow72 float64
	for h := 0; h < 72; h += 3 {
		ts := now.Add(time.Duration(h) * time.Hour)
		// A front passes during the second day.
		snowing := h >= 24 && h < 48
		for _, band := range bands {
			cloud := 30.0
			vis := 6000.0
			snow := 0.0
			if snowing {
				cloud = 90
				vis = 1500
				snow = 2.5
				if band == weather.BandTop {
					snow = 4
				}
			}
			point := weather.ForecastPoint{
				Timestamp:   ts,
				Band:        band,
				TempC:       -1 + bandTempOffset[band] - float64(h%24)/12,
				WindKmh:     15 + bandWindOffset[band],
				GustKmh:     25 + bandWindOffset[band]*1.5,
				SnowCm:      snow,
				RainMm:      0,
				CloudPct:    &cloud,
				VisibilityM: &vis,
				Confidence:  0.9 - float64(h)/240,
			}
			forecast.Points = append(forecast.Points, point)
			if band == weather.BandMid {
				if h < 24 {
					snow24 += snow
				}
				snow72 += snow
			}
		}
	}
	forecast.Snow24hCm = snow24
	forecast.Snow72hCm = snow72
	return forecast
}

func bandPtr(b weather.AltitudeBand) *weather.AltitudeBand {
	return &b
}
