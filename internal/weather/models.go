package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionCloudy Condition = "cloudy"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionMix    Condition = "mix"
	ConditionFog    Condition = "fog"
	ConditionStorm  Condition = "storm"
)

// AltitudeBand is one of the three fixed elevation tiers at which weather
// is independently reported for a resort.
type AltitudeBand string

const (
	BandBase AltitudeBand = "base"
	BandMid  AltitudeBand = "mid"
	BandTop  AltitudeBand = "top"
)

// ValidBand reports whether b is one of the three known bands.
func ValidBand(b AltitudeBand) bool {
	switch b {
	case BandBase, BandMid, BandTop:
		return true
	}
	return false
}

// SourceContribution describes a single upstream source fused into an observation.
type SourceContribution struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// CurrentObservation is a single fused weather reading for a station at a
// point in time. It is a value object: replaced wholesale on refresh,
// never patched field-by-field.
type CurrentObservation struct {
	Timestamp    time.Time `json:"timestamp"` // always UTC
	TempC        float64   `json:"tempC"`
	WindKmh      float64   `json:"windKmh"`
	GustKmh      float64   `json:"gustKmh"`
	VisibilityM  *float64  `json:"visibilityM"`
	SnowBaseCm   *float64  `json:"snowBaseCm"`
	SnowTopCm    *float64  `json:"snowTopCm"`
	NewSnow24hCm *float64  `json:"newSnow24hCm"`
	IsoZeroM     *float64  `json:"isoZeroM"` // zero-isotherm altitude
	Condition    Condition `json:"condition"`
	Confidence   float64   `json:"confidence"` // [0,1]

	Sources []SourceContribution `json:"sources,omitempty"`
}

// ForecastPoint is one (time, altitude band) forecast sample.
type ForecastPoint struct {
	Timestamp   time.Time    `json:"timestamp"`
	Band        AltitudeBand `json:"band"`
	TempC       float64      `json:"tempC"`
	WindKmh     float64      `json:"windKmh"`
	GustKmh     float64      `json:"gustKmh"`
	SnowCm      float64      `json:"snowCm"` // snow precipitation
	RainMm      float64      `json:"rainMm"` // rain precipitation
	IsoZeroM    *float64     `json:"isoZeroM"`
	CloudPct    *float64     `json:"cloudPct"`
	VisibilityM *float64     `json:"visibilityM"`
	Confidence  float64      `json:"confidence"`
}

// Forecast is an ordered sequence of points for one station over a fixed
// horizon, plus precomputed accumulation totals. Points are not required to
// be uniformly spaced, and consumers must not assume sorted order; every
// aggregation works by filtering and grouping, never positional indexing.
type Forecast struct {
	StationSlug string          `json:"stationSlug"`
	Generated   time.Time       `json:"generated"`
	HorizonH    int             `json:"horizonHours"`
	Points      []ForecastPoint `json:"points"`
	Snow24hCm   float64         `json:"snow24hCm"`
	Snow72hCm   float64         `json:"snow72hCm"`
}

// PeriodName identifies one of the three derived summary periods.
type PeriodName string

const (
	PeriodToday    PeriodName = "today"
	PeriodTomorrow PeriodName = "tomorrow"
	PeriodWeekend  PeriodName = "weekend"
)

// PeriodSummary is an aggregate over the forecast points that fall inside a
// named calendar period for one band. Derived, never persisted.
type PeriodSummary struct {
	Period      PeriodName `json:"period"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	TempMinC    float64    `json:"tempMinC"`
	TempMaxC    float64    `json:"tempMaxC"`
	SnowAccumCm int        `json:"snowAccumCm"`
	WindMaxKmh  float64    `json:"windMaxKmh"`
	Condition   Condition  `json:"condition"`
	Confidence  float64    `json:"confidence"`
}

// SkiingWindow is a contiguous 3-sample slice of a band's forecast ranked by
// a composite desirability score, already scaled to 0-100.
type SkiingWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Score int       `json:"score"`
}

// WebcamItem describes one resort webcam feed.
type WebcamItem struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Active bool          `json:"active"`
	Band   *AltitudeBand `json:"band,omitempty"` // nil = not tied to a band
}

// RadarInfo points at the precipitation radar overlay for a region.
type RadarInfo struct {
	Region    string    `json:"region"`
	TileURL   string    `json:"tileUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StationProfile is the static reference entity for one resort station.
// Profiles are loaded once from a fixed table and never mutated.
type StationProfile struct {
	Slug       string                   `json:"slug"`
	Name       string                   `json:"name"`
	Region     string                   `json:"region"`
	Country    string                   `json:"country"`
	AltitudesM map[AltitudeBand]float64 `json:"altitudesM"`
	Lat        float64                  `json:"lat"`
	Lon        float64                  `json:"lon"`
	Open       bool                     `json:"open"`
}
