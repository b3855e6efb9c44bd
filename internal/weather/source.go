package weather

import (
	"context"
)

// DataSource abstracts where raw station weather comes from (HTTP mock tree,
// files, fixtures). Every call is independently awaitable and reports failure
// through the error return; implementations never signal failure with a
// silent nil payload.
type DataSource interface {
	GetNow(ctx context.Context, stationSlug string) (*CurrentObservation, error)
	GetForecast(ctx context.Context, stationSlug string, hours int) (*Forecast, error)
	GetWebcams(ctx context.Context, stationSlug string) ([]WebcamItem, error)
	GetRadar(ctx context.Context, stationSlug string) (*RadarInfo, error)
	GetStationProfile(ctx context.Context, stationSlug string) (*StationProfile, error)
}

// ObservationRecorder receives every observation that survives a successful
// load or refresh. The history store implements it.
type ObservationRecorder interface {
	Record(stationSlug string, obs CurrentObservation)
}
