package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/manuelxose/appski-weather/internal/alerts"
	"github.com/manuelxose/appski-weather/internal/history"
	"github.com/manuelxose/appski-weather/internal/observability"
	"github.com/manuelxose/appski-weather/internal/stations"
	"github.com/manuelxose/appski-weather/internal/weather"
)

var validate = validator.New()

// Deps bundles the stores the HTTP layer reads from.
type Deps struct {
	Weather *weather.Store
	Alerts  *alerts.Store
	History *history.Store
	Metrics *observability.Metrics

	// loadMu serializes on-demand station loads; overlapping LoadStation
	// calls have last-write-wins semantics the API must not rely on.
	loadMu sync.Mutex
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps *Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		return c.JSON(stations.All())
	})

	v1.Get("/stations/:slug", func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		profile, ok := stations.Lookup(slug)
		if !ok {
			// Unknown stations degrade to a display-name fallback.
			return c.JSON(fiber.Map{
				"slug": slug,
				"name": stations.DisplayName(slug),
			})
		}
		return c.JSON(profile)
	})

	v1.Get("/stations/:slug/now", func(c *fiber.Ctx) error {
		if err := deps.ensureStation(c); err != nil {
			return err
		}
		obs := deps.Weather.ObservationForBand()
		if obs == nil {
			return fiber.NewError(fiber.StatusNotFound, "no current conditions available")
		}
		return c.JSON(obs)
	})

	v1.Get("/stations/:slug/forecast", func(c *fiber.Ctx) error {
		if err := deps.ensureStation(c); err != nil {
			return err
		}
		forecast := deps.Weather.Forecast()
		if forecast == nil {
			return fiber.NewError(fiber.StatusNotFound, "no forecast available")
		}
		return c.JSON(fiber.Map{
			"stationSlug": forecast.StationSlug,
			"band":        deps.Weather.Band(),
			"points":      deps.Weather.PointsForBand(),
			"snow24hCm":   forecast.Snow24hCm,
			"snow72hCm":   forecast.Snow72hCm,
		})
	})

	v1.Get("/stations/:slug/summaries", func(c *fiber.Ctx) error {
		if err := deps.ensureStation(c); err != nil {
			return err
		}
		return c.JSON(deps.Weather.Summaries())
	})

	v1.Get("/stations/:slug/best-window", func(c *fiber.Ctx) error {
		if err := deps.ensureStation(c); err != nil {
			return err
		}
		window := deps.Weather.BestWindow()
		if window == nil {
			return fiber.NewError(fiber.StatusNotFound, "not enough forecast points for a skiing window")
		}
		return c.JSON(window)
	})

	v1.Get("/stations/:slug/webcams", func(c *fiber.Ctx) error {
		if err := deps.ensureStation(c); err != nil {
			return err
		}
		return c.JSON(deps.Weather.ActiveWebcams())
	})

	v1.Get("/stations/:slug/radar", func(c *fiber.Ctx) error {
		if err := deps.ensureStation(c); err != nil {
			return err
		}
		radar := deps.Weather.Radar()
		if radar == nil {
			return fiber.NewError(fiber.StatusNotFound, "no radar available")
		}
		return c.JSON(radar)
	})

	v1.Get("/stations/:slug/history", func(c *fiber.Ctx) error {
		req, err := parseHistoryQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		observations, err := deps.History.Range(c.Params("slug"), req.From, req.To)
		if err != nil {
			if errors.Is(err, history.ErrNoHistory) {
				return fiber.NewError(fiber.StatusNotFound, "no observation history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch observation history")
		}
		return c.JSON(fiber.Map{
			"stationSlug":  c.Params("slug"),
			"from":         req.From,
			"to":           req.To,
			"observations": observations,
		})
	})

	v1.Get("/alerts", func(c *fiber.Ctx) error {
		if sev := c.Query("type"); sev != "" {
			return c.JSON(deps.Alerts.ByType(alerts.Severity(sev)))
		}
		if cat := c.Query("category"); cat != "" {
			return c.JSON(deps.Alerts.ByCategory(cat))
		}
		return c.JSON(deps.Alerts.ActiveAlerts())
	})

	v1.Post("/alerts/:id/dismiss", func(c *fiber.Ctx) error {
		deps.Alerts.DismissAlert(c.Params("id"))
		deps.Metrics.DismissedAlerts.Set(float64(deps.Alerts.DismissedCount()))
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/alerts/restore", func(c *fiber.Ctx) error {
		deps.Alerts.RestoreAlerts()
		deps.Metrics.DismissedAlerts.Set(0)
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ensureStation loads the requested station into the weather store when it
// is not the one currently held, and applies the band selection from the
// query string.
func (d *Deps) ensureStation(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return fiber.NewError(fiber.StatusBadRequest, "station slug is required")
	}

	band, err := parseBandQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	if d.Weather.StationSlug() != slug {
		if err := d.Weather.LoadStation(c.Context(), slug); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, d.Weather.LastError())
		}
	}
	d.Weather.SelectBand(band)
	return nil
}

// bandQuery holds the validated altitude band selection.
type bandQuery struct {
	Band string `validate:"omitempty,oneof=base mid top"`
}

func parseBandQuery(c *fiber.Ctx) (weather.AltitudeBand, error) {
	q := bandQuery{Band: c.Query("band")}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	if q.Band == "" {
		return weather.BandMid, nil
	}
	return weather.AltitudeBand(q.Band), nil
}

// historyQuery is the validated time range for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func parseHistoryQuery(c *fiber.Ctx) (historyQuery, error) {
	from, err := parseTimestamp(c.Query("from"))
	if err != nil {
		return historyQuery{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseTimestamp(c.Query("to"))
	if err != nil {
		return historyQuery{}, fmt.Errorf("to: %w", err)
	}

	q := historyQuery{From: from, To: to}
	if err := validate.Struct(q); err != nil {
		return historyQuery{}, err
	}
	return q, nil
}

// parseTimestamp accepts Unix seconds or RFC3339.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing required time bound")
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid time; use RFC3339 or unix seconds")
	}
	return ts, nil
}
