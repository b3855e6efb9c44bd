package weather

import (
	"math"
	"time"
)

// Composite score weights and thresholds for the skiing window ranking.
const (
	windCutoffKmh = 60.0   // mean wind at or above this scores zero
	snowDivisorCm = 15.0   // mean snow that maps to a full snow score
	snowScoreCap  = 0.8    // applied when mean snow exceeds snowDivisorCm
	visDivisorM   = 3000.0 // mean visibility that maps to a full score
	visDefaultM   = 5000.0 // assumed visibility when a point reports none
	weightWind    = 0.4
	weightSnow    = 0.3
	weightVis     = 0.2
	weightConf    = 0.1
	windowSize    = 3
)

// FilterByBand returns the forecast points for one altitude band, preserving
// the original relative order. No deduplication, no sorting.
func FilterByBand(f *Forecast, band AltitudeBand) []ForecastPoint {
	if f == nil {
		return nil
	}
	var out []ForecastPoint
	for _, p := range f.Points {
		if p.Band == band {
			out = append(out, p)
		}
	}
	return out
}

// GenerateSummaries derives the three period summaries (today, tomorrow,
// weekend) for one band. Periods with no points yield a zeroed summary with
// condition "clear" and confidence 0; the function never fails and never
// omits a period. "Today" runs from the current instant through 23:59:59;
// "tomorrow" covers the next calendar day; "weekend" covers the next
// Saturday through the following Sunday. When today is already Saturday the
// weekend window starts today.
func GenerateSummaries(f *Forecast, band AltitudeBand) []PeriodSummary {
	now := clock.Now()
	points := FilterByBand(f, band)

	todayStart := now
	todayEnd := endOfDay(now)

	tomorrow := now.AddDate(0, 0, 1)
	tomorrowStart := startOfDay(tomorrow)
	tomorrowEnd := endOfDay(tomorrow)

	// (7 + Saturday - weekday) mod 7 resolves to 0 on a Saturday, so the
	// weekend window may start on the current day.
	daysToSaturday := (7 + int(time.Saturday) - int(now.Weekday())) % 7
	saturday := startOfDay(now.AddDate(0, 0, daysToSaturday))
	weekendEnd := endOfDay(saturday.AddDate(0, 0, 1))

	return []PeriodSummary{
		summarizePeriod(PeriodToday, todayStart, todayEnd, points),
		summarizePeriod(PeriodTomorrow, tomorrowStart, tomorrowEnd, points),
		summarizePeriod(PeriodWeekend, saturday, weekendEnd, points),
	}
}

func summarizePeriod(name PeriodName, start, end time.Time, points []ForecastPoint) PeriodSummary {
	var inside []ForecastPoint
	for _, p := range points {
		if !p.Timestamp.Before(start) && !p.Timestamp.After(end) {
			inside = append(inside, p)
		}
	}

	if len(inside) == 0 {
		return PeriodSummary{
			Period:    name,
			Start:     start,
			End:       end,
			Condition: ConditionClear,
		}
	}

	tempMin := inside[0].TempC
	tempMax := inside[0].TempC
	var snowSum, windMax, confSum float64
	for _, p := range inside {
		if p.TempC < tempMin {
			tempMin = p.TempC
		}
		if p.TempC > tempMax {
			tempMax = p.TempC
		}
		if p.WindKmh > windMax {
			windMax = p.WindKmh
		}
		snowSum += p.SnowCm
		confSum += p.Confidence
	}

	return PeriodSummary{
		Period:      name,
		Start:       start,
		End:         end,
		TempMinC:    tempMin,
		TempMaxC:    tempMax,
		SnowAccumCm: int(math.Round(snowSum)),
		WindMaxKmh:  windMax,
		Condition:   dominantCondition(inside),
		Confidence:  confSum / float64(len(inside)),
	}
}

// dominantCondition classifies a point set by precipitation totals and mean
// cloud cover. Branch order matters: heavy snow plus rain is "mix" even
// though the snow total alone would qualify as "snow".
func dominantCondition(points []ForecastPoint) Condition {
	var snowSum, rainSum, cloudSum float64
	for _, p := range points {
		snowSum += p.SnowCm
		rainSum += p.RainMm
		if p.CloudPct != nil {
			cloudSum += *p.CloudPct
		}
	}
	meanCloud := cloudSum / float64(len(points))

	switch {
	case snowSum > 5 && rainSum > 2:
		return ConditionMix
	case snowSum > 2:
		return ConditionSnow
	case rainSum > 5:
		return ConditionRain
	case meanCloud > 70:
		return ConditionCloudy
	default:
		return ConditionClear
	}
}

// FindBestSkiingWindow slides a 3-sample window across the band's points in
// their original array order and returns the highest-scoring one, or nil when
// fewer than 3 points exist for the band. Ties keep the earliest window.
// The score is the weighted sum of wind, snow, visibility, and confidence
// components, scaled to 0-100.
func FindBestSkiingWindow(f *Forecast, band AltitudeBand) *SkiingWindow {
	points := FilterByBand(f, band)
	if len(points) < windowSize {
		return nil
	}

	bestScore := -1.0
	var best SkiingWindow
	for i := 0; i+windowSize <= len(points); i++ {
		w := points[i : i+windowSize]
		score := windowScore(w)
		if score > bestScore {
			bestScore = score
			best = SkiingWindow{
				Start: w[0].Timestamp,
				End:   w[windowSize-1].Timestamp,
			}
		}
	}

	best.Score = int(math.Round(bestScore * 100))
	return &best
}

func windowScore(w []ForecastPoint) float64 {
	var windSum, snowSum, visSum, confSum float64
	for _, p := range w {
		windSum += p.WindKmh
		snowSum += p.SnowCm
		if p.VisibilityM != nil {
			visSum += *p.VisibilityM
		} else {
			visSum += visDefaultM
		}
		confSum += p.Confidence
	}
	n := float64(len(w))
	meanWind := windSum / n
	meanSnow := snowSum / n
	meanVis := visSum / n
	meanConf := confSum / n

	windScore := 0.0
	if meanWind < windCutoffKmh {
		windScore = 1 - meanWind/windCutoffKmh
	}

	snowScore := meanSnow / snowDivisorCm
	if meanSnow > snowDivisorCm {
		snowScore = snowScoreCap
	}

	visScore := meanVis / visDivisorM
	if visScore > 1 {
		visScore = 1
	}

	return weightWind*windScore + weightSnow*snowScore + weightVis*visScore + weightConf*meanConf
}

// AdjustObservationForBand returns a band-adjusted copy of an observation:
// temperature is offset per band (-3 at top, +2 at base) and only the snow
// depth matching the selected band is kept. This is the product's simplistic
// placeholder model, carried over as-is.
func AdjustObservationForBand(obs *CurrentObservation, band AltitudeBand) *CurrentObservation {
	if obs == nil {
		return nil
	}
	adjusted := *obs
	switch band {
	case BandTop:
		adjusted.TempC -= 3
		adjusted.SnowBaseCm = nil
	case BandBase:
		adjusted.TempC += 2
		adjusted.SnowTopCm = nil
	}
	return &adjusted
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
