// Package units provides the pure numeric conversions, formatters, and
// categorical classifiers used across the weather views. Nothing here
// holds state.
package units

import (
	"fmt"
	"math"
)

// Temperature.

func CToF(c float64) float64 { return c*9/5 + 32 }
func FToC(f float64) float64 { return (f - 32) * 5 / 9 }

// Wind speed.

func KmhToMs(kmh float64) float64 { return kmh / 3.6 }
func MsToKmh(ms float64) float64  { return ms * 3.6 }

// Distance and depth.

func KmToMi(km float64) float64      { return km * 0.621371 }
func CmToIn(cm float64) float64      { return cm / 2.54 }
func InToCm(in float64) float64      { return in * 2.54 }
func MetersToFeet(m float64) float64 { return m * 3.28084 }

// WindCategory is a categorical wind strength label.
type WindCategory string

const (
	WindCalm     WindCategory = "calm"
	WindModerate WindCategory = "moderate"
	WindStrong   WindCategory = "strong"
	WindExtreme  WindCategory = "extreme"
)

// ClassifyWind buckets a wind speed in km/h.
func ClassifyWind(kmh float64) WindCategory {
	switch {
	case kmh < 10:
		return WindCalm
	case kmh < 30:
		return WindModerate
	case kmh < 60:
		return WindStrong
	default:
		return WindExtreme
	}
}

// VisibilityRisk is a categorical risk label derived from visibility.
type VisibilityRisk string

const (
	VisibilityRiskNone   VisibilityRisk = "none"
	VisibilityRiskLow    VisibilityRisk = "low"
	VisibilityRiskMedium VisibilityRisk = "medium"
	VisibilityRiskHigh   VisibilityRisk = "high"
)

// ClassifyVisibility buckets visibility in meters. A nil reading means the
// station reports no restriction, which classifies as no risk.
func ClassifyVisibility(meters *float64) VisibilityRisk {
	if meters == nil {
		return VisibilityRiskNone
	}
	switch {
	case *meters < 200:
		return VisibilityRiskHigh
	case *meters < 1000:
		return VisibilityRiskMedium
	case *meters < 3000:
		return VisibilityRiskLow
	default:
		return VisibilityRiskNone
	}
}

// FormatTemp renders a temperature with one decimal, e.g. "-2.5°C".
func FormatTemp(c float64) string {
	return fmt.Sprintf("%.1f°C", c)
}

// FormatWind renders a wind speed rounded to whole km/h.
func FormatWind(kmh float64) string {
	return fmt.Sprintf("%d km/h", int(math.Round(kmh)))
}

// FormatSnowDepth renders a snow depth in whole centimeters; nil renders
// as a dash.
func FormatSnowDepth(cm *float64) string {
	if cm == nil {
		return "-"
	}
	return fmt.Sprintf("%d cm", int(math.Round(*cm)))
}

// FormatVisibility renders visibility in km with one decimal; nil renders
// as a dash.
func FormatVisibility(meters *float64) string {
	if meters == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f km", *meters/1000)
}
