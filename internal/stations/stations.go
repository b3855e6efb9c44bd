// Package stations holds the static resort station reference table.
// Profiles are read-only; there is no mutation API.
package stations

import (
	"strings"

	"github.com/manuelxose/appski-weather/internal/weather"
)

var profiles = []weather.StationProfile{
	{
		Slug:    "baqueira-beret",
		Name:    "Baqueira Beret",
		Region:  "Val d'Aran",
		Country: "ES",
		AltitudesM: map[weather.AltitudeBand]float64{
			weather.BandBase: 1500,
			weather.BandMid:  1950,
			weather.BandTop:  2510,
		},
		Lat:  42.6977,
		Lon:  0.9736,
		Open: true,
	},
	{
		Slug:    "sierra-nevada",
		Name:    "Sierra Nevada",
		Region:  "Granada",
		Country: "ES",
		AltitudesM: map[weather.AltitudeBand]float64{
			weather.BandBase: 2100,
			weather.BandMid:  2700,
			weather.BandTop:  3300,
		},
		Lat:  37.0931,
		Lon:  -3.3987,
		Open: true,
	},
	{
		Slug:    "formigal",
		Name:    "Formigal",
		Region:  "Huesca",
		Country: "ES",
		AltitudesM: map[weather.AltitudeBand]float64{
			weather.BandBase: 1550,
			weather.BandMid:  1850,
			weather.BandTop:  2250,
		},
		Lat:  42.7780,
		Lon:  -0.3545,
		Open: true,
	},
	{
		Slug:    "candanchu",
		Name:    "Candanchú",
		Region:  "Huesca",
		Country: "ES",
		AltitudesM: map[weather.AltitudeBand]float64{
			weather.BandBase: 1530,
			weather.BandMid:  1900,
			weather.BandTop:  2400,
		},
		Lat:  42.7890,
		Lon:  -0.5280,
		Open: false,
	},
}

// All returns the full profile table.
func All() []weather.StationProfile {
	return append([]weather.StationProfile(nil), profiles...)
}

// Lookup finds a profile by slug.
func Lookup(slug string) (weather.StationProfile, bool) {
	for _, p := range profiles {
		if p.Slug == slug {
			return p, true
		}
	}
	return weather.StationProfile{}, false
}

// DisplayName returns the station's display name, falling back to a
// title-cased version of the slug when no profile exists. A missing profile
// is a degraded display, not an error.
func DisplayName(slug string) string {
	if p, ok := Lookup(slug); ok {
		return p.Name
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
