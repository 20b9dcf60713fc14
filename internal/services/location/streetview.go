package location

import (
	"fmt"
	"net/url"
	"strconv"
)

const streetViewEndpoint = "https://maps.googleapis.com/maps/api/streetview"

// StreetViewURL builds a 600x400 Street View image URL for a point. It
// returns "" when no API key is configured.
func StreetViewURL(apiKey string, lat, lon float64) string {
	if apiKey == "" {
		return ""
	}
	return fmt.Sprintf("%s?size=600x400&location=%s,%s&key=%s",
		streetViewEndpoint,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
		url.QueryEscape(apiKey))
}
