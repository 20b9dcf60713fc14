package model

// Coordinate is a point in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within latitude/longitude bounds
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// CrimeCategory is a coarse grouping of offense descriptions
type CrimeCategory string

const (
	CategoryViolent     CrimeCategory = "violent"
	CategoryProperty    CrimeCategory = "property"
	CategoryDrug        CrimeCategory = "drug"
	CategoryPublicOrder CrimeCategory = "public_order"
	CategoryOther       CrimeCategory = "other"
)

// Enrichment is display metadata attached to a location. It never contains
// the coordinates themselves.
type Enrichment struct {
	StreetViewURL string        `json:"street_view_url"`
	Offense       string        `json:"offense,omitempty"`
	Category      CrimeCategory `json:"category,omitempty"`
	Borough       string        `json:"borough,omitempty"`
}

// Location is a secret round target plus its enrichment
type Location struct {
	Coordinate
	Enrichment Enrichment
}

// PublicLocation is the part of a location that may be shown while a round is
// being played
type PublicLocation struct {
	StreetViewURL string        `json:"street_view_url"`
	Offense       string        `json:"offense,omitempty"`
	Category      CrimeCategory `json:"category,omitempty"`
}

// RevealedLocation is sent once a round has been scored
type RevealedLocation struct {
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
	StreetViewURL string        `json:"street_view_url"`
	Offense       string        `json:"offense,omitempty"`
	Category      CrimeCategory `json:"category,omitempty"`
	Borough       string        `json:"borough,omitempty"`
}

// Public returns the fields of the location that do not give away its position
func (l *Location) Public() PublicLocation {
	return PublicLocation{
		StreetViewURL: l.Enrichment.StreetViewURL,
		Offense:       l.Enrichment.Offense,
		Category:      l.Enrichment.Category,
	}
}

// Reveal returns the full location for the end-of-round reveal
func (l *Location) Reveal() RevealedLocation {
	return RevealedLocation{
		Latitude:      l.Latitude,
		Longitude:     l.Longitude,
		StreetViewURL: l.Enrichment.StreetViewURL,
		Offense:       l.Enrichment.Offense,
		Category:      l.Enrichment.Category,
		Borough:       l.Enrichment.Borough,
	}
}

// LocationRecord is a location as held in the dataset pool, before any
// per-serve enrichment such as imagery URLs is applied
type LocationRecord struct {
	Latitude  float64       `json:"lat"`
	Longitude float64       `json:"lon"`
	Offense   string        `json:"offense,omitempty"`
	Category  CrimeCategory `json:"category,omitempty"`
	Borough   string        `json:"borough,omitempty"`
}
