package scoring

import (
	"fmt"
	"math"

	"github.com/mcoot/crimeguessr/internal/model"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distances
const EarthRadiusKM = 6371.0

// Curve names accepted by CurveByName
const (
	CurveLinear = "linear"
	CurveTiered = "tiered"
)

// DistanceKM returns the haversine distance between two points in kilometres
func DistanceKM(a, b model.Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	// Floating error can push h fractionally above 1 for antipodal points
	h = math.Min(1, h)
	return 2 * EarthRadiusKM * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Curve maps a guess distance to points
type Curve interface {
	Name() string
	Score(distanceKM float64) int
}

// LinearCurve awards 1000 points for an exact guess, falling linearly to
// zero at 50 km
type LinearCurve struct{}

// Name returns the configuration name of the curve
func (LinearCurve) Name() string { return CurveLinear }

// Score returns the points for a distance
func (LinearCurve) Score(distanceKM float64) int {
	if distanceKM < 50 {
		return int(1000 * (1 - distanceKM/50))
	}
	return 0
}

// TieredCurve is the five-band curve with a 5000-point near-exact bonus.
// Bands are scored independently, so it is not monotonic at band edges.
type TieredCurve struct{}

// Name returns the configuration name of the curve
func (TieredCurve) Name() string { return CurveTiered }

// Score returns the points for a distance
func (TieredCurve) Score(distanceKM float64) int {
	switch {
	case distanceKM < 0.1:
		return 5000
	case distanceKM < 1:
		return int(5000 * (1 - distanceKM))
	case distanceKM < 10:
		return int(3000 * (1 - distanceKM/10))
	case distanceKM < 50:
		return int(1000 * (1 - distanceKM/50))
	default:
		return 0
	}
}

// CurveByName resolves a configured curve name; empty means linear
func CurveByName(name string) (Curve, error) {
	switch name {
	case "", CurveLinear:
		return LinearCurve{}, nil
	case CurveTiered:
		return TieredCurve{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring curve %q", name)
	}
}

// Service scores guesses against round targets
type Service struct {
	curve Curve
}

// New creates a scoring Service using the given curve
func New(curve Curve) *Service {
	if curve == nil {
		curve = LinearCurve{}
	}
	return &Service{curve: curve}
}

// Curve returns the curve in use
func (s *Service) Curve() Curve {
	return s.curve
}

// Score returns the distance from guess to target and the points it earns
func (s *Service) Score(guess, target model.Coordinate) (float64, int) {
	d := DistanceKM(guess, target)
	return d, s.curve.Score(d)
}
