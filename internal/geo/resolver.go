// Package geo resolves punch coordinates against the configured branch
// locations. Pure and stateless: the resolver is built once at startup and
// is safe for concurrent use.
package geo

import (
	"errors"
	"math"
)

const earthRadiusMeters = 6371000.0

// Branch is a fixed physical location. Loaded from configuration, read-only.
type Branch struct {
	Name string  `json:"name" mapstructure:"name"`
	Lat  float64 `json:"lat"  mapstructure:"lat"`
	Lon  float64 `json:"lon"  mapstructure:"lon"`
}

// Resolver finds the nearest configured branch for a coordinate and decides
// whether a punch at that distance is acceptable.
type Resolver struct {
	branches []Branch
	radius   float64 // meters
}

// NewResolver fails when no branches are configured — that is a deployment
// error, caught at startup rather than per request.
func NewResolver(branches []Branch, radiusMeters float64) (*Resolver, error) {
	if len(branches) == 0 {
		return nil, errors.New("geo: at least one branch must be configured")
	}
	bs := make([]Branch, len(branches))
	copy(bs, branches)
	return &Resolver{branches: bs, radius: radiusMeters}, nil
}

// FindNearest returns the branch with the minimum haversine distance to the
// given coordinate, and that distance in meters. Ties keep the branch that
// appears first in configuration order.
func (r *Resolver) FindNearest(lat, lon float64) (Branch, float64) {
	nearest := r.branches[0]
	minDist := Haversine(lat, lon, nearest.Lat, nearest.Lon)
	for _, b := range r.branches[1:] {
		if d := Haversine(lat, lon, b.Lat, b.Lon); d < minDist {
			minDist = d
			nearest = b
		}
	}
	return nearest, minDist
}

// WithinRadius reports whether a punch at the given distance is acceptable.
// The boundary is inclusive: distance == radius counts as in range.
func (r *Resolver) WithinRadius(distance float64) bool {
	return distance <= r.radius
}

// Radius returns the configured acceptance radius in meters.
func (r *Resolver) Radius() float64 { return r.radius }

// Haversine computes the great-circle distance in meters between two
// WGS84 coordinates. Full float64 precision — rounding happens only at the
// presentation boundary.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
