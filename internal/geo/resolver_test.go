package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Delhi Connaught Place, roughly. Any fixed point works.
const (
	baseLat = 28.613939
	baseLon = 77.209023
)

// latOffset returns the latitude delta that corresponds to the given
// north-south distance in meters.
func latOffset(meters float64) float64 {
	return meters * 180 / (math.Pi * earthRadiusMeters)
}

func TestNewResolverRequiresBranches(t *testing.T) {
	_, err := NewResolver(nil, 200)
	assert.Error(t, err)

	r, err := NewResolver([]Branch{{Name: "HQ", Lat: baseLat, Lon: baseLon}}, 200)
	require.NoError(t, err)
	assert.Equal(t, 200.0, r.Radius())
}

func TestHaversineKnownDistance(t *testing.T) {
	// A point 150m due north should be ~150m away.
	d := Haversine(baseLat, baseLon, baseLat+latOffset(150), baseLon)
	assert.InDelta(t, 150, d, 0.5)

	// Same point → zero.
	assert.InDelta(t, 0, Haversine(baseLat, baseLon, baseLat, baseLon), 0.001)
}

func TestFindNearestPicksMinimum(t *testing.T) {
	branches := []Branch{
		{Name: "Far", Lat: baseLat + latOffset(80), Lon: baseLon},
		{Name: "Near", Lat: baseLat + latOffset(50), Lon: baseLon},
	}
	r, err := NewResolver(branches, 100)
	require.NoError(t, err)

	b, d := r.FindNearest(baseLat, baseLon)
	assert.Equal(t, "Near", b.Name)
	assert.InDelta(t, 50, d, 0.5)
	assert.True(t, r.WithinRadius(d))
}

func TestFindNearestTieKeepsConfigurationOrder(t *testing.T) {
	// Two branches at the same distance: the first configured one wins.
	branches := []Branch{
		{Name: "North", Lat: baseLat + latOffset(100), Lon: baseLon},
		{Name: "South", Lat: baseLat - latOffset(100), Lon: baseLon},
	}
	r, err := NewResolver(branches, 200)
	require.NoError(t, err)

	b, _ := r.FindNearest(baseLat, baseLon)
	assert.Equal(t, "North", b.Name)
}

func TestWithinRadiusInclusiveBoundary(t *testing.T) {
	r, err := NewResolver([]Branch{{Name: "HQ", Lat: baseLat, Lon: baseLon}}, 200)
	require.NoError(t, err)

	assert.True(t, r.WithinRadius(200))
	assert.True(t, r.WithinRadius(199.99))
	assert.False(t, r.WithinRadius(200.01))
}

func TestFindNearestOutOfRangeStillReported(t *testing.T) {
	branches := []Branch{
		{Name: "A", Lat: baseLat + latOffset(150), Lon: baseLon},
		{Name: "B", Lat: baseLat + latOffset(300), Lon: baseLon},
	}
	r, err := NewResolver(branches, 100)
	require.NoError(t, err)

	// Nearest branch is resolved even when it is out of range — callers
	// report it to the user.
	b, d := r.FindNearest(baseLat, baseLon)
	assert.Equal(t, "A", b.Name)
	assert.InDelta(t, 150, d, 1)
	assert.False(t, r.WithinRadius(d))
}
