package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_Identity(t *testing.T) {
	assert.Zero(t, DistanceKm(40.0, -74.0, 40.0, -74.0))
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := DistanceKm(40.0, -74.0, 41.0, -73.5)
	b := DistanceKm(41.0, -73.5, 40.0, -74.0)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// One degree of latitude is roughly 111.19 km on a 6371 km sphere.
	d := DistanceKm(40.0, -74.0, 41.0, -74.0)
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestFilterByRadius(t *testing.T) {
	origin := Coord{Lat: 40.1, Lon: -74.0}
	near := &Coord{Lat: 40.0, Lon: -74.0}  // ~11.1 km
	far := &Coord{Lat: 41.0, Lon: -74.0}   // ~100 km
	close := &Coord{Lat: 40.09, Lon: -74.0} // ~1.1 km

	t.Run("Radius Excludes Far Candidates", func(t *testing.T) {
		matches := FilterByRadius(origin, []*Coord{near, far}, 15)
		require.Len(t, matches, 1)
		assert.Equal(t, 0, matches[0].Index)
		assert.InDelta(t, 11.1, matches[0].DistanceKm, 0.2)
	})

	t.Run("Tight Radius", func(t *testing.T) {
		matches := FilterByRadius(origin, []*Coord{near, far}, 5)
		assert.Empty(t, matches)
	})

	t.Run("Sorted Ascending", func(t *testing.T) {
		matches := FilterByRadius(origin, []*Coord{near, far, close}, 200)
		require.Len(t, matches, 3)
		assert.Equal(t, 2, matches[0].Index)
		assert.Equal(t, 0, matches[1].Index)
		assert.Equal(t, 1, matches[2].Index)
	})

	t.Run("Nil Coordinates Excluded", func(t *testing.T) {
		matches := FilterByRadius(origin, []*Coord{nil, near}, 15)
		require.Len(t, matches, 1)
		assert.Equal(t, 1, matches[0].Index)
	})
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 11.1, Round1(11.128))
	assert.Equal(t, 11.2, Round1(11.15))
	assert.Equal(t, 0.0, Round1(0.04))
}
