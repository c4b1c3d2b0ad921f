// Package geo provides great-circle distance helpers for clinic proximity
// search.
package geo

import (
	"math"
	"sort"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Coord is a latitude/longitude pair in degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Match annotates a candidate index with its distance from the origin.
type Match struct {
	Index      int
	DistanceKm float64
}

// DistanceKm returns the haversine distance in kilometers between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// FilterByRadius returns the candidates within radiusKm of the origin, sorted
// ascending by distance. Candidates with a nil coordinate are excluded.
func FilterByRadius(origin Coord, candidates []*Coord, radiusKm float64) []Match {
	matches := []Match{}
	for i, c := range candidates {
		if c == nil {
			continue
		}
		d := DistanceKm(origin.Lat, origin.Lon, c.Lat, c.Lon)
		if d <= radiusKm {
			matches = append(matches, Match{Index: i, DistanceKm: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	return matches
}

// Round1 rounds a distance to one decimal place for display.
func Round1(km float64) float64 {
	return math.Round(km*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
