package geo

import (
	"math"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"github.com/golang/geo/s2"
)

const (
	earthRadiusKM = 6371.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// SphericalDistance is the s2 great-circle distance between two coordinates
// in km.
func SphericalDistance(from, to datastructure.Coordinate) float64 {
	fromLatLng := s2.LatLngFromDegrees(from.Lat, from.Lon)
	toLatLng := s2.LatLngFromDegrees(to.Lat, to.Lon)
	return fromLatLng.Distance(toLatLng).Radians() * earthRadiusKM
}

// PolylineDistance sums the segment lengths of a polyline in km.
func PolylineDistance(points []datastructure.Coordinate) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += CalculateHaversineDistance(points[i].Lat, points[i].Lon,
			points[i+1].Lat, points[i+1].Lon)
	}
	return total
}
