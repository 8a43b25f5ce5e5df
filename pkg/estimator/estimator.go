package estimator

import (
	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/geo"
)

const (
	// used when map data carries no usable speed for a road
	defaultSpeedKmH = 30.0
)

// CarEdgeEstimator weighs an edge by travel time in seconds over the feature
// geometry at the road's nominal speed. Independent of traversal direction,
// the caller already chose the orientation.
type CarEdgeEstimator struct{}

func NewCarEdgeEstimator() *CarEdgeEstimator {
	return &CarEdgeEstimator{}
}

func (e *CarEdgeEstimator) CalcEdgesWeight(featureID uint32, road datastructure.RoadGeometry,
	pointFrom, pointTo uint32) float64 {
	start, end := pointFrom, pointTo
	if start > end {
		start, end = end, start
	}

	distanceKM := 0.0
	for i := start; i < end; i++ {
		distanceKM += geo.SphericalDistance(road.GetPoint(i), road.GetPoint(i+1))
	}

	speed := road.GetSpeed()
	if speed <= 0 {
		speed = defaultSpeedKmH
	}
	return distanceKM / speed * 3600.0
}
