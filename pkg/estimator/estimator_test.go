package estimator

import (
	"testing"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"github.com/stretchr/testify/assert"
)

func TestCalcEdgesWeight(t *testing.T) {
	e := NewCarEdgeEstimator()
	road := datastructure.NewRoadGeometry(false, 100, []datastructure.Coordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2},
	})

	// about 222.4 km at 100 km/h
	weight := e.CalcEdgesWeight(0, road, 0, 2)
	assert.InDelta(t, 222.4/100.0*3600.0, weight, 20)

	// direction independent at this interface
	assert.Equal(t, weight, e.CalcEdgesWeight(0, road, 2, 0))

	assert.Equal(t, 0.0, e.CalcEdgesWeight(0, road, 1, 1))
}

func TestCalcEdgesWeightFallbackSpeed(t *testing.T) {
	e := NewCarEdgeEstimator()
	road := datastructure.NewRoadGeometry(false, 0, []datastructure.Coordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1},
	})

	weight := e.CalcEdgesWeight(0, road, 0, 1)
	assert.Greater(t, weight, 0.0)
}
