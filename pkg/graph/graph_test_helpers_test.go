package graph

import (
	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/util"
)

type testGeometryLoader struct {
	roads        map[uint32]datastructure.RoadGeometry
	maxFeatureID uint32
}

func newTestGeometryLoader() *testGeometryLoader {
	return &testGeometryLoader{roads: make(map[uint32]datastructure.RoadGeometry)}
}

func (l *testGeometryLoader) addRoad(featureID uint32, geom datastructure.RoadGeometry) {
	l.roads[featureID] = geom
	if featureID > l.maxFeatureID {
		l.maxFeatureID = featureID
	}
}

func (l *testGeometryLoader) GetRoad(featureID uint32) datastructure.RoadGeometry {
	return l.roads[featureID]
}

func (l *testGeometryLoader) MaxFeatureID() uint32 {
	return l.maxFeatureID
}

// segmentCountEstimator weighs an edge by the number of segments it spans,
// keeps the expected weights readable.
type segmentCountEstimator struct{}

func (segmentCountEstimator) CalcEdgesWeight(featureID uint32, road datastructure.RoadGeometry,
	pointFrom, pointTo uint32) float64 {
	return float64(util.AbsDiffUint32(pointFrom, pointTo))
}

func newTestGraph(loader *testGeometryLoader, joints []datastructure.Joint) *IndexGraph {
	g, err := NewIndexGraph(loader, segmentCountEstimator{})
	if err != nil {
		panic(err)
	}
	g.Import(joints)
	return g
}

func edgeTargets(edges []datastructure.JointEdge) []datastructure.JointID {
	targets := make([]datastructure.JointID, 0, len(edges))
	for _, e := range edges {
		targets = append(targets, e.Target)
	}
	return targets
}

// crossroadFixture is the pivot topology most restriction tests share:
//
//	a --fa--> O --fx--> x
//	b --fb--> O --fy--> y
//	          O --fz--> z
//
// every feature is one-way with two points. Joint ids: a=0 b=1 O=2 x=3 y=4
// z=5.
const (
	faID = uint32(0)
	fbID = uint32(1)
	fxID = uint32(2)
	fyID = uint32(3)
	fzID = uint32(4)
)

const (
	jointA = datastructure.JointID(0)
	jointB = datastructure.JointID(1)
	jointO = datastructure.JointID(2)
	jointX = datastructure.JointID(3)
	jointY = datastructure.JointID(4)
	jointZ = datastructure.JointID(5)
)

func crossroadLoader(withFb bool) *testGeometryLoader {
	loader := newTestGeometryLoader()
	loader.addRoad(faID, datastructure.NewRoadGeometry(true, 60, []datastructure.Coordinate{
		{Lat: 1, Lon: 0}, {Lat: 1, Lon: 1},
	}))
	if withFb {
		loader.addRoad(fbID, datastructure.NewRoadGeometry(true, 60, []datastructure.Coordinate{
			{Lat: 2, Lon: 0}, {Lat: 1, Lon: 1},
		}))
	}
	loader.addRoad(fxID, datastructure.NewRoadGeometry(true, 60, []datastructure.Coordinate{
		{Lat: 1, Lon: 1}, {Lat: 0, Lon: 1},
	}))
	loader.addRoad(fyID, datastructure.NewRoadGeometry(true, 60, []datastructure.Coordinate{
		{Lat: 1, Lon: 1}, {Lat: 1, Lon: 2},
	}))
	loader.addRoad(fzID, datastructure.NewRoadGeometry(true, 60, []datastructure.Coordinate{
		{Lat: 1, Lon: 1}, {Lat: 2, Lon: 1},
	}))
	return loader
}

// crossroadGraph builds the fixture. withFb == false drops the second ingoing
// arm so the pivot has a single ingoing edge.
func crossroadGraph(withFb bool) *IndexGraph {
	centerPoints := []datastructure.RoadPoint{
		datastructure.NewRoadPoint(faID, 1),
		datastructure.NewRoadPoint(fxID, 0),
		datastructure.NewRoadPoint(fyID, 0),
		datastructure.NewRoadPoint(fzID, 0),
	}
	if withFb {
		centerPoints = append(centerPoints, datastructure.NewRoadPoint(fbID, 1))
	}

	// b stays in the joint list even without fb geometry so the joint ids
	// dont shift between the fixtures, it just has no road then
	joints := []datastructure.Joint{
		datastructure.NewJoint(datastructure.NewRoadPoint(faID, 0)), // a
		datastructure.NewJoint(datastructure.NewRoadPoint(fbID, 0)), // b
		datastructure.NewJoint(centerPoints...),                     // O
		datastructure.NewJoint(datastructure.NewRoadPoint(fxID, 1)), // x
		datastructure.NewJoint(datastructure.NewRoadPoint(fyID, 1)), // y
		datastructure.NewJoint(datastructure.NewRoadPoint(fzID, 1)), // z
	}

	return newTestGraph(crossroadLoader(withFb), joints)
}
