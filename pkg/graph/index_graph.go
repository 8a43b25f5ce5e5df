package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/util"
)

// GeometryLoader hands out feature geometry. Infallible: an unknown feature id
// returns the sentinel geometry with IsRoad() == false.
type GeometryLoader interface {
	GetRoad(featureID uint32) datastructure.RoadGeometry
	MaxFeatureID() uint32
}

// EdgeEstimator computes the weight of traversing a contiguous range of
// points on a road. Non-negative, deterministic for fixed inputs.
type EdgeEstimator interface {
	CalcEdgesWeight(featureID uint32, road datastructure.RoadGeometry, pointFrom, pointTo uint32) float64
}

// fake feature ids live far above anything a real map extract carries.
const startFakeFeatureID uint32 = 1 << 30

// IndexGraph is the joint-level view over a road feature dataset. After
// ApplyRestrictions it serves a graph in which forbidden maneuvers are
// unreachable, so the path search needs no turn-restriction logic of its own.
//
// Single threaded by contract. Read-only sharing is fine once the graph is no
// longer mutated.
type IndexGraph struct {
	loader    GeometryLoader
	estimator EdgeEstimator

	roadIndex  *RoadIndex
	jointIndex *JointIndex

	fakeFeatureGeometry map[uint32]datastructure.RoadGeometry
	blockedEdges        map[datastructure.DirectedEdge]struct{}
	edgeMapping         map[datastructure.DirectedEdge][]datastructure.DirectedEdge
	nextFakeFeatureID   uint32
}

func NewIndexGraph(loader GeometryLoader, estimator EdgeEstimator) (*IndexGraph, error) {
	if loader == nil || estimator == nil {
		panic(errors.New("index graph needs a geometry loader and an edge estimator"))
	}
	if loader.MaxFeatureID() >= startFakeFeatureID {
		return nil, fmt.Errorf("real feature id %d collides with the fake feature id range starting at %d",
			loader.MaxFeatureID(), startFakeFeatureID)
	}

	return &IndexGraph{
		loader:              loader,
		estimator:           estimator,
		roadIndex:           NewRoadIndex(),
		jointIndex:          NewJointIndex(),
		fakeFeatureGeometry: make(map[uint32]datastructure.RoadGeometry),
		blockedEdges:        make(map[datastructure.DirectedEdge]struct{}),
		edgeMapping:         make(map[datastructure.DirectedEdge][]datastructure.DirectedEdge),
		nextFakeFeatureID:   startFakeFeatureID,
	}, nil
}

// Import builds both indices from the joint list. Joint ids are the slice
// indices.
func (g *IndexGraph) Import(joints []datastructure.Joint) {
	g.roadIndex.Import(joints)
	g.Build(len(joints))
}

func (g *IndexGraph) Build(numJoints int) {
	g.jointIndex.Build(g.roadIndex, numJoints)
}

// GetEdgeList enumerates the weighted edges of jointID. With
// withoutRestrictions the enumeration sees the original graph: fake features
// are invisible and blocked edges are ignored.
func (g *IndexGraph) GetEdgeList(jointID datastructure.JointID, isOutgoing, withoutRestrictions bool) []datastructure.JointEdge {
	var edges []datastructure.JointEdge
	g.jointIndex.ForEachPoint(jointID, func(rp datastructure.RoadPoint) {
		edges = g.getNeighboringEdges(rp, isOutgoing, withoutRestrictions, edges)
	})
	return edges
}

func (g *IndexGraph) getNeighboringEdges(rp datastructure.RoadPoint, isOutgoing, withoutRestrictions bool,
	edges []datastructure.JointEdge) []datastructure.JointEdge {
	road := g.GetRoad(rp.FeatureID)
	if !road.IsRoad() {
		return edges
	}

	bidirectional := !road.IsOneWay()
	if !isOutgoing || bidirectional {
		edges = g.getNeighboringEdge(road, rp, false, isOutgoing, withoutRestrictions, edges)
	}
	if isOutgoing || bidirectional {
		edges = g.getNeighboringEdge(road, rp, true, isOutgoing, withoutRestrictions, edges)
	}
	return edges
}

func (g *IndexGraph) getNeighboringEdge(road datastructure.RoadGeometry, rp datastructure.RoadPoint,
	forward, isOutgoing, withoutRestrictions bool, edges []datastructure.JointEdge) []datastructure.JointEdge {
	if withoutRestrictions && g.IsFakeFeature(rp.FeatureID) {
		return edges
	}

	neighborJoint, neighborPointID := g.roadIndex.FindNeighbor(rp, forward)
	if neighborJoint == datastructure.InvalidJointID {
		return edges
	}

	if !withoutRestrictions {
		rpJointID := g.roadIndex.GetJointID(rp)
		var edge datastructure.DirectedEdge
		if isOutgoing {
			edge = datastructure.NewDirectedEdge(rpJointID, neighborJoint, rp.FeatureID)
		} else {
			edge = datastructure.NewDirectedEdge(neighborJoint, rpJointID, rp.FeatureID)
		}
		if _, blocked := g.blockedEdges[edge]; blocked {
			return edges
		}
	}

	weight := g.estimator.CalcEdgesWeight(rp.FeatureID, road, rp.PointID, neighborPointID)
	return append(edges, datastructure.NewJointEdge(neighborJoint, weight))
}

// GetDirectedEdge probes a single feature edge in the given direction,
// respecting the one-way flag. Used by the search layer to reconstruct jump
// edges.
func (g *IndexGraph) GetDirectedEdge(featureID, pointFrom, pointTo uint32, target datastructure.JointID,
	forward bool) (datastructure.JointEdge, bool) {
	road := g.GetRoad(featureID)
	if !road.IsRoad() {
		return datastructure.JointEdge{}, false
	}
	if road.IsOneWay() && forward != (pointFrom < pointTo) {
		return datastructure.JointEdge{}, false
	}

	weight := g.estimator.CalcEdgesWeight(featureID, road, pointFrom, pointTo)
	return datastructure.NewJointEdge(target, weight), true
}

// GetRoad returns the fake geometry if the id was minted by the rewriter,
// otherwise delegates to the loader.
func (g *IndexGraph) GetRoad(featureID uint32) datastructure.RoadGeometry {
	if geom, ok := g.fakeFeatureGeometry[featureID]; ok {
		return geom
	}
	return g.loader.GetRoad(featureID)
}

func (g *IndexGraph) IsFakeFeature(featureID uint32) bool {
	return featureID >= startFakeFeatureID
}

func (g *IndexGraph) GetPoint(rp datastructure.RoadPoint) datastructure.Coordinate {
	road := g.GetRoad(rp.FeatureID)
	if int(rp.PointID) >= road.GetPointsCount() {
		panic(fmt.Errorf("point id %d out of range of feature %d", rp.PointID, rp.FeatureID))
	}
	return road.GetPoint(rp.PointID)
}

func (g *IndexGraph) GetJointPoint(jointID datastructure.JointID) datastructure.Coordinate {
	return g.GetPoint(g.jointIndex.GetPoint(jointID))
}

func (g *IndexGraph) GetSpeed(rp datastructure.RoadPoint) float64 {
	return g.GetRoad(rp.FeatureID).GetSpeed()
}

func (g *IndexGraph) GetNumJoints() int {
	return g.jointIndex.GetNumJoints()
}

// InsertJoint registers rp as a joint of its own unless it already is one.
func (g *IndexGraph) InsertJoint(rp datastructure.RoadPoint) datastructure.JointID {
	if existing := g.roadIndex.GetJointID(rp); existing != datastructure.InvalidJointID {
		return existing
	}

	jointID := g.jointIndex.InsertJoint(rp)
	g.roadIndex.AddJoint(rp, jointID)
	return jointID
}

func (g *IndexGraph) JointLiesOnRoad(jointID datastructure.JointID, featureID uint32) bool {
	result := false
	g.jointIndex.ForEachPoint(jointID, func(rp datastructure.RoadPoint) {
		if rp.FeatureID == featureID {
			result = true
		}
	})
	return result
}

// GetSingleFeaturePath emits every road point of the feature between from and
// to inclusive, ascending or descending.
func (g *IndexGraph) GetSingleFeaturePath(from, to datastructure.RoadPoint) []datastructure.RoadPoint {
	if from.FeatureID != to.FeatureID {
		panic(fmt.Errorf("single feature path between different features %d and %d", from.FeatureID, to.FeatureID))
	}

	shift := 1
	if to.PointID < from.PointID {
		shift = -1
	}
	path := make([]datastructure.RoadPoint, 0, util.AbsDiffUint32(from.PointID, to.PointID)+1)
	for i := int(from.PointID); i != int(to.PointID); i += shift {
		path = append(path, datastructure.NewRoadPoint(from.FeatureID, uint32(i)))
	}
	return append(path, to)
}

// GetConnectionPaths reifies every parallel connection between two joints as
// the contiguous sub-polyline of the shared feature.
func (g *IndexGraph) GetConnectionPaths(from, to datastructure.JointID) [][]datastructure.RoadPoint {
	if from == datastructure.InvalidJointID || to == datastructure.InvalidJointID {
		panic(errors.New("connection paths of an invalid joint"))
	}

	connections := g.jointIndex.FindPointsWithCommonFeature(from, to)
	if len(connections) == 0 {
		return nil
	}

	paths := make([][]datastructure.RoadPoint, 0, len(connections))
	for _, c := range connections {
		paths = append(paths, g.GetSingleFeaturePath(c[0], c[1]))
	}
	return paths
}

// GetShortestConnectionPath picks the parallel road connection of minimum
// estimator weight. Fails when the joints are only connected by non-road
// features.
func (g *IndexGraph) GetShortestConnectionPath(from, to datastructure.JointID) ([]datastructure.RoadPoint, error) {
	connections := g.jointIndex.FindPointsWithCommonFeature(from, to)
	if len(connections) == 0 {
		return nil, nil
	}

	// single connection is the common case, skip the estimator calls there
	if len(connections) == 1 && g.GetRoad(connections[0][0].FeatureID).IsRoad() {
		return g.GetSingleFeaturePath(connections[0][0], connections[0][1]), nil
	}

	minWeight := math.Inf(1)
	var minConnection [2]datastructure.RoadPoint
	for _, c := range connections {
		geom := g.GetRoad(c[0].FeatureID)
		if !geom.IsRoad() {
			continue
		}

		weight := g.estimator.CalcEdgesWeight(c[0].FeatureID, geom, c[0].PointID, c[1].PointID)
		if weight < minWeight {
			minWeight = weight
			minConnection = c
		}
	}

	if math.IsInf(minWeight, 1) {
		return nil, newRestrictionDataError(from, to, "joints are not connected by a feature of the necessary type")
	}
	return g.GetSingleFeaturePath(minConnection[0], minConnection[1]), nil
}

// GetFeatureConnectionPath is the connection between two joints along one
// specific feature, or nil if that feature does not connect them.
func (g *IndexGraph) GetFeatureConnectionPath(from, to datastructure.JointID, featureID uint32) []datastructure.RoadPoint {
	connections := g.jointIndex.FindPointsWithCommonFeature(from, to)
	for _, c := range connections {
		if c[0].FeatureID == featureID {
			return g.GetSingleFeaturePath(c[0], c[1])
		}
	}
	return nil
}

func (g *IndexGraph) getOutgoingGeomEdges(outgoingEdges []datastructure.JointEdge,
	center datastructure.JointID) ([]datastructure.JointEdgeGeom, error) {
	var outgoingGeomEdges []datastructure.JointEdgeGeom
	for _, e := range outgoingEdges {
		connectionPaths := g.GetConnectionPaths(center, e.Target)
		if len(connectionPaths) == 0 {
			return nil, newRestrictionDataError(center, e.Target, "cant find a common feature for the joints")
		}

		for _, path := range connectionPaths {
			// path can belong to a feature type the current vehicle cant use,
			// e.g. a footway met while rewriting a car graph
			if g.GetRoad(path[0].FeatureID).IsRoad() {
				outgoingGeomEdges = append(outgoingGeomEdges, datastructure.NewJointEdgeGeom(e.Target, path))
			}
		}
	}
	return outgoingGeomEdges, nil
}

func (g *IndexGraph) createFakeFeatureGeometry(geometrySource []datastructure.RoadPoint) datastructure.RoadGeometry {
	averageSpeed := 0.0
	points := make([]datastructure.Coordinate, len(geometrySource))
	for i, rp := range geometrySource {
		averageSpeed += g.GetSpeed(rp) / float64(len(geometrySource))
		points[i] = g.GetPoint(rp)
	}
	return datastructure.NewRoadGeometry(true, averageSpeed, points)
}

// addFakeLooseEndFeature registers a fresh one-way feature along
// geometrySource whose first point is fused into the joint from. The far end
// stays loose.
func (g *IndexGraph) addFakeLooseEndFeature(from datastructure.JointID, geometrySource []datastructure.RoadPoint) uint32 {
	if int(from) >= g.jointIndex.GetNumJoints() {
		panic(fmt.Errorf("joint id %d out of range", from))
	}
	if len(geometrySource) < 2 {
		panic(errors.New("fake feature needs at least two points"))
	}

	g.fakeFeatureGeometry[g.nextFakeFeatureID] = g.createFakeFeatureGeometry(geometrySource)

	fromFakeFtPoint := datastructure.NewRoadPoint(g.nextFakeFeatureID, 0)
	g.roadIndex.AddJoint(fromFakeFtPoint, from)
	g.jointIndex.AppendToJoint(from, fromFakeFtPoint)

	fakeFeatureID := g.nextFakeFeatureID
	g.nextFakeFeatureID++
	return fakeFeatureID
}

// addFakeFeature is addFakeLooseEndFeature plus fusing the far end into to.
func (g *IndexGraph) addFakeFeature(from, to datastructure.JointID, geometrySource []datastructure.RoadPoint) uint32 {
	if int(to) >= g.jointIndex.GetNumJoints() {
		panic(fmt.Errorf("joint id %d out of range", to))
	}

	fakeFeatureID := g.addFakeLooseEndFeature(from, geometrySource)
	toFakeFtPoint := datastructure.NewRoadPoint(fakeFeatureID, uint32(len(geometrySource)-1))
	g.roadIndex.AddJoint(toFakeFtPoint, to)
	g.jointIndex.AppendToJoint(to, toFakeFtPoint)

	return fakeFeatureID
}

func (g *IndexGraph) disableEdge(edge datastructure.DirectedEdge) {
	g.blockedEdges[edge] = struct{}{}
}

// disableAllEdges blocks every parallel feature edge between the joint pair.
func (g *IndexGraph) disableAllEdges(from, to datastructure.JointID) {
	connections := g.jointIndex.FindPointsWithCommonFeature(from, to)
	for _, c := range connections {
		g.disableEdge(datastructure.NewDirectedEdge(from, to, c[0].FeatureID))
	}
}

func (g *IndexGraph) isBlocked(edge datastructure.DirectedEdge) bool {
	_, ok := g.blockedEdges[edge]
	return ok
}

// forEachNonBlockedEdgeMappingNode walks the rewriting relation depth first
// and yields every visited edge that is not blocked. A rewritten original
// edge that still exists in the graph is yielded together with its
// replacements, so later restrictions reach both.
func (g *IndexGraph) forEachNonBlockedEdgeMappingNode(edge datastructure.DirectedEdge, fn func(datastructure.DirectedEdge)) {
	if !g.isBlocked(edge) {
		fn(edge)
	}
	for _, child := range g.edgeMapping[edge] {
		g.forEachNonBlockedEdgeMappingNode(child, fn)
	}
}
