package graph

import (
	"errors"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
)

// JointIndex is the inverse of RoadIndex: for every joint id, the road points
// fused into it.
type JointIndex struct {
	points [][]datastructure.RoadPoint
}

func NewJointIndex() *JointIndex {
	return &JointIndex{}
}

// Build fills the index from the road index. Every road point registered
// there ends up listed under its joint.
func (ji *JointIndex) Build(roadIndex *RoadIndex, numJoints int) {
	ji.points = make([][]datastructure.RoadPoint, numJoints)
	roadIndex.ForEachRoad(func(featureID uint32, road *RoadJointIDs) {
		for _, p := range road.points {
			ji.points[p.jointID] = append(ji.points[p.jointID],
				datastructure.NewRoadPoint(featureID, p.pointID))
		}
	})
}

func (ji *JointIndex) GetNumJoints() int {
	return len(ji.points)
}

// ForEachPoint visits the road points of the joint. Order is unspecified but
// stable within one call.
func (ji *JointIndex) ForEachPoint(jointID datastructure.JointID, fn func(rp datastructure.RoadPoint)) {
	for _, rp := range ji.points[jointID] {
		fn(rp)
	}
}

// GetPoint returns a representative road point of the joint.
func (ji *JointIndex) GetPoint(jointID datastructure.JointID) datastructure.RoadPoint {
	pts := ji.points[jointID]
	if len(pts) == 0 {
		panic(errors.New("joint has no road points"))
	}
	return pts[0]
}

// FindPointsWithCommonFeature enumerates every feature incident to both
// joints, one pair of road points per occurrence. A feature touching the pair
// at two distinct point indices yields two pairs.
func (ji *JointIndex) FindPointsWithCommonFeature(jointIDFrom, jointIDTo datastructure.JointID) [][2]datastructure.RoadPoint {
	var result [][2]datastructure.RoadPoint
	for _, rpFrom := range ji.points[jointIDFrom] {
		for _, rpTo := range ji.points[jointIDTo] {
			if rpFrom.FeatureID == rpTo.FeatureID && rpFrom.PointID != rpTo.PointID {
				result = append(result, [2]datastructure.RoadPoint{rpFrom, rpTo})
			}
		}
	}
	return result
}

// InsertJoint allocates a new singleton joint for rp.
func (ji *JointIndex) InsertJoint(rp datastructure.RoadPoint) datastructure.JointID {
	jointID := datastructure.JointID(len(ji.points))
	ji.points = append(ji.points, []datastructure.RoadPoint{rp})
	return jointID
}

// AppendToJoint adds one more road point to an existing joint.
func (ji *JointIndex) AppendToJoint(jointID datastructure.JointID, rp datastructure.RoadPoint) {
	ji.points[jointID] = append(ji.points[jointID], rp)
}
