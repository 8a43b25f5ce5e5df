package graph

import (
	"errors"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"golang.org/x/exp/slices"
)

type pointJoint struct {
	pointID uint32
	jointID datastructure.JointID
}

// RoadJointIDs lists the road points of one feature that are joints, kept
// sorted by point id. Sparse: points that are not joints dont appear.
type RoadJointIDs struct {
	points []pointJoint
}

func (r *RoadJointIDs) getJointID(pointID uint32) datastructure.JointID {
	i, ok := slices.BinarySearchFunc(r.points, pointID, func(p pointJoint, id uint32) int {
		if p.pointID < id {
			return -1
		}
		if p.pointID > id {
			return 1
		}
		return 0
	})
	if !ok {
		return datastructure.InvalidJointID
	}
	return r.points[i].jointID
}

func (r *RoadJointIDs) addJoint(pointID uint32, jointID datastructure.JointID) {
	i, ok := slices.BinarySearchFunc(r.points, pointID, func(p pointJoint, id uint32) int {
		if p.pointID < id {
			return -1
		}
		if p.pointID > id {
			return 1
		}
		return 0
	})
	if ok {
		panic(errors.New("road point is already a joint"))
	}
	r.points = slices.Insert(r.points, i, pointJoint{pointID: pointID, jointID: jointID})
}

// findNeighbor returns the nearest registered joint strictly after (forward)
// or before (backward) pointID on this feature.
func (r *RoadJointIDs) findNeighbor(pointID uint32, forward bool) (datastructure.JointID, uint32) {
	i, ok := slices.BinarySearchFunc(r.points, pointID, func(p pointJoint, id uint32) int {
		if p.pointID < id {
			return -1
		}
		if p.pointID > id {
			return 1
		}
		return 0
	})

	if forward {
		if ok {
			i++
		}
		if i >= len(r.points) {
			return datastructure.InvalidJointID, 0
		}
		return r.points[i].jointID, r.points[i].pointID
	}

	if i == 0 {
		return datastructure.InvalidJointID, 0
	}
	return r.points[i-1].jointID, r.points[i-1].pointID
}

// RoadIndex maps every feature to the ordered set of its road points that are
// joints.
type RoadIndex struct {
	roads map[uint32]*RoadJointIDs
}

func NewRoadIndex() *RoadIndex {
	return &RoadIndex{roads: make(map[uint32]*RoadJointIDs)}
}

// Import registers every road point of every joint. The joint id is the index
// of the joint inside the slice.
func (ri *RoadIndex) Import(joints []datastructure.Joint) {
	for jointID, joint := range joints {
		for _, rp := range joint.Points {
			ri.AddJoint(rp, datastructure.JointID(jointID))
		}
	}
}

func (ri *RoadIndex) AddJoint(rp datastructure.RoadPoint, jointID datastructure.JointID) {
	road, ok := ri.roads[rp.FeatureID]
	if !ok {
		road = &RoadJointIDs{}
		ri.roads[rp.FeatureID] = road
	}
	road.addJoint(rp.PointID, jointID)
}

// GetJointID returns the joint rp belongs to, or InvalidJointID if rp is not a
// joint.
func (ri *RoadIndex) GetJointID(rp datastructure.RoadPoint) datastructure.JointID {
	road, ok := ri.roads[rp.FeatureID]
	if !ok {
		return datastructure.InvalidJointID
	}
	return road.getJointID(rp.PointID)
}

// ForEachJoint visits every registered (pointID, jointID) of the feature in
// ascending point order.
func (ri *RoadIndex) ForEachJoint(featureID uint32, fn func(pointID uint32, jointID datastructure.JointID)) {
	road, ok := ri.roads[featureID]
	if !ok {
		return
	}
	for _, p := range road.points {
		fn(p.pointID, p.jointID)
	}
}

// ForEachRoad visits every feature that carries at least one joint.
func (ri *RoadIndex) ForEachRoad(fn func(featureID uint32, road *RoadJointIDs)) {
	for featureID, road := range ri.roads {
		fn(featureID, road)
	}
}

// FindNeighbor scans the feature of rp for the joint nearest to rp in the
// chosen direction. Returns InvalidJointID when the feature ends first.
func (ri *RoadIndex) FindNeighbor(rp datastructure.RoadPoint, forward bool) (datastructure.JointID, uint32) {
	road, ok := ri.roads[rp.FeatureID]
	if !ok {
		return datastructure.InvalidJointID, 0
	}
	return road.findNeighbor(rp.PointID, forward)
}

// GetAdjacentFtPoint finds the pivot joint shared by two features and fills
// the restriction point with the coincident road points. When the features
// share several joints the first one in point order of featureIDFrom wins.
func (ri *RoadIndex) GetAdjacentFtPoint(featureIDFrom, featureIDTo uint32) (datastructure.RestrictionPoint, bool) {
	roadFrom, okFrom := ri.roads[featureIDFrom]
	roadTo, okTo := ri.roads[featureIDTo]
	if !okFrom || !okTo {
		return datastructure.RestrictionPoint{}, false
	}

	for _, pf := range roadFrom.points {
		for _, pt := range roadTo.points {
			if pf.jointID == pt.jointID {
				return datastructure.RestrictionPoint{
					From:   datastructure.NewRoadPoint(featureIDFrom, pf.pointID),
					To:     datastructure.NewRoadPoint(featureIDTo, pt.pointID),
					Center: pf.jointID,
				}, true
			}
		}
	}
	return datastructure.RestrictionPoint{}, false
}
