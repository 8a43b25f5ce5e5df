package graph

import (
	"testing"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRoadIndex() *RoadIndex {
	ri := NewRoadIndex()
	ri.Import([]datastructure.Joint{
		datastructure.NewJoint(datastructure.NewRoadPoint(0, 0)),
		datastructure.NewJoint(datastructure.NewRoadPoint(0, 3), datastructure.NewRoadPoint(1, 0)),
		datastructure.NewJoint(datastructure.NewRoadPoint(0, 7), datastructure.NewRoadPoint(1, 2)),
	})
	return ri
}

func TestRoadIndexGetJointID(t *testing.T) {
	ri := buildRoadIndex()

	assert.Equal(t, datastructure.JointID(0), ri.GetJointID(datastructure.NewRoadPoint(0, 0)))
	assert.Equal(t, datastructure.JointID(1), ri.GetJointID(datastructure.NewRoadPoint(0, 3)))
	assert.Equal(t, datastructure.JointID(1), ri.GetJointID(datastructure.NewRoadPoint(1, 0)))
	assert.Equal(t, datastructure.InvalidJointID, ri.GetJointID(datastructure.NewRoadPoint(0, 5)))
	assert.Equal(t, datastructure.InvalidJointID, ri.GetJointID(datastructure.NewRoadPoint(9, 0)))
}

func TestRoadIndexAddJointPanicsOnDuplicate(t *testing.T) {
	ri := buildRoadIndex()

	assert.Panics(t, func() {
		ri.AddJoint(datastructure.NewRoadPoint(0, 3), 2)
	})
}

func TestRoadIndexForEachJointAscending(t *testing.T) {
	ri := buildRoadIndex()

	var pointIDs []uint32
	var jointIDs []datastructure.JointID
	ri.ForEachJoint(0, func(pointID uint32, jointID datastructure.JointID) {
		pointIDs = append(pointIDs, pointID)
		jointIDs = append(jointIDs, jointID)
	})

	assert.Equal(t, []uint32{0, 3, 7}, pointIDs)
	assert.Equal(t, []datastructure.JointID{0, 1, 2}, jointIDs)
}

func TestRoadIndexFindNeighbor(t *testing.T) {
	ri := buildRoadIndex()

	// from a point that is itself a joint
	jointID, pointID := ri.FindNeighbor(datastructure.NewRoadPoint(0, 3), true)
	assert.Equal(t, datastructure.JointID(2), jointID)
	assert.Equal(t, uint32(7), pointID)

	jointID, pointID = ri.FindNeighbor(datastructure.NewRoadPoint(0, 3), false)
	assert.Equal(t, datastructure.JointID(0), jointID)
	assert.Equal(t, uint32(0), pointID)

	// from a point between joints
	jointID, pointID = ri.FindNeighbor(datastructure.NewRoadPoint(0, 5), true)
	assert.Equal(t, datastructure.JointID(2), jointID)
	assert.Equal(t, uint32(7), pointID)

	jointID, pointID = ri.FindNeighbor(datastructure.NewRoadPoint(0, 5), false)
	assert.Equal(t, datastructure.JointID(1), jointID)
	assert.Equal(t, uint32(3), pointID)

	// running off both feature ends
	jointID, _ = ri.FindNeighbor(datastructure.NewRoadPoint(0, 7), true)
	assert.Equal(t, datastructure.InvalidJointID, jointID)

	jointID, _ = ri.FindNeighbor(datastructure.NewRoadPoint(0, 0), false)
	assert.Equal(t, datastructure.InvalidJointID, jointID)
}

func TestRoadIndexGetAdjacentFtPoint(t *testing.T) {
	ri := buildRoadIndex()

	restrictionPoint, ok := ri.GetAdjacentFtPoint(0, 1)
	require.True(t, ok)
	assert.Equal(t, datastructure.JointID(1), restrictionPoint.Center)
	assert.Equal(t, datastructure.NewRoadPoint(0, 3), restrictionPoint.From)
	assert.Equal(t, datastructure.NewRoadPoint(1, 0), restrictionPoint.To)

	_, ok = ri.GetAdjacentFtPoint(0, 9)
	assert.False(t, ok)
}
