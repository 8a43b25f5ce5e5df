package service

import (
	"context"
	"testing"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGraph struct {
	numJoints int
	edges     map[datastructure.JointID][]datastructure.JointEdge
	path      []datastructure.RoadPoint
}

func (s *stubGraph) GetEdgeList(jointID datastructure.JointID, isOutgoing, withoutRestrictions bool) []datastructure.JointEdge {
	return s.edges[jointID]
}

func (s *stubGraph) GetJointPoint(jointID datastructure.JointID) datastructure.Coordinate {
	return datastructure.NewCoordinate(float64(jointID), float64(jointID))
}

func (s *stubGraph) GetPoint(rp datastructure.RoadPoint) datastructure.Coordinate {
	return datastructure.NewCoordinate(float64(rp.PointID), float64(rp.PointID))
}

func (s *stubGraph) GetShortestConnectionPath(from, to datastructure.JointID) ([]datastructure.RoadPoint, error) {
	return s.path, nil
}

func (s *stubGraph) GetNumJoints() int { return s.numJoints }

func (s *stubGraph) IsFakeFeature(featureID uint32) bool { return false }

type stubSnapper struct {
	jointID datastructure.JointID
	ok      bool
}

func (s *stubSnapper) SnapToNearestJoint(lat, lon float64) (datastructure.JointID, bool) {
	return s.jointID, s.ok
}

type stubKVDB struct {
	joints []kv.JointCell
	err    error
}

func (s *stubKVDB) GetNearbyJoints(lat, lon float64) ([]kv.JointCell, error) {
	return s.joints, s.err
}

func TestGetJointEdges(t *testing.T) {
	g := &stubGraph{
		numJoints: 3,
		edges: map[datastructure.JointID][]datastructure.JointEdge{
			1: {datastructure.NewJointEdge(2, 10)},
		},
	}
	svc := NewNavigationService(g, &stubSnapper{}, &stubKVDB{})

	edges, point, err := svc.GetJointEdges(context.Background(), 1, true, false)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, datastructure.JointID(2), edges[0].Target)
	assert.Equal(t, 1.0, point.Lat)

	_, _, err = svc.GetJointEdges(context.Background(), 9, true, false)
	assert.ErrorIs(t, err, ErrJointNotFound)
}

func TestSnapToJoint(t *testing.T) {
	svc := NewNavigationService(&stubGraph{numJoints: 3}, &stubSnapper{jointID: 2, ok: true}, &stubKVDB{})

	jointID, point, err := svc.SnapToJoint(context.Background(), -7.55, 110.83)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), jointID)
	assert.Equal(t, 2.0, point.Lat)

	svcMiss := NewNavigationService(&stubGraph{numJoints: 3}, &stubSnapper{ok: false}, &stubKVDB{})
	_, _, err = svcMiss.SnapToJoint(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrJointNotFound)
}

func TestGetNearbyJoints(t *testing.T) {
	svc := NewNavigationService(&stubGraph{numJoints: 3}, &stubSnapper{},
		&stubKVDB{err: kv.ErrJointsNotFound})
	_, err := svc.GetNearbyJoints(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrJointNotFound)

	svcHit := NewNavigationService(&stubGraph{numJoints: 3}, &stubSnapper{},
		&stubKVDB{joints: []kv.JointCell{{JointID: 1}}})
	joints, err := svcHit.GetNearbyJoints(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, joints, 1)
}

func TestGetConnectionPolyline(t *testing.T) {
	g := &stubGraph{
		numJoints: 3,
		path: []datastructure.RoadPoint{
			datastructure.NewRoadPoint(0, 0),
			datastructure.NewRoadPoint(0, 1),
		},
	}
	svc := NewNavigationService(g, &stubSnapper{}, &stubKVDB{})

	encoded, err := svc.GetConnectionPolyline(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	_, err = svc.GetConnectionPolyline(context.Background(), 0, 9)
	assert.ErrorIs(t, err, ErrJointNotFound)

	gEmpty := &stubGraph{numJoints: 3}
	svcEmpty := NewNavigationService(gEmpty, &stubSnapper{}, &stubKVDB{})
	_, err = svcEmpty.GetConnectionPolyline(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrNoConnection)
}
