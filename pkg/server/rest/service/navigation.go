package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/kv"

	"github.com/twpayne/go-polyline"
)

var (
	ErrJointNotFound = errors.New("joint not found")
	ErrNoConnection  = errors.New("joints are not connected")
)

type RoadGraph interface {
	GetEdgeList(jointID datastructure.JointID, isOutgoing, withoutRestrictions bool) []datastructure.JointEdge
	GetJointPoint(jointID datastructure.JointID) datastructure.Coordinate
	GetPoint(rp datastructure.RoadPoint) datastructure.Coordinate
	GetShortestConnectionPath(from, to datastructure.JointID) ([]datastructure.RoadPoint, error)
	GetNumJoints() int
	IsFakeFeature(featureID uint32) bool
}

type JointSnapper interface {
	SnapToNearestJoint(lat, lon float64) (datastructure.JointID, bool)
}

type KVDB interface {
	GetNearbyJoints(lat, lon float64) ([]kv.JointCell, error)
}

// NavigationService exposes the rewritten index graph for inspection: edge
// enumeration per joint (restricted or raw view), snapping, and connection
// polylines.
type NavigationService struct {
	graph   RoadGraph
	snapper JointSnapper
	kvDB    KVDB
}

func NewNavigationService(graph RoadGraph, snapper JointSnapper, kvDB KVDB) *NavigationService {
	return &NavigationService{
		graph:   graph,
		snapper: snapper,
		kvDB:    kvDB,
	}
}

func (s *NavigationService) validJoint(jointID uint32) bool {
	return int(jointID) < s.graph.GetNumJoints()
}

// GetJointEdges enumerates the edges of one joint together with its location.
// withoutRestrictions switches to the pre-rewrite view of the graph.
func (s *NavigationService) GetJointEdges(ctx context.Context, jointID uint32, isOutgoing,
	withoutRestrictions bool) ([]datastructure.JointEdge, datastructure.Coordinate, error) {
	if !s.validJoint(jointID) {
		return nil, datastructure.Coordinate{}, ErrJointNotFound
	}

	edges := s.graph.GetEdgeList(datastructure.JointID(jointID), isOutgoing, withoutRestrictions)
	return edges, s.graph.GetJointPoint(datastructure.JointID(jointID)), nil
}

// SnapToJoint snaps a raw coordinate to the nearest joint.
func (s *NavigationService) SnapToJoint(ctx context.Context, lat, lon float64) (uint32,
	datastructure.Coordinate, error) {
	jointID, ok := s.snapper.SnapToNearestJoint(lat, lon)
	if !ok {
		return 0, datastructure.Coordinate{}, ErrJointNotFound
	}
	return uint32(jointID), s.graph.GetJointPoint(jointID), nil
}

// GetNearbyJoints lists the joints in the h3 cell neighborhood of a
// coordinate.
func (s *NavigationService) GetNearbyJoints(ctx context.Context, lat, lon float64) ([]kv.JointCell, error) {
	joints, err := s.kvDB.GetNearbyJoints(lat, lon)
	if err != nil {
		if errors.Is(err, kv.ErrJointsNotFound) {
			return nil, ErrJointNotFound
		}
		return nil, err
	}
	return joints, nil
}

// GetConnectionPolyline encodes the cheapest direct connection between two
// joints as a google encoded polyline.
func (s *NavigationService) GetConnectionPolyline(ctx context.Context, from, to uint32) (string, error) {
	if !s.validJoint(from) || !s.validJoint(to) {
		return "", ErrJointNotFound
	}

	path, err := s.graph.GetShortestConnectionPath(datastructure.JointID(from), datastructure.JointID(to))
	if err != nil {
		return "", err
	}
	if len(path) == 0 {
		return "", ErrNoConnection
	}

	coords := make([][]float64, 0, len(path))
	for _, rp := range path {
		point := s.graph.GetPoint(rp)
		coords = append(coords, []float64{point.Lat, point.Lon})
	}
	return string(polyline.EncodeCoords(coords)), nil
}
