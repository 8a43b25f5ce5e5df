package datastructure

import "fmt"

// JointID identifies one joint in the road network. A joint is a set of road
// points that share the same geographic location (an intersection, or the
// endpoint of a synthesized feature).
type JointID uint32

const InvalidJointID JointID = ^JointID(0)

// RoadPoint is one vertex of a feature polyline, addressed by the feature id
// and the index of the point inside the polyline.
type RoadPoint struct {
	FeatureID uint32
	PointID   uint32
}

func NewRoadPoint(featureID, pointID uint32) RoadPoint {
	return RoadPoint{FeatureID: featureID, PointID: pointID}
}

func (rp RoadPoint) String() string {
	return fmt.Sprintf("RoadPoint[%d, %d]", rp.FeatureID, rp.PointID)
}

// Joint fuses coincident road points into one graph node. A road point belongs
// to at most one joint.
type Joint struct {
	Points []RoadPoint
}

func NewJoint(points ...RoadPoint) Joint {
	return Joint{Points: points}
}

func (j *Joint) AddPoint(rp RoadPoint) {
	j.Points = append(j.Points, rp)
}

type Coordinate struct {
	Lat float64
	Lon float64
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

// RoadGeometry is the polyline of a feature plus the attributes the graph
// cares about. The zero value is the sentinel for an unknown feature id
// (Road == false).
type RoadGeometry struct {
	Road   bool
	OneWay bool
	Speed  float64 // nominal speed, km/h
	Points []Coordinate
}

func NewRoadGeometry(oneWay bool, speed float64, points []Coordinate) RoadGeometry {
	return RoadGeometry{
		Road:   true,
		OneWay: oneWay,
		Speed:  speed,
		Points: points,
	}
}

func (g RoadGeometry) IsRoad() bool { return g.Road }

func (g RoadGeometry) IsOneWay() bool { return g.OneWay }

func (g RoadGeometry) GetSpeed() float64 { return g.Speed }

func (g RoadGeometry) GetPoint(pointID uint32) Coordinate { return g.Points[pointID] }

func (g RoadGeometry) GetPointsCount() int { return len(g.Points) }

// DirectedEdge identity includes the feature id because two joints can be
// connected by more than one feature.
type DirectedEdge struct {
	From      JointID
	To        JointID
	FeatureID uint32
}

func NewDirectedEdge(from, to JointID, featureID uint32) DirectedEdge {
	return DirectedEdge{From: from, To: to, FeatureID: featureID}
}

func (e DirectedEdge) String() string {
	return fmt.Sprintf("DirectedEdge[%d, %d, %d]", e.From, e.To, e.FeatureID)
}

// IsCompatible reports whether outgoing continues where ingoing ends, so the
// pair forms a maneuver through a shared joint.
func IsCompatible(ingoing, outgoing DirectedEdge) bool {
	return ingoing.To == outgoing.From
}

// JointEdge is the edge enumeration output consumed by the path search.
type JointEdge struct {
	Target JointID
	Weight float64
}

func NewJointEdge(target JointID, weight float64) JointEdge {
	return JointEdge{Target: target, Weight: weight}
}

// JointEdgeGeom carries the concrete point sequence of one connection between
// two joints. Used while rewriting restrictions.
type JointEdgeGeom struct {
	Target JointID
	Path   []RoadPoint
}

func NewJointEdgeGeom(target JointID, path []RoadPoint) JointEdgeGeom {
	return JointEdgeGeom{Target: target, Path: path}
}

// RestrictionPoint is the geometric locus of a two-feature restriction: the
// two coincident road points and the pivot joint they meet at.
type RestrictionPoint struct {
	From   RoadPoint
	To     RoadPoint
	Center JointID
}

// RestrictionInfo is the rewriter's canonical form of a restriction: the pivot
// joint, the one-step-aside joints on both features, and the feature ids.
type RestrictionInfo struct {
	Center        JointID
	From          JointID
	To            JointID
	FromFeatureID uint32
	ToFeatureID   uint32
}

func NewRestrictionInfo(ingoing, outgoing DirectedEdge) RestrictionInfo {
	return RestrictionInfo{
		Center:        ingoing.To,
		From:          ingoing.From,
		To:            outgoing.To,
		FromFeatureID: ingoing.FeatureID,
		ToFeatureID:   outgoing.FeatureID,
	}
}

// ToEdges returns the ingoing and outgoing directed edges of the maneuver the
// restriction talks about.
func (r RestrictionInfo) ToEdges() (DirectedEdge, DirectedEdge) {
	return NewDirectedEdge(r.From, r.Center, r.FromFeatureID),
		NewDirectedEdge(r.Center, r.To, r.ToFeatureID)
}

type RestrictionType int

const (
	RestrictionNo RestrictionType = iota
	RestrictionOnly
)

func (t RestrictionType) String() string {
	if t == RestrictionNo {
		return "No"
	}
	return "Only"
}

// Restriction as it arrives from the map data. Only two-feature restrictions
// through a shared pivot are supported by the rewriter.
type Restriction struct {
	Type       RestrictionType
	FeatureIDs []uint32
}

func NewRestriction(t RestrictionType, featureIDs []uint32) Restriction {
	return Restriction{Type: t, FeatureIDs: featureIDs}
}
