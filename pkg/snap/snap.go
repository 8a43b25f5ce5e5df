package snap

import (
	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

const (
	// rtree leaves are points, give them a tiny footprint
	pointTolerance = 1e-6

	minBranch = 25
	maxBranch = 50
)

// jointLocation is one joint placed at its representative coordinate.
type jointLocation struct {
	jointID  datastructure.JointID
	location rtreego.Point
}

func (j *jointLocation) Bounds() rtreego.Rect {
	return j.location.ToRect(pointTolerance)
}

// JointSnapper answers which joint is nearest to a raw coordinate. Build it
// once after the graph is final, lookups only afterwards.
type JointSnapper struct {
	tree *rtreego.Rtree
}

func NewJointSnapper() *JointSnapper {
	return &JointSnapper{tree: rtreego.NewTree(2, minBranch, maxBranch)}
}

func (s *JointSnapper) InsertJoint(jointID datastructure.JointID, coord datastructure.Coordinate) {
	s.tree.Insert(&jointLocation{
		jointID:  jointID,
		location: rtreego.Point{coord.Lat, coord.Lon},
	})
}

// SnapToNearestJoint returns the joint nearest to (lat, lon). ok is false on
// an empty index.
func (s *JointSnapper) SnapToNearestJoint(lat, lon float64) (datastructure.JointID, bool) {
	nearest := s.tree.NearestNeighbor(rtreego.Point{lat, lon})
	if nearest == nil {
		return datastructure.InvalidJointID, false
	}
	return nearest.(*jointLocation).jointID, true
}
