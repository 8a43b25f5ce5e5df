package osmparser

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
	"github.com/lintang-b-s/jointgraph/pkg/util"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

type nodeCoord struct {
	lat float64
	lon float64
}

// RoadNetworkData is everything the index graph needs from an openstreetmap
// extract: feature geometries, the joints fusing coincident road points, and
// the turn restrictions.
type RoadNetworkData struct {
	Geometries   map[uint32]datastructure.RoadGeometry
	Joints       []datastructure.Joint
	Restrictions []datastructure.Restriction
}

type OsmParser struct {
	wayNodeUses  map[int64]int32
	acceptedNode map[int64]nodeCoord
	wayFeature   map[int64]uint32 // osm way id -> feature id, restrictions reference way ids
	acceptedWays int
}

func NewOSMParser() *OsmParser {
	return &OsmParser{
		wayNodeUses:  make(map[int64]int32),
		acceptedNode: make(map[int64]nodeCoord),
		wayFeature:   make(map[int64]uint32),
	}
}

// Parse scans the pbf file in passes: ways to count node uses, nodes for
// coordinates, ways again to build feature geometry and joints, relations for
// turn restrictions.
func (p *OsmParser) Parse(mapFile string) (*RoadNetworkData, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p.scanWayNodeUses(f)

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	p.scanNodeCoords(f)

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	geometries, joints := p.buildFeatures(f)

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	restrictions := p.scanRestrictions(f)

	log.Printf("total features: %d", len(geometries))
	log.Printf("total joints: %d", len(joints))
	log.Printf("total turn restrictions: %d", len(restrictions))

	return &RoadNetworkData{
		Geometries:   geometries,
		Joints:       joints,
		Restrictions: restrictions,
	}, nil
}

func (p *OsmParser) scanWayNodeUses(f *os.File) {
	scanner := osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	defer scanner.Close()

	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}

		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			log.Printf("reading openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for _, node := range way.Nodes {
			p.wayNodeUses[int64(node.ID)]++
		}
	}
	p.acceptedWays = countWays
}

func (p *OsmParser) scanNodeCoords(f *os.File) {
	scanner := osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}

		node := o.(*osm.Node)
		if _, ok := p.wayNodeUses[int64(node.ID)]; !ok {
			continue
		}
		if (countNodes+1)%200000 == 0 {
			log.Printf("reading openstreetmap nodes: %d...", countNodes+1)
		}
		countNodes++

		p.acceptedNode[int64(node.ID)] = nodeCoord{lat: node.Lat, lon: node.Lon}
	}
}

func (p *OsmParser) buildFeatures(f *os.File) (map[uint32]datastructure.RoadGeometry, []datastructure.Joint) {
	scanner := osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()

	bar := newParserBar(p.acceptedWays, "[cyan][3/4][reset] building road features...")

	geometries := make(map[uint32]datastructure.RoadGeometry)
	jointPoints := make(map[int64][]datastructure.RoadPoint)
	nextFeatureID := uint32(0)

	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}

		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		bar.Add(1)

		maxSpeed, oneWay, reversedOneWay := getMaxSpeedOneWay(way)

		nodeIDs := make([]int64, 0, len(way.Nodes))
		points := make([]datastructure.Coordinate, 0, len(way.Nodes))
		for _, node := range way.Nodes {
			coord, ok := p.acceptedNode[int64(node.ID)]
			if !ok {
				continue
			}
			nodeIDs = append(nodeIDs, int64(node.ID))
			points = append(points, datastructure.NewCoordinate(coord.lat, coord.lon))
		}
		if len(points) < 2 {
			continue
		}

		if reversedOneWay {
			nodeIDs = util.ReverseG(nodeIDs)
			points = util.ReverseG(points)
		}

		featureID := nextFeatureID
		nextFeatureID++
		p.wayFeature[int64(way.ID)] = featureID
		geometries[featureID] = datastructure.NewRoadGeometry(oneWay, maxSpeed, points)

		for pointID, nodeID := range nodeIDs {
			if p.wayNodeUses[nodeID] >= 2 {
				jointPoints[nodeID] = append(jointPoints[nodeID],
					datastructure.NewRoadPoint(featureID, uint32(pointID)))
			}
		}
	}

	joints := make([]datastructure.Joint, 0, len(jointPoints))
	for _, points := range jointPoints {
		// a node used twice is only a joint when two road points actually
		// landed on it, a filtered way can leave a single use behind
		if len(points) < 2 {
			continue
		}
		joints = append(joints, datastructure.NewJoint(points...))
	}
	return geometries, joints
}

func (p *OsmParser) scanRestrictions(f *os.File) []datastructure.Restriction {
	scanner := osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()

	var restrictions []datastructure.Restriction
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeRelation {
			continue
		}

		relation := o.(*osm.Relation)
		if relation.Tags.Find("type") != "restriction" {
			continue
		}

		restrictionValue := relation.Tags.Find("restriction")
		if restrictionValue == "" {
			restrictionValue = relation.Tags.Find("restriction:motorcar")
		}

		var restrictionType datastructure.RestrictionType
		switch {
		case strings.HasPrefix(restrictionValue, "no_"):
			restrictionType = datastructure.RestrictionNo
		case strings.HasPrefix(restrictionValue, "only_"):
			restrictionType = datastructure.RestrictionOnly
		default:
			continue
		}

		fromWayID, toWayID := int64(-1), int64(-1)
		for _, member := range relation.Members {
			if member.Type != osm.TypeWay {
				continue
			}
			switch member.Role {
			case "from":
				fromWayID = member.Ref
			case "to":
				toWayID = member.Ref
			}
		}
		if fromWayID == -1 || toWayID == -1 {
			continue
		}

		fromFeatureID, okFrom := p.wayFeature[fromWayID]
		toFeatureID, okTo := p.wayFeature[toWayID]
		if !okFrom || !okTo {
			// the restriction references a way we filtered out
			continue
		}

		restrictions = append(restrictions,
			datastructure.NewRestriction(restrictionType, []uint32{fromFeatureID, toFeatureID}))
	}
	return restrictions
}

func getMaxSpeedOneWay(way *osm.Way) (float64, bool, bool) {
	maxSpeed := 0.0
	oneWay := false
	reversedOneWay := false
	roadType := ""

	for _, tag := range way.Tags {
		switch tag.Key {
		case "highway":
			roadType = tag.Value
		case "junction":
			if tag.Value == "roundabout" || tag.Value == "circular" {
				oneWay = true
			}
		case "oneway":
			if tag.Value != "no" && tag.Value != "" {
				oneWay = true
				if tag.Value == "-1" {
					reversedOneWay = true
				}
			}
		case "maxspeed":
			maxSpeed = parseMaxSpeed(tag.Value)
		}
	}

	if maxSpeed <= 0 {
		maxSpeed = RoadTypeMaxSpeed(roadType)
	}
	return maxSpeed, oneWay, reversedOneWay
}

func parseMaxSpeed(value string) float64 {
	value = strings.TrimSpace(value)
	mph := false
	if strings.HasSuffix(value, "mph") {
		mph = true
		value = strings.TrimSpace(strings.TrimSuffix(value, "mph"))
	}

	speed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if mph {
		speed *= 1.609344
	}
	return speed
}
