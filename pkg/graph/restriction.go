package graph

import (
	"fmt"
	"log"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"golang.org/x/exp/slices"
)

// findOneStepAsideRoadPoint collects the joints that are edge targets and lie
// on the feature of center.
func (g *IndexGraph) findOneStepAsideRoadPoint(center datastructure.RoadPoint,
	edges []datastructure.JointEdge) []datastructure.JointID {
	var oneStepAside []datastructure.JointID
	g.roadIndex.ForEachJoint(center.FeatureID, func(pointID uint32, jointID datastructure.JointID) {
		for _, e := range edges {
			if e.Target == jointID {
				oneStepAside = append(oneStepAside, jointID)
			}
		}
	})
	return oneStepAside
}

func (g *IndexGraph) getIngoingAndOutgoingEdges(center datastructure.JointID,
	withoutRestrictions bool) ([]datastructure.JointEdge, []datastructure.JointEdge, bool) {
	ingoing := g.GetEdgeList(center, false, withoutRestrictions)
	if len(ingoing) == 0 {
		return nil, nil, false
	}

	outgoing := g.GetEdgeList(center, true, withoutRestrictions)
	if len(outgoing) == 0 {
		return nil, nil, false
	}
	return ingoing, outgoing, true
}

// applyRestrictionPrepareData canonicalizes a restriction point into a
// restriction info. Enumeration runs in the without-restrictions view so the
// canonical form always talks about the original graph.
func (g *IndexGraph) applyRestrictionPrepareData(restrictionPoint datastructure.RestrictionPoint) (datastructure.RestrictionInfo, error) {
	ingoingEdges := g.GetEdgeList(restrictionPoint.Center, false, true)
	fromOneStepAside := g.findOneStepAsideRoadPoint(restrictionPoint.From, ingoingEdges)
	if len(fromOneStepAside) == 0 {
		return datastructure.RestrictionInfo{}, newRestrictionDataError(restrictionPoint.Center,
			restrictionPoint.Center, fmt.Sprintf("no ingoing joint one step aside on feature %d",
				restrictionPoint.From.FeatureID))
	}

	outgoingEdges := g.GetEdgeList(restrictionPoint.Center, true, true)
	toOneStepAside := g.findOneStepAsideRoadPoint(restrictionPoint.To, outgoingEdges)
	if len(toOneStepAside) == 0 {
		return datastructure.RestrictionInfo{}, newRestrictionDataError(restrictionPoint.Center,
			restrictionPoint.Center, fmt.Sprintf("no outgoing joint one step aside on feature %d",
				restrictionPoint.To.FeatureID))
	}

	return datastructure.RestrictionInfo{
		Center:        restrictionPoint.Center,
		From:          fromOneStepAside[len(fromOneStepAside)-1],
		To:            toOneStepAside[len(toOneStepAside)-1],
		FromFeatureID: restrictionPoint.From.FeatureID,
		ToFeatureID:   restrictionPoint.To.FeatureID,
	}, nil
}

// applyRestrictionRealFeatures expands a restriction stated in original
// feature ids across every rewrite applied so far. Each compatible pair of
// expanded edges gets fn applied, so a restriction composed after earlier
// rewrites still lands on all the concrete edges descending from the
// referenced ones.
func (g *IndexGraph) applyRestrictionRealFeatures(restrictionPoint datastructure.RestrictionPoint,
	fn func(datastructure.RestrictionInfo) error) error {
	restrictionInfo, err := g.applyRestrictionPrepareData(restrictionPoint)
	if err != nil {
		return err
	}

	inEdge, outEdge := restrictionInfo.ToEdges()
	var ingoingRestEdges []datastructure.DirectedEdge
	g.forEachNonBlockedEdgeMappingNode(inEdge, func(ingoing datastructure.DirectedEdge) {
		ingoingRestEdges = append(ingoingRestEdges, ingoing)
	})

	var outgoingRestEdges []datastructure.DirectedEdge
	g.forEachNonBlockedEdgeMappingNode(outEdge, func(outgoing datastructure.DirectedEdge) {
		outgoingRestEdges = append(outgoingRestEdges, outgoing)
	})

	for _, ingoing := range ingoingRestEdges {
		for _, outgoing := range outgoingRestEdges {
			if !datastructure.IsCompatible(ingoing, outgoing) {
				continue
			}
			if err := fn(datastructure.NewRestrictionInfo(ingoing, outgoing)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *IndexGraph) ApplyRestrictionNoRealFeatures(restrictionPoint datastructure.RestrictionPoint) error {
	return g.applyRestrictionRealFeatures(restrictionPoint, g.ApplyRestrictionNo)
}

func (g *IndexGraph) ApplyRestrictionOnlyRealFeatures(restrictionPoint datastructure.RestrictionPoint) error {
	return g.applyRestrictionRealFeatures(restrictionPoint, g.ApplyRestrictionOnly)
}

// ApplyRestrictionNo forbids the maneuver from -> center -> to.
//
// Degree one cases block a single edge. The general case duplicates the pivot
// for traffic arriving along the restricted ingoing feature and reconstructs
// every still-allowed outgoing edge from the duplicate. Forbidding
// 4 -> O -> 3 below blocks the edge 4-O and adds fake features 4-N, N-1 and
// N-2; nothing leads from N to 3 anymore:
//
//	1  2  3            1  2  3
//	 \ | /            /|\ | /
//	  \|/     =>     / | \|/
//	   O            N  |  O
//	   |             \ |  |
//	   4              \|  |
//	                   4--+
//
// The edge mapping records 4-O -> 4-N, O-1 -> N-1, O-2 -> N-2.
func (g *IndexGraph) ApplyRestrictionNo(restrictionInfo datastructure.RestrictionInfo) error {
	center := restrictionInfo.Center
	from, to := restrictionInfo.ToEdges()
	if g.isBlocked(from) || g.isBlocked(to) {
		panic(fmt.Errorf("no restriction %v -> %v references an already blocked edge", from, to))
	}

	ingoingEdges, outgoingEdges, ok := g.getIngoingAndOutgoingEdges(center, false)
	if !ok {
		return nil
	}

	// one ingoing edge case
	if len(ingoingEdges) == 1 {
		g.disableEdge(to)
		return nil
	}

	// one outgoing edge case
	if len(outgoingEdges) == 1 {
		g.disableEdge(from)
		return nil
	}

	// drop the forbidden target, U-turns back onto the ingoing joint, and
	// center self loops, then deduplicate by target. Parallel features to a
	// surviving target come back through the connection paths below.
	filtered := outgoingEdges[:0]
	for _, e := range outgoingEdges {
		if e.Target == restrictionInfo.To || e.Target == restrictionInfo.From || e.Target == center {
			continue
		}
		filtered = append(filtered, e)
	}
	slices.SortFunc(filtered, func(a, b datastructure.JointEdge) int {
		return int(a.Target) - int(b.Target)
	})
	filtered = slices.CompactFunc(filtered, func(a, b datastructure.JointEdge) bool {
		return a.Target == b.Target
	})

	outgoingGeomEdges, err := g.getOutgoingGeomEdges(filtered, center)
	if err != nil {
		return err
	}

	ingoingPath := g.GetFeatureConnectionPath(restrictionInfo.From, center, restrictionInfo.FromFeatureID)
	if len(ingoingPath) == 0 {
		return nil
	}

	newJoint := datastructure.InvalidJointID
	for i, e := range outgoingGeomEdges {
		if i == 0 {
			if restrictionInfo.From == center || center == e.Target {
				// a no restriction on some bidirectional road can produce
				// outgoing edges whose target is the center itself. Leave the
				// restriction unenforced rather than synthesize a loop.
				return nil
			}

			ingoingFeatureID := g.addFakeLooseEndFeature(restrictionInfo.From, ingoingPath)
			newJoint = g.InsertJoint(datastructure.NewRoadPoint(ingoingFeatureID, uint32(len(ingoingPath)-1)))
			g.edgeMapping[from] = append(g.edgeMapping[from],
				datastructure.NewDirectedEdge(restrictionInfo.From, newJoint, ingoingFeatureID))
		}

		outgoingFeatureID := g.addFakeFeature(newJoint, e.Target, e.Path)
		toItEdge := datastructure.NewDirectedEdge(center, e.Target, e.Path[0].FeatureID)
		g.edgeMapping[toItEdge] = append(g.edgeMapping[toItEdge],
			datastructure.NewDirectedEdge(newJoint, e.Target, outgoingFeatureID))
	}

	g.disableEdge(from)
	return nil
}

// ApplyRestrictionOnly mandates the maneuver from -> center -> to. Traffic
// arriving along the restricted ingoing feature is diverted through a new
// joint from which only the mandatory outgoing edge remains reachable; all
// other traffic keeps using the original pivot.
func (g *IndexGraph) ApplyRestrictionOnly(restrictionInfo datastructure.RestrictionInfo) error {
	center := restrictionInfo.Center
	if restrictionInfo.To == center || restrictionInfo.From == center {
		return nil
	}

	ingoingEdges, outgoingEdges, ok := g.getIngoingAndOutgoingEdges(center, false)
	if !ok {
		return nil
	}

	// one outgoing edge case: the mandatory edge is the only one already
	if len(outgoingEdges) == 1 {
		return nil
	}

	// one ingoing edge case: every outgoing edge away from the mandatory
	// target dies, parallel features included
	if len(ingoingEdges) == 1 {
		for _, e := range outgoingEdges {
			if e.Target != restrictionInfo.To {
				g.disableAllEdges(center, e.Target)
			}
		}
		return nil
	}

	ingoingPath := g.GetFeatureConnectionPath(restrictionInfo.From, center, restrictionInfo.FromFeatureID)
	if len(ingoingPath) < 2 {
		return nil
	}

	outgoingPath := g.GetFeatureConnectionPath(center, restrictionInfo.To, restrictionInfo.ToFeatureID)
	if len(outgoingPath) < 2 {
		return nil
	}

	ingoingFeatureID := g.addFakeLooseEndFeature(restrictionInfo.From, ingoingPath)
	newJoint := g.InsertJoint(datastructure.NewRoadPoint(ingoingFeatureID, uint32(len(ingoingPath)-1)))
	outgoingFeatureID := g.addFakeFeature(newJoint, restrictionInfo.To, outgoingPath)

	from, to := restrictionInfo.ToEdges()
	g.edgeMapping[from] = append(g.edgeMapping[from],
		datastructure.NewDirectedEdge(restrictionInfo.From, newJoint, ingoingFeatureID))
	g.edgeMapping[to] = append(g.edgeMapping[to],
		datastructure.NewDirectedEdge(newJoint, restrictionInfo.To, outgoingFeatureID))

	g.disableEdge(from)
	return nil
}

// ApplyRestrictions applies a batch best effort: a failing restriction is
// logged and skipped, partial effects of it stay. Returns how many
// restrictions were applied and how many were skipped.
func (g *IndexGraph) ApplyRestrictions(restrictions []datastructure.Restriction) (applied, skipped int) {
	for _, restriction := range restrictions {
		if len(restriction.FeatureIDs) != 2 {
			log.Printf("only two link restrictions are supported, got a %d link restriction", len(restriction.FeatureIDs))
			skipped++
			continue
		}

		restrictionPoint, ok := g.roadIndex.GetAdjacentFtPoint(restriction.FeatureIDs[0], restriction.FeatureIDs[1])
		if !ok {
			log.Printf("restriction features %v are not adjacent", restriction.FeatureIDs)
			skipped++
			continue
		}

		var err error
		switch restriction.Type {
		case datastructure.RestrictionNo:
			err = g.ApplyRestrictionNoRealFeatures(restrictionPoint)
		case datastructure.RestrictionOnly:
			err = g.ApplyRestrictionOnlyRealFeatures(restrictionPoint)
		}
		if err != nil {
			log.Printf("error applying %s restriction on features %v: %v",
				restriction.Type, restriction.FeatureIDs, err)
			skipped++
			continue
		}
		applied++
	}
	return applied, skipped
}
