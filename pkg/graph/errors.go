package graph

import (
	"fmt"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"
)

type ErrorKind int

const (
	// ErrKindPrecondition is programmer error. Not returned, the graph panics
	// on these.
	ErrKindPrecondition ErrorKind = iota
	// ErrKindRestrictionData means the restriction references topology that
	// does not exist in the graph (no shared road feature, no one-step-aside
	// joint).
	ErrKindRestrictionData
	// ErrKindUnsupportedRestriction is a restriction shape the rewriter does
	// not handle (not exactly two features, non-adjacent features).
	ErrKindUnsupportedRestriction
	// ErrKindDegenerateTopology is a self loop or U-turn met mid-rewrite.
	ErrKindDegenerateTopology
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindPrecondition:
		return "precondition"
	case ErrKindRestrictionData:
		return "restriction data"
	case ErrKindUnsupportedRestriction:
		return "unsupported restriction"
	default:
		return "degenerate topology"
	}
}

// RoutingError reports a fault met while mutating the graph, carrying the
// joint pair it happened between.
type RoutingError struct {
	Kind   ErrorKind
	From   datastructure.JointID
	To     datastructure.JointID
	Reason string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("%s error between joint %d and joint %d: %s", e.Kind, e.From, e.To, e.Reason)
}

func newRestrictionDataError(from, to datastructure.JointID, reason string) *RoutingError {
	return &RoutingError{
		Kind:   ErrKindRestrictionData,
		From:   from,
		To:     to,
		Reason: reason,
	}
}
