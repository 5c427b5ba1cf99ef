package recommend

import "math"

// usefulnessEpsilon keeps the usefulness ratio defined when a material covers
// no topics.
const usefulnessEpsilon = 1e-4

// Stats are the per-candidate topology numbers gathered by the traversal
// query. The composite score is computed from them in Go so the arithmetic
// stays inspectable and unit-testable.
type Stats struct {
	// CoveredCount is the number of distinct topics the candidate covers (cc)
	CoveredCount int64
	// KnownCoveredCount is how many of those topics the user already knows
	KnownCoveredCount int64
	// MissingPrereqCount is the number of distinct prerequisite topics
	// reachable within the hop bound from the covered topics that the
	// candidate does not itself cover and the user does not know (cmpc)
	MissingPrereqCount int64
	// SeriesPosition is the number of HAS_NEXT hops separating the candidate
	// from the start of the longest relevant chain leading to it (cprnc);
	// 0 when the candidate starts a series or is not in one
	SeriesPosition int64
	// NoPredecessor is true when no resource points at the candidate through
	// HAS_NEXT at all (npr)
	NoPredecessor bool
	// IsLearningPath flags curated multi-resource sequences
	IsLearningPath bool
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Score computes the composite relevance of one candidate. userAware selects
// the full formula with the usefulness term; it applies only when an acting
// user is known and the not-completed side of the result set was requested.
//
// A candidate covering nothing scores at the floor of its branch (the
// sign(cc) term zeroes the topology contribution) but is not excluded: it can
// still surface through the series and learning-path terms.
func Score(s Stats, userAware bool, learningPathBonus float64) float64 {
	cc := float64(s.CoveredCount)
	cmpc := float64(s.MissingPrereqCount)
	cprnc := float64(s.SeriesPosition)
	npr := boolToFloat(s.NoPredecessor)
	isLearningPath := boolToFloat(s.IsLearningPath)

	if userAware {
		usefulness := 1 - (float64(s.KnownCoveredCount)+usefulnessEpsilon)/(cc+usefulnessEpsilon)
		return sign(cc)*usefulness/(0.1+cmpc) +
			-1*cprnc +
			(1-sign(cprnc))*(1-npr)*0.5 +
			isLearningPath*learningPathBonus
	}
	return sign(cc)/(0.1+cmpc) - cprnc + isLearningPath*learningPathBonus
}

// scoreLess orders two scores descending with NaN guarded to the bottom
func scoreLess(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
