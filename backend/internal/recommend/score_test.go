package recommend

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_UserAwareSingleCoveredTopic(t *testing.T) {
	// One covered topic the user does not know, one missing prerequisite,
	// not part of a series: usefulness/(0.1+1) + 0.5 start-of-series credit.
	s := Stats{CoveredCount: 1, KnownCoveredCount: 0, MissingPrereqCount: 1, NoPredecessor: true}
	usefulness := 1 - (0+usefulnessEpsilon)/(1+usefulnessEpsilon)
	expected := usefulness / 1.1
	assert.InDelta(t, expected, Score(s, true, 0.5), 1e-9)
}

func TestScore_KnownTopicsReduceUsefulness(t *testing.T) {
	unknown := Stats{CoveredCount: 3, KnownCoveredCount: 0}
	partlyKnown := Stats{CoveredCount: 3, KnownCoveredCount: 2}
	fullyKnown := Stats{CoveredCount: 3, KnownCoveredCount: 3}

	a := Score(unknown, true, 0.5)
	b := Score(partlyKnown, true, 0.5)
	c := Score(fullyKnown, true, 0.5)
	assert.Greater(t, a, b)
	assert.Greater(t, b, c)
}

func TestScore_MissingPrereqsDragScoreDown(t *testing.T) {
	for _, aware := range []bool{true, false} {
		prev := math.Inf(1)
		for missing := int64(0); missing <= 4; missing++ {
			s := Score(Stats{CoveredCount: 1, MissingPrereqCount: missing}, aware, 0.5)
			assert.Less(t, s, prev, "aware=%v missing=%d", aware, missing)
			prev = s
		}
	}
}

func TestScore_SeriesOrdering(t *testing.T) {
	// Parts of a series must rank start first, regardless of branch
	for _, aware := range []bool{true, false} {
		part1 := Score(Stats{CoveredCount: 1, SeriesPosition: 0, NoPredecessor: false}, aware, 0.5)
		part2 := Score(Stats{CoveredCount: 1, SeriesPosition: 1, NoPredecessor: false}, aware, 0.5)
		part3 := Score(Stats{CoveredCount: 1, SeriesPosition: 2, NoPredecessor: false}, aware, 0.5)
		assert.Greater(t, part1, part2)
		assert.Greater(t, part2, part3)
	}
}

func TestScore_MidSeriesEntryPenalized(t *testing.T) {
	// A standalone resource gets the 0.5 credit; a resource with an unconsumed
	// predecessor chain of length zero but a predecessor in the graph does not.
	standalone := Score(Stats{CoveredCount: 1, SeriesPosition: 0, NoPredecessor: true}, true, 0.5)
	hasPredecessor := Score(Stats{CoveredCount: 1, SeriesPosition: 0, NoPredecessor: false}, true, 0.5)
	assert.InDelta(t, 0.5, hasPredecessor-standalone, 1e-9)
}

func TestScore_LearningPathBonus(t *testing.T) {
	plain := Score(Stats{CoveredCount: 1}, false, 0.5)
	path := Score(Stats{CoveredCount: 1, IsLearningPath: true}, false, 0.5)
	assert.InDelta(t, 0.5, path-plain, 1e-9)

	noBonus := Score(Stats{CoveredCount: 1, IsLearningPath: true}, false, 0)
	assert.InDelta(t, plain, noBonus, 1e-9)
}

func TestScore_SimplifiedBranchIgnoresKnownTopics(t *testing.T) {
	a := Score(Stats{CoveredCount: 2, KnownCoveredCount: 0}, false, 0.5)
	b := Score(Stats{CoveredCount: 2, KnownCoveredCount: 2}, false, 0.5)
	assert.Equal(t, a, b)
}

func TestScore_NoCoverageScoresAtFloor(t *testing.T) {
	// sign(0) zeroes the topology term but the candidate still participates
	s := Score(Stats{CoveredCount: 0, MissingPrereqCount: 5}, false, 0.5)
	assert.Equal(t, 0.0, s)
}

func TestScoreLess_DescendingWithNaNLast(t *testing.T) {
	scores := []float64{0.2, math.NaN(), 1.5, -0.3}
	sort.SliceStable(scores, func(i, j int) bool { return scoreLess(scores[i], scores[j]) })
	assert.Equal(t, 1.5, scores[0])
	assert.Equal(t, 0.2, scores[1])
	assert.Equal(t, -0.3, scores[2])
	assert.True(t, math.IsNaN(scores[3]))
}
