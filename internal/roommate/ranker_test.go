package roommate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEngine struct {
	failFor string
	inner   MatchingEngine
}

func (f *failingEngine) CalculateCompatibility(user, candidate *Profile) (float64, *CompatibilityFactors, error) {
	if candidate.UserID == f.failFor {
		return 0, nil, errors.New("boom")
	}
	return f.inner.CalculateCompatibility(user, candidate)
}

func rankerFixture() (*Profile, []*Profile) {
	user := &Profile{UserID: "me", Location: "Denver, CO", Budget: 1000, Age: 28, Interests: Tags{"climbing"}}
	candidates := []*Profile{
		{UserID: "far", Location: "Miami", Budget: 3000, Age: 50},
		{UserID: "close", Location: "Denver, CO", Budget: 1000, Age: 28, Interests: Tags{"climbing"}},
		{UserID: "mid", Location: "Denver, Colorado", Budget: 1150, Age: 31},
	}
	return user, candidates
}

func TestRankCandidates_Order(t *testing.T) {
	user, candidates := rankerFixture()
	ranked := RankCandidates(NewMatchingEngine(fixedJitter(0)), user, candidates, nil)

	require.Len(t, ranked, 3)
	assert.Equal(t, "close", ranked[0].Profile.UserID)
	assert.Equal(t, "mid", ranked[1].Profile.UserID)
	assert.Equal(t, "far", ranked[2].Profile.UserID)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}

func TestRankCandidates_TieBreakByUserID(t *testing.T) {
	user := &Profile{UserID: "me", Location: "Oslo", Budget: 800, Age: 25}
	candidates := []*Profile{
		{UserID: "zed", Location: "Oslo", Budget: 800, Age: 25},
		{UserID: "amy", Location: "Oslo", Budget: 800, Age: 25},
		{UserID: "kim", Location: "Oslo", Budget: 800, Age: 25},
	}
	ranked := RankCandidates(NewMatchingEngine(fixedJitter(1)), user, candidates, nil)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"amy", "kim", "zed"}, []string{
		ranked[0].Profile.UserID, ranked[1].Profile.UserID, ranked[2].Profile.UserID,
	})
}

func TestRankCandidates_SkipsSwipedSelfAndMalformed(t *testing.T) {
	user, candidates := rankerFixture()
	candidates = append(candidates, nil, &Profile{}, &Profile{UserID: "me"})

	swiped := map[string]struct{}{"close": {}}
	ranked := RankCandidates(NewMatchingEngine(fixedJitter(0)), user, candidates, swiped)

	require.Len(t, ranked, 2)
	assert.Equal(t, "mid", ranked[0].Profile.UserID)
	assert.Equal(t, "far", ranked[1].Profile.UserID)
}

func TestRankCandidates_ScoringErrorSkipsCandidate(t *testing.T) {
	user, candidates := rankerFixture()
	engine := &failingEngine{failFor: "close", inner: NewMatchingEngine(fixedJitter(0))}

	ranked := RankCandidates(engine, user, candidates, nil)
	require.Len(t, ranked, 2)
	for _, c := range ranked {
		assert.NotEqual(t, "close", c.Profile.UserID)
	}
}

func TestNextCandidate(t *testing.T) {
	user, candidates := rankerFixture()
	engine := NewMatchingEngine(fixedJitter(0))

	best, err := NextCandidate(engine, user, candidates, nil)
	require.NoError(t, err)
	assert.Equal(t, "close", best.Profile.UserID)

	all := map[string]struct{}{"far": {}, "close": {}, "mid": {}}
	_, err = NextCandidate(engine, user, candidates, all)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = NextCandidate(engine, user, nil, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = NextCandidate(engine, nil, candidates, nil)
	assert.ErrorIs(t, err, ErrProfileRequired)
}
