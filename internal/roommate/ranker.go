// internal/roommate/ranker.go

package roommate

import (
	"errors"
	"log"
	"sort"
)

// ErrNoCandidates means every other profile has already been swiped on.
// It is a normal outcome, not a failure.
var ErrNoCandidates = errors.New("no more candidates")

// RankCandidates scores every eligible candidate against user and returns them
// best first. Candidates equal on score are ordered by user id.
func RankCandidates(engine MatchingEngine, user *Profile, candidates []*Profile, swiped map[string]struct{}) []*ScoredCandidate {
	if user == nil {
		return nil
	}

	scored := make([]*ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.UserID == "" || c.UserID == user.UserID {
			continue
		}
		if _, seen := swiped[c.UserID]; seen {
			continue
		}

		score, factors, err := engine.CalculateCompatibility(user, c)
		if err != nil {
			log.Printf("roommate: skipping candidate %s: %v", c.UserID, err)
			continue
		}
		scored = append(scored, &ScoredCandidate{Profile: c, Score: score, Factors: factors})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Profile.UserID < scored[j].Profile.UserID
	})

	return scored
}

// NextCandidate returns the single best unswiped candidate for user, or
// ErrNoCandidates when nothing is left.
func NextCandidate(engine MatchingEngine, user *Profile, candidates []*Profile, swiped map[string]struct{}) (*ScoredCandidate, error) {
	if user == nil {
		return nil, ErrProfileRequired
	}
	ranked := RankCandidates(engine, user, candidates, swiped)
	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}
	return ranked[0], nil
}
