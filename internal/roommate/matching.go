// internal/roommate/matching.go
// Additive compatibility model: location + budget + age + interests + lifestyle + jitter.

package roommate

import (
	"errors"
	"math/rand"
)

const (
	interestsWeight = 25.0
	lifestyleWeight = 20.0
	maxJitter       = 5.0
)

// ErrMalformedProfile is returned when a profile cannot be scored at all.
var ErrMalformedProfile = errors.New("malformed profile")

// JitterFunc returns the random term added to every score, expected in [0,5).
type JitterFunc func() float64

// DefaultJitter draws uniformly from [0,5).
func DefaultJitter() float64 {
	return rand.Float64() * maxJitter
}

// MatchingEngine scores a candidate profile against a user profile.
type MatchingEngine interface {
	CalculateCompatibility(user, candidate *Profile) (float64, *CompatibilityFactors, error)
}

type matchingEngine struct {
	jitter JitterFunc
}

// NewMatchingEngine returns an engine drawing jitter from fn, or from
// DefaultJitter when fn is nil.
func NewMatchingEngine(fn JitterFunc) MatchingEngine {
	if fn == nil {
		fn = DefaultJitter
	}
	return &matchingEngine{jitter: fn}
}

func (m *matchingEngine) CalculateCompatibility(user, candidate *Profile) (float64, *CompatibilityFactors, error) {
	if user == nil || candidate == nil {
		return 0, nil, ErrMalformedProfile
	}

	factors := &CompatibilityFactors{
		Location:  float64(ScoreLocation(user.Location, candidate.Location)),
		Budget:    budgetScore(user.Budget, candidate.Budget),
		Age:       ageScore(user.Age, candidate.Age),
		Interests: overlapScore(user.Interests, candidate.Interests, interestsWeight),
		Lifestyle: overlapScore(user.LifestylePreferences, candidate.LifestylePreferences, lifestyleWeight),
		Jitter:    m.jitter(),
	}

	return factors.Total(), factors, nil
}

func budgetScore(a, b int) float64 {
	switch diff := absInt(a - b); {
	case diff <= 100:
		return 30
	case diff <= 200:
		return 20
	case diff <= 300:
		return 10
	default:
		return 0
	}
}

func ageScore(a, b int) float64 {
	switch diff := absInt(a - b); {
	case diff <= 2:
		return 20
	case diff <= 5:
		return 15
	case diff <= 10:
		return 10
	default:
		return 0
	}
}

// overlapScore is |A∩B| / max(|A|,|B|) scaled by weight, using set semantics.
func overlapScore(a, b Tags, weight float64) float64 {
	setA := a.Set()
	setB := b.Set()
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	common := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			common++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(common) / float64(larger) * weight
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
