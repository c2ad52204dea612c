// internal/roommate/models.go
// Core entities shared by the scorer, the swipe state machine and the store adapters.

package roommate

import (
	"strings"
	"time"
)

// SwipeAction is the decision a user records about a candidate.
type SwipeAction string

const (
	ActionLike SwipeAction = "like"
	ActionPass SwipeAction = "pass"
)

// Valid reports whether the action is one of the two known decisions.
func (a SwipeAction) Valid() bool {
	return a == ActionLike || a == ActionPass
}

// ParseSwipeAction accepts "like"/"pass" in any case.
func ParseSwipeAction(s string) (SwipeAction, error) {
	a := SwipeAction(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", ErrInvalidAction
	}
	return a, nil
}

// Profile is the matchable part of a user. One profile per user.
type Profile struct {
	UserID               string    `json:"user_id" db:"user_id" dynamodbav:"user_id"`
	Name                 string    `json:"name" db:"name" dynamodbav:"name"`
	Age                  int       `json:"age" db:"age" dynamodbav:"age"`
	Budget               int       `json:"budget" db:"budget" dynamodbav:"budget"`
	Location             string    `json:"location" db:"location" dynamodbav:"location"`
	Bio                  string    `json:"bio" db:"bio" dynamodbav:"bio"`
	Interests            Tags      `json:"interests" db:"interests" dynamodbav:"interests"`
	LifestylePreferences Tags      `json:"lifestyle_preferences" db:"lifestyle_preferences" dynamodbav:"lifestyle_preferences"`
	CreatedAt            time.Time `json:"created_at" db:"created_at" dynamodbav:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at" dynamodbav:"updated_at"`
}

// Swipe is an append-only record of one user's decision about another.
type Swipe struct {
	SwiperID  string      `json:"swiper_id" db:"swiper_id" dynamodbav:"swiper_id"`
	SwipedID  string      `json:"swiped_id" db:"swiped_id" dynamodbav:"swiped_id"`
	Action    SwipeAction `json:"action" db:"action" dynamodbav:"action"`
	CreatedAt time.Time   `json:"created_at" db:"created_at" dynamodbav:"created_at"`
}

// Match is stored once per unordered pair with User1ID < User2ID.
type Match struct {
	ID        string    `json:"id" db:"id" dynamodbav:"id"`
	User1ID   string    `json:"user1_id" db:"user1_id" dynamodbav:"user1_id"`
	User2ID   string    `json:"user2_id" db:"user2_id" dynamodbav:"user2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at" dynamodbav:"created_at"`
}

// Other returns the id of the participant that is not userID.
func (m *Match) Other(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// MatchParty carries the presentation fields of one side of a match.
type MatchParty struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

// MatchView is a match enriched at read time with both sides' profile details.
type MatchView struct {
	ID        string     `json:"id"`
	User1     MatchParty `json:"user1"`
	User2     MatchParty `json:"user2"`
	CreatedAt time.Time  `json:"created_at"`
}

// CompatibilityFactors is the per-factor breakdown of a compatibility score.
type CompatibilityFactors struct {
	Location  float64 `json:"location"`
	Budget    float64 `json:"budget"`
	Age       float64 `json:"age"`
	Interests float64 `json:"interests"`
	Lifestyle float64 `json:"lifestyle"`
	Jitter    float64 `json:"jitter"`
}

// Base is the sum of the deterministic factors.
func (f *CompatibilityFactors) Base() float64 {
	return f.Location + f.Budget + f.Age + f.Interests + f.Lifestyle
}

// Total is the base score plus jitter.
func (f *CompatibilityFactors) Total() float64 {
	return f.Base() + f.Jitter
}

// ScoredCandidate pairs a candidate profile with its score against the requesting user.
type ScoredCandidate struct {
	Profile *Profile              `json:"profile"`
	Score   float64               `json:"score"`
	Factors *CompatibilityFactors `json:"factors"`
}

// SwipeResult reports what RecordSwipe did.
type SwipeResult struct {
	Recorded bool   `json:"recorded"`
	Matched  bool   `json:"matched"`
	Match    *Match `json:"match,omitempty"`
}

// canonicalPair orders two ids so that the smaller one comes first.
func canonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// pairKey identifies an unordered pair.
func pairKey(a, b string) string {
	first, second := canonicalPair(a, b)
	return first + ":" + second
}
