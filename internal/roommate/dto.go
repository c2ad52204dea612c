// internal/roommate/dto.go

package roommate

import (
	"strings"
)

// ProfileRequest is the body of profile setup and update.
type ProfileRequest struct {
	Name                 string   `json:"name" validate:"required,notblank,max=100"`
	Age                  int      `json:"age" validate:"min=18,max=100"`
	Budget               int      `json:"budget" validate:"min=300,max=5000"`
	Location             string   `json:"location" validate:"required,notblank,max=200"`
	Bio                  string   `json:"bio" validate:"max=1000"`
	Interests            []string `json:"interests" validate:"max=10,dive,notblank,max=50"`
	LifestylePreferences []string `json:"lifestyle_preferences" validate:"max=10,dive,notblank,max=50"`
}

// SwipeRequest is the body of POST /swipes.
type SwipeRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required"`
	Action       string `json:"action" validate:"required"`
}

// NextCandidateResponse is returned by GET /candidates/next. Candidate is nil
// and NoMoreMatches is true once everyone has been swiped on.
type NextCandidateResponse struct {
	Candidate     *ScoredCandidate `json:"candidate,omitempty"`
	NoMoreMatches bool             `json:"no_more_matches"`
}

// apply copies the request onto p, trimming text and dropping empty tags.
func (req *ProfileRequest) apply(p *Profile) {
	p.Name = strings.TrimSpace(req.Name)
	p.Age = req.Age
	p.Budget = req.Budget
	p.Location = strings.TrimSpace(req.Location)
	p.Bio = strings.TrimSpace(req.Bio)
	p.Interests = cleanTags(req.Interests)
	p.LifestylePreferences = cleanTags(req.LifestylePreferences)
}

func cleanTags(in []string) Tags {
	out := make(Tags, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
