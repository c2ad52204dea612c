// internal/seed/seed.go
// Sample roommates for local runs and demos.

package seed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/roommate"
)

// DefaultPassword is the password of every sample account.
const DefaultPassword = "password123"

// Sample is one sample account with its profile.
type Sample struct {
	Username string
	Email    string
	Profile  roommate.ProfileRequest
}

// Samples returns the built-in sample roommates.
func Samples() []Sample {
	return []Sample{
		{"alex_smith", "alex@example.com", roommate.ProfileRequest{
			Name: "Alex Smith", Age: 22, Budget: 600, Location: "Downtown",
			Bio:                  "Love music, gaming, and cooking!",
			Interests:            []string{"Music", "Gaming", "Cooking", "Movies"},
			LifestylePreferences: []string{"Night Owl", "Very Social", "Moderately Clean", "Love Pets"},
		}},
		{"maya_johnson", "maya@example.com", roommate.ProfileRequest{
			Name: "Maya Johnson", Age: 25, Budget: 750, Location: "Midtown",
			Bio:                  "Fitness enthusiast and nature lover.",
			Interests:            []string{"Fitness", "Nature", "Reading", "Photography"},
			LifestylePreferences: []string{"Early Bird", "Quiet", "Very Clean", "Neutral"},
		}},
		{"sam_wilson", "sam@example.com", roommate.ProfileRequest{
			Name: "Sam Wilson", Age: 23, Budget: 650, Location: "Uptown",
			Bio:                  "Artist and photographer.",
			Interests:            []string{"Art", "Photography", "Travel", "Cooking"},
			LifestylePreferences: []string{"Flexible", "Moderately Social", "Moderately Clean", "Love Pets"},
		}},
		{"jessica_brown", "jessica@example.com", roommate.ProfileRequest{
			Name: "Jessica Brown", Age: 24, Budget: 700, Location: "Downtown",
			Bio:                  "Tech professional who loves coding.",
			Interests:            []string{"Technology", "Gaming", "Movies", "Music"},
			LifestylePreferences: []string{"Night Owl", "Moderately Social", "Moderately Clean", "Neutral"},
		}},
		{"mike_davis", "mike@example.com", roommate.ProfileRequest{
			Name: "Mike Davis", Age: 26, Budget: 800, Location: "Midtown",
			Bio:                  "Sports fanatic and outdoor enthusiast.",
			Interests:            []string{"Sports", "Fitness", "Nature", "Travel"},
			LifestylePreferences: []string{"Early Bird", "Very Social", "Very Clean", "No Pets"},
		}},
		{"sarah_miller", "sarah@example.com", roommate.ProfileRequest{
			Name: "Sarah Miller", Age: 21, Budget: 550, Location: "Uptown",
			Bio:                  "Student studying art history.",
			Interests:            []string{"Art", "Reading", "Movies", "Nature"},
			LifestylePreferences: []string{"Flexible", "Quiet", "Very Clean", "Neutral"},
		}},
	}
}

// Seeder creates sample accounts through the regular services.
type Seeder struct {
	auth      auth.Service
	users     auth.UserStore
	roommates roommate.Service
}

func NewSeeder(authService auth.Service, users auth.UserStore, roommates roommate.Service) *Seeder {
	return &Seeder{auth: authService, users: users, roommates: roommates}
}

// Load creates any missing sample user and profile. Running it again is a
// no-op. It returns how many profiles it created.
func (s *Seeder) Load(ctx context.Context, samples []Sample) (int, error) {
	created := 0
	for _, sample := range samples {
		userID, err := s.ensureUser(ctx, sample)
		if err != nil {
			return created, err
		}

		req := sample.Profile
		if _, err := s.roommates.SetupProfile(ctx, userID, &req); err != nil {
			if errors.Is(err, roommate.ErrProfileExists) {
				continue
			}
			return created, fmt.Errorf("seed profile %s: %w", sample.Username, err)
		}
		created++
	}

	log.Printf("seed: %d sample profiles created", created)
	return created, nil
}

func (s *Seeder) ensureUser(ctx context.Context, sample Sample) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, sample.Username)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return "", fmt.Errorf("seed user %s: %w", sample.Username, err)
	}

	resp, err := s.auth.Signup(ctx, &auth.SignupRequest{
		Username: sample.Username,
		Email:    sample.Email,
		Password: DefaultPassword,
	})
	if err != nil {
		return "", fmt.Errorf("seed user %s: %w", sample.Username, err)
	}
	return resp.User.ID, nil
}
