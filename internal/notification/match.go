// internal/notification/match.go
// Emails both users when a match is created.

package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/roommate"
)

// UserLookup resolves account details for a user id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

// ProfileLookup resolves the display profile for a user id.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*roommate.Profile, error)
}

// MatchEmailer implements roommate.MatchNotifier by emailing both sides.
type MatchEmailer struct {
	email    EmailService
	users    UserLookup
	profiles ProfileLookup
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewMatchEmailer(email EmailService, users UserLookup, profiles ProfileLookup) *MatchEmailer {
	return &MatchEmailer{
		email:    email,
		users:    users,
		profiles: profiles,
		timeout:  15 * time.Second,
	}
}

// NotifyMatch sends the emails in the background.
func (e *MatchEmailer) NotifyMatch(ctx context.Context, match *roommate.Match) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		e.send(sendCtx, match.User1ID, match.User2ID)
		e.send(sendCtx, match.User2ID, match.User1ID)
	}()
}

// Wait blocks until every queued email has been attempted.
func (e *MatchEmailer) Wait() {
	e.wg.Wait()
}

func (e *MatchEmailer) send(ctx context.Context, recipientID, otherID string) {
	recipient, err := e.users.GetUserByID(ctx, recipientID)
	if err != nil {
		log.Printf("notification: match email skipped, user %s: %v", recipientID, err)
		return
	}

	data := MatchEmailData{RecipientName: recipient.Username, OtherName: "someone"}
	if p, err := e.profiles.GetProfile(ctx, recipientID); err == nil && p.Name != "" {
		data.RecipientName = p.Name
	}
	if p, err := e.profiles.GetProfile(ctx, otherID); err == nil {
		data.OtherName = p.Name
		data.OtherLocation = p.Location
		data.OtherBio = p.Bio
	}

	html, plain, err := RenderMatchEmail(data)
	if err != nil {
		log.Printf("notification: render match email: %v", err)
		return
	}

	err = e.email.SendEmail(ctx, &EmailNotification{
		To:      recipient.Email,
		ToName:  data.RecipientName,
		Subject: "You have a new roommate match",
		Body:    plain,
		HTML:    html,
	})
	if err != nil {
		log.Printf("notification: match email to %s failed: %v", recipient.Email, err)
	}
}
