// internal/assistant/service.go
// Housing advice chat. Generated replies come from a Completer; any failure
// falls back to canned keyword replies so the user always gets an answer.

package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

const housingContext = `You are RoomieBot, an assistant for people sharing a home. Give short, practical, friendly advice about cleaning schedules and chores, resolving roommate conflicts, house rules, splitting expenses, guests, noise and quiet hours, study-friendly spaces, pets, hosting and communication.

The user's question: `

// Reply is the answer to one chat message.
type Reply struct {
	Response string `json:"response"`
	Fallback bool   `json:"fallback"`
}

type Service struct {
	completer Completer
	timeout   time.Duration
}

// NewService returns a Service. A nil completer means fallback replies only.
func NewService(completer Completer, timeout time.Duration) *Service {
	return &Service{completer: completer, timeout: timeout}
}

func (s *Service) Reply(ctx context.Context, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if s.completer == nil {
		return &Reply{Response: FallbackReply(message), Fallback: true}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.completer.Complete(ctx, housingContext+message)
	if err != nil {
		log.Printf("assistant: completion failed, using fallback: %v", err)
		return &Reply{Response: FallbackReply(message), Fallback: true}, nil
	}
	return &Reply{Response: text}, nil
}
