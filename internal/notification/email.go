// internal/notification/email.go

package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// EmailService delivers one email.
type EmailService interface {
	SendEmail(ctx context.Context, notification *EmailNotification) error
}

// SendGridEmailService implements email notifications using SendGrid
type SendGridEmailService struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridEmailService creates a new SendGrid email service
func NewSendGridEmailService(apiKey, from, fromName string) (*SendGridEmailService, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("incomplete SendGrid configuration")
	}
	return &SendGridEmailService{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}, nil
}

// SendEmail sends a single email via SendGrid
func (s *SendGridEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(notification.ToName, notification.To)
	message := mail.NewSingleEmail(from, notification.Subject, to, notification.Body, notification.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}
	return nil
}

// SMTPEmailService implements email notifications using SMTP
type SMTPEmailService struct {
	from     string
	fromName string
	dialer   *gomail.Dialer
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(host string, port int, username, password, from, fromName string) (*SMTPEmailService, error) {
	if host == "" || from == "" {
		return nil, fmt.Errorf("incomplete SMTP configuration")
	}

	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{ServerName: host}

	return &SMTPEmailService{from: from, fromName: fromName, dialer: dialer}, nil
}

// SendEmail sends a single email
func (s *SMTPEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	m.SetHeader("To", notification.To)
	m.SetHeader("Subject", notification.Subject)

	if notification.HTML != "" {
		m.SetBody("text/html", notification.HTML)
		if notification.Body != "" {
			m.AddAlternative("text/plain", notification.Body)
		}
	} else {
		m.SetBody("text/plain", notification.Body)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}

// MockEmailService records emails instead of sending them
type MockEmailService struct {
	mu         sync.Mutex
	SentEmails []*EmailNotification
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (m *MockEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	m.mu.Lock()
	m.SentEmails = append(m.SentEmails, notification)
	m.mu.Unlock()
	log.Printf("Mock: Sending email to %s: %s", notification.To, notification.Subject)
	return nil
}

// Sent returns a snapshot of the recorded emails.
func (m *MockEmailService) Sent() []*EmailNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*EmailNotification(nil), m.SentEmails...)
}
