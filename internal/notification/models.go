// internal/notification/models.go

package notification

// EmailNotification is a single outgoing email.
type EmailNotification struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}
