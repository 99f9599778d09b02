// Package mail sends the notification emails the review workflow produces.
// Two backends: sendgrid for deployments, console for development and tests.
package mail

import (
	"github.com/websense/RPL/config"
)

// Message is one plain-text notification.
type Message struct {
	Subject string
	To      []string
	Body    string
}

// Service is any backend that can deliver messages. Delivery is best-effort;
// a failed notification never fails the user action that triggered it.
type Service interface {
	Send(msg Message) error
}

// NewService picks the backend configured via MAIL_BACKEND.
func NewService() Service {
	switch config.MailBackend {
	case "sendgrid":
		return NewSendgridService(config.SendgridAPIKey, config.MailFrom)
	default:
		return NewConsoleService(config.MailFrom)
	}
}
