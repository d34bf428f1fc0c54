// Package email delivers transactional mail. The platform treats
// delivery as best-effort: callers log failures and carry on, so a
// Sender must never be load-bearing for the primary write path.
package email

import "log"

// Sender is any service that can send a single HTML email.
type Sender interface {
	Send(toAddress, subject, htmlBody string) error
}

// ConsoleSender writes messages to the log instead of sending them.
// Used for local development and tests.
type ConsoleSender struct{}

var _ Sender = (*ConsoleSender)(nil)

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (s *ConsoleSender) Send(toAddress, subject, htmlBody string) error {
	log.Printf("email to %s: %s\n%s", toAddress, subject, htmlBody)
	return nil
}
