// Package mail relays contact-form messages to the site owner.
package mail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Message is a contact-form submission.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Body       string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewMessage stamps a submission with a fresh ID and the current time.
func NewMessage(name, email, subject, body string) Message {
	return Message{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Subject:    subject,
		Body:       body,
		ReceivedAt: time.Now().UTC(),
	}
}

// Relay delivers messages.
type Relay interface {
	Send(ctx context.Context, msg Message) error
}

// LogRelay writes messages to the log instead of delivering them.
type LogRelay struct {
	logger hclog.Logger
}

// NewLogRelay creates a LogRelay.
func NewLogRelay(logger hclog.Logger) *LogRelay {
	return &LogRelay{logger: logger.Named("contact")}
}

// Send implements Relay.
func (r *LogRelay) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.logger.Info("contact message received",
		"id", msg.ID,
		"name", msg.Name,
		"email", msg.Email,
		"subject", msg.Subject,
		"message", msg.Body,
		"received_at", msg.ReceivedAt.Format(time.RFC3339),
	)
	return nil
}
