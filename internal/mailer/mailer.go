// Package mailer sends rendered reports by email.
package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is one outbound email.
type Message struct {
	From        string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogSender logs messages instead of sending them. Used when no provider is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs msg and returns a locally generated id.
func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := "local-" + uuid.NewString()
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	s.logger.Info("Email not sent, no provider configured",
		"message_id", id,
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", names)
	return id, nil
}
