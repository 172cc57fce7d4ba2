// Package delivery sends a stored result to its owner as a rendered report.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/ashureev/assessment-relay/internal/mailer"
	"github.com/ashureev/assessment-relay/internal/report"
	"github.com/google/uuid"
)

// ResultFetcher looks up a live result by email.
type ResultFetcher interface {
	FetchResult(ctx context.Context, email string) (*domain.StoredResult, error)
}

// Config holds the envelope fields of outgoing reports.
type Config struct {
	From    string
	Subject string
}

// Receipt describes a sent report.
type Receipt struct {
	DeliveryID string `json:"delivery_id"`
	MessageID  string `json:"message_id"`
	Email      string `json:"email"`
	Recipient  string `json:"recipient"`
}

// Dispatcher renders a stored result and mails it. It does not retry.
type Dispatcher struct {
	results ResultFetcher
	sender  mailer.Sender
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(results ResultFetcher, sender mailer.Sender, cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{results: results, sender: sender, cfg: cfg, now: time.Now, logger: logger}
}

// Deliver emails the report for email. It returns domain.ErrNotFound when no
// live result exists.
func (d *Dispatcher) Deliver(ctx context.Context, email string) (*Receipt, error) {
	deliveryID := uuid.NewString()
	log := d.logger.With("delivery_id", deliveryID, "email", email)

	result, err := d.results.FetchResult(ctx, email)
	if err != nil {
		log.Warn("No result to deliver", "error", err)
		return nil, err
	}

	msg, err := d.compose(result)
	if err != nil {
		return nil, err
	}

	log.Info("Sending report")
	messageID, err := d.sender.Send(ctx, msg)
	if err != nil {
		log.Error("Failed to send report", "error", err)
		return nil, fmt.Errorf("send report: %w", err)
	}
	log.Info("Report sent", "message_id", messageID)

	return &Receipt{
		DeliveryID: deliveryID,
		MessageID:  messageID,
		Email:      result.Email,
		Recipient:  result.GuardianName,
	}, nil
}

func (d *Dispatcher) compose(result *domain.StoredResult) (mailer.Message, error) {
	rep := report.New(result, d.now())

	body, err := report.RenderEmail(rep)
	if err != nil {
		return mailer.Message{}, err
	}
	doc, err := report.RenderHTML(rep)
	if err != nil {
		return mailer.Message{}, err
	}
	pdf, err := report.RenderPDF(rep)
	if err != nil {
		return mailer.Message{}, err
	}

	return mailer.Message{
		From:    d.cfg.From,
		To:      result.Email,
		Subject: d.cfg.Subject,
		HTML:    string(body),
		Attachments: []mailer.Attachment{
			{Filename: report.AttachmentName(result.ChildName, "pdf"), Content: pdf, ContentType: "application/pdf"},
			{Filename: report.AttachmentName(result.ChildName, "html"), Content: doc, ContentType: "text/html"},
		},
	}, nil
}
