package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job body sent to QueueNotifications.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(to, subject, body, attachmentPath string) error
}

// EmailWorker delivers low-stock alerts and daily summaries.
type EmailWorker struct {
	mailer MailSender
}

func NewEmailWorker(mailer MailSender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %v: %w", err, ErrPermanent)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	if err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, ""); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
