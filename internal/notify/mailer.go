// Package notify dispatches rendered tickets to customers over SMTP.
// Delivery is best-effort and bounded: a booking is never rolled back
// because the mail did not go out.
package notify

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"ticketgenie/internal/config"
	"ticketgenie/internal/models"
)

const (
	subject = "Your Movie Ticket Confirmation"
	body    = "Thank you for your booking! Please find your ticket attached."
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.From,
	}
}

// Send mails the PDF document as an attachment. The context deadline caps
// how long the SMTP dial and transfer may take.
func (m *Mailer) Send(ctx context.Context, recipient string, document []byte, filename string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(document)
		return err
	}))

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: send to %s: %v", models.ErrDelivery, recipient, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: send to %s: %v", models.ErrDelivery, recipient, ctx.Err())
	}
}
