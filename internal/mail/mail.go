// Package mail sends transactional email via an external provider.
package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string
	Subject string
	HTML    string
}

// Sender is the interface for sending email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) error
}

// ResendSender sends email via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender with a fixed from address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send sends a single email.
func (s *ResendSender) Send(ctx context.Context, req SendRequest) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	log.Printf("mail sent: id=%s to=%v subject=%q", sent.Id, req.To, req.Subject)
	return nil
}

// NoopSender logs instead of sending, for setups without an API key.
type NoopSender struct{}

// Send logs the message and drops it.
func (NoopSender) Send(_ context.Context, req SendRequest) error {
	log.Printf("mail (noop): to=%v subject=%q", req.To, req.Subject)
	return nil
}

// ResetEmail builds the password-reset message body.
func ResetEmail(portalURL, token string) (subject, html string) {
	link := portalURL + "/reset?token=" + token
	subject = "Reset your portal password"
	html = "<p>A password reset was requested for your account.</p>" +
		"<p><a href=\"" + link + "\">Choose a new password</a></p>" +
		"<p>If you did not request this, you can ignore this email. The link expires in one hour.</p>"
	return subject, html
}
