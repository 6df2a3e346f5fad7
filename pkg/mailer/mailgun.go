package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const mailgunTimeout = 10 * time.Second

// Mailgun delivers rendered notifications through one Mailgun domain.
type Mailgun struct {
	client *mg.MailgunImpl
	sender string
}

var _ Sender = (*Mailgun)(nil)

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{client: mg.NewMailgun(domain, apiKey), sender: sender}
}

// Send posts one message. The HTML part is attached only when non-empty.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	_ = msg.AddTag("candidate-notification")

	c, cancel := context.WithTimeout(ctx, mailgunTimeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun: send to %s: %w", to, err)
	}
	return nil
}
