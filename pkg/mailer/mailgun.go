package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

var (
	ErrNotConfigured    = errors.New("mailgun: domain, api key and sender are required")
	ErrInvalidRecipient = errors.New("mailgun: invalid recipient address")
	ErrEmptyMessage     = errors.New("mailgun: subject and body are required")
)

var addrCheck = validator.New()

// Mailgun delivers rendered emails through the Mailgun HTTP API.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
	// APIBase overrides the Mailgun endpoint, e.g. the EU region.
	APIBase string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

func (m *Mailgun) check(to, subject, text, html string) error {
	if m.Domain == "" || m.APIKey == "" || strings.TrimSpace(m.Sender) == "" {
		return ErrNotConfigured
	}
	if addrCheck.Var(to, "required,email") != nil {
		return ErrInvalidRecipient
	}
	if subject == "" || (text == "" && html == "") {
		return ErrEmptyMessage
	}
	return nil
}

// Send delivers one message. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if err := m.check(to, subject, text, html); err != nil {
		return err
	}

	client := mg.NewMailgun(m.Domain, m.APIKey)
	if m.APIBase != "" {
		client.SetAPIBase(m.APIBase)
	}
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if _, _, err := client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send %q: %w", subject, err)
	}
	return nil
}
