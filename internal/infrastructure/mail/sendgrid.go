// Package mail sends transactional e-mail and manages newsletter contacts
// through SendGrid.
package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no SendGrid API key is set
var ErrNotConfigured = shared.NewDomainError(shared.ErrUnavailable.Code, "E-mail provider is not configured")

// Message is a plain e-mail
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends e-mail
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ContactList subscribes addresses to the newsletter
type ContactList interface {
	AddContact(ctx context.Context, email string) error
}

// SendGridClient implements Mailer and ContactList on the SendGrid v3 API
type SendGridClient struct {
	apiKey    string
	host      string
	fromEmail string
	fromName  string
	listID    string
	logger    *zap.Logger
}

// NewSendGridClient creates a client. An empty API key is accepted; calls
// then fail with ErrNotConfigured.
func NewSendGridClient(cfg config.SendGridConfig, logger *zap.Logger) *SendGridClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendGridClient{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		host:      cfg.BaseURL,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		listID:    cfg.ListID,
		logger:    logger,
	}
}

// Configured reports whether an API key is set
func (c *SendGridClient) Configured() bool {
	return c.apiKey != ""
}

// Send sends a single e-mail through /v3/mail/send
func (c *SendGridClient) Send(ctx context.Context, msg Message) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if msg.To == "" {
		return fmt.Errorf("to address is empty")
	}

	html := msg.HTML
	if html == "" {
		html = fmt.Sprintf("<pre>%s</pre>", msg.Text)
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(c.fromName, c.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		html,
	)

	request := sendgrid.GetRequest(c.apiKey, "/v3/mail/send", c.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(message)

	if err := c.do(ctx, request); err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	c.logger.Info("Mail sent", zap.String("subject", msg.Subject))
	return nil
}

type contactsRequest struct {
	ListIDs  []string  `json:"list_ids,omitempty"`
	Contacts []contact `json:"contacts"`
}

type contact struct {
	Email string `json:"email"`
}

// AddContact upserts a marketing contact (PUT /v3/marketing/contacts)
func (c *SendGridClient) AddContact(ctx context.Context, email string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body := contactsRequest{Contacts: []contact{{Email: email}}}
	if c.listID != "" {
		body.ListIDs = []string{c.listID}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	request := sendgrid.GetRequest(c.apiKey, "/v3/marketing/contacts", c.host)
	request.Method = rest.Put
	request.Body = data

	if err := c.do(ctx, request); err != nil {
		return fmt.Errorf("sendgrid add contact: %w", err)
	}
	return nil
}

func (c *SendGridClient) do(ctx context.Context, request rest.Request) error {
	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		c.logger.Warn("SendGrid request failed",
			zap.String("method", string(request.Method)),
			zap.String("endpoint", request.BaseURL),
			zap.Int("status", response.StatusCode),
			zap.String("body", response.Body))
		return fmt.Errorf("status=%d body=%s", response.StatusCode, response.Body)
	}
	return nil
}
