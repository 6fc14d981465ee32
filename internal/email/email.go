package email

import (
	"fmt"
	"log/slog"

	"github.com/inbucket/html2text"
	mail "github.com/wneessen/go-mail"
)

// Config holds the SMTP settings for outgoing notifications.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether a usable SMTP host is configured.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Client sends multipart (HTML + plain text) notification mails.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

// Message represents an outgoing notification.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string // optional, will be auto-generated from HTML if empty
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:    cfg,
		logger: slog.With("component", "email"),
	}
}

// Send delivers a message over SMTP. The plain text alternative is derived
// from the HTML body when not supplied.
func (c *Client) Send(msg *Message) error {
	if msg.Text == "" {
		text, err := htmlToText(msg.HTML)
		if err != nil {
			return fmt.Errorf("failed to convert HTML to text: %w", err)
		}
		msg.Text = text
	}

	m := mail.NewMsg()
	if err := m.From(c.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	opts := []mail.Option{mail.WithPort(c.cfg.Port)}
	if c.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.cfg.Username),
			mail.WithPassword(c.cfg.Password),
		)
	}

	client, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client.DialAndSend(m)
}

// htmlToText converts HTML to plain text
func htmlToText(htmlContent string) (string, error) {
	text, err := html2text.FromString(htmlContent, html2text.Options{
		PrettyTables: true,
		OmitLinks:    false,
	})
	if err != nil {
		slog.Error("failed to convert HTML to text", "error", err)
		return "", err
	}
	return text, nil
}
