package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lynk-ai/lynk-backend/pkg/config"
	"github.com/wneessen/go-mail"
)

// Envelope is a fully rendered message ready for submission.
type Envelope struct {
	From    string
	To      string
	CC      string
	Subject string
	Text    string
	HTML    string
}

// Sender submits a rendered message to a mail transport.
type Sender interface {
	Send(ctx context.Context, env Envelope) error
}

// SMTPSender submits messages over STARTTLS, authenticating with PLAIN when credentials are set.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
}

func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("smtp host is required")
	}
	port := cfg.Port
	if port <= 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  cfg.Timeout,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, env Envelope) error {
	msg, err := buildMessage(env)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.timeout))
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", env.To, err)
	}
	return nil
}

func buildMessage(env Envelope) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(env.From); err != nil {
		return nil, fmt.Errorf("set from %q: %w", env.From, err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("set to %q: %w", env.To, err)
	}
	if cc := strings.TrimSpace(env.CC); cc != "" {
		if err := msg.Cc(cc); err != nil {
			return nil, fmt.Errorf("set cc %q: %w", cc, err)
		}
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(mail.TypeTextPlain, env.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, env.HTML)
	return msg, nil
}
