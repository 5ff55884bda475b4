package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer delivers one rendered message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTPConfig holds relay settings. Credentials come from the environment only.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	FromName  string
	TLSPolicy string // mandatory, opportunistic, none or ssl
}

// SMTPMailer sends through an SMTP relay using go-mail.
type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPMailer builds a client for cfg. No connection is made until Send.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}

	switch strings.ToLower(cfg.TLSPolicy) {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case "opportunistic":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{client: client, from: from, fromName: cfg.FromName}, nil
}

// Send dials the relay and delivers m. ctx bounds the whole exchange.
func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.from, err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs m and always succeeds.
func (l *LogMailer) Send(_ context.Context, m Message) error {
	l.log.Info("email (not sent, smtp disabled)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("event", string(m.Event)),
		zap.String("booking_id", m.BookingID),
	)
	return nil
}
