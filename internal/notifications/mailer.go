package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"usertemplate/backend/pkg/config"

	"go.uber.org/zap"
)

// asyncSendTimeout bounds a background delivery once the caller has moved on.
const asyncSendTimeout = 30 * time.Second

// Mailer sends a single message. Failures are logged and reported as false.
type Mailer interface {
	SendMail(ctx context.Context, subject, body, to string, opts ...MailOption) bool
	SendMailAsync(ctx context.Context, subject, body, to string, opts ...MailOption) <-chan bool
}

// Message is a fully resolved email handed to a Transport.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	HTML    bool
}

// MailOption tweaks a Message before delivery.
type MailOption func(*Message)

// From overrides the configured sender address.
func From(addr string) MailOption {
	return func(m *Message) {
		if addr != "" {
			m.From = addr
		}
	}
}

// AsText sends the body as text/plain instead of HTML.
func AsText() MailOption {
	return func(m *Message) { m.HTML = false }
}

// Transport delivers a Message through one provider.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// TransportMailer adapts a Transport to Mailer.
type TransportMailer struct {
	transport Transport
	from      string
	logger    *zap.Logger
}

func NewMailer(t Transport, from string, logger *zap.Logger) *TransportMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransportMailer{
		transport: t,
		from:      from,
		logger:    logger.Named("mailer").With(zap.String("transport", t.Name())),
	}
}

func (m *TransportMailer) SendMail(ctx context.Context, subject, body, to string, opts ...MailOption) bool {
	msg := Message{From: m.from, To: to, Subject: subject, Body: body, HTML: true}
	for _, opt := range opts {
		opt(&msg)
	}
	if err := validate(msg); err != nil {
		m.logger.Error("Refusing to send email", zap.Error(err), zap.String("recipient", to))
		return false
	}

	if err := m.transport.Deliver(ctx, msg); err != nil {
		m.logger.Error("Failed to send email", zap.Error(err), zap.String("recipient", to), zap.String("subject", subject))
		return false
	}
	m.logger.Info("Successfully sent email", zap.String("recipient", to), zap.String("subject", subject))
	return true
}

// SendMailAsync delivers in the background. The returned channel yields the
// result once and is then closed. Cancelling ctx does not abort the delivery.
func (m *TransportMailer) SendMailAsync(ctx context.Context, subject, body, to string, opts ...MailOption) <-chan bool {
	done := make(chan bool, 1)
	go func() {
		defer close(done)
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncSendTimeout)
		defer cancel()
		done <- m.SendMail(sendCtx, subject, body, to, opts...)
	}()
	return done
}

// FromConfig builds the mailer selected by cfg.MailProvider. Outside
// production a provider that cannot be initialised falls back to the log
// transport; in production it is an error, as is the log provider itself.
func FromConfig(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*TransportMailer, error) {
	var (
		t   Transport
		err error
	)
	showBody := cfg.Environment == config.EnvDevelopment
	switch cfg.MailProvider {
	case "ses":
		t, err = NewSESTransport(ctx, cfg.AWSRegion)
	case "smtp":
		t, err = NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	default:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("mail provider %q is not allowed in production", cfg.MailProvider)
		}
		t = NewLogTransport(logger, showBody)
	}
	if err != nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("email provider %s unavailable: %w", cfg.MailProvider, err)
		}
		logger.Warn("Email provider unavailable, falling back to log transport",
			zap.String("provider", cfg.MailProvider), zap.Error(err))
		t = NewLogTransport(logger, showBody)
	}
	return NewMailer(t, cfg.MailFrom, logger), nil
}

func validate(msg Message) error {
	if msg.From == "" {
		return errors.New("missing sender address")
	}
	if msg.To == "" {
		return errors.New("missing recipient address")
	}
	if strings.ContainsAny(msg.To+msg.From+msg.Subject, "\r\n") {
		return fmt.Errorf("header injection attempt")
	}
	return nil
}
