package notifications

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPTransport delivers through a plain SMTP relay with optional PLAIN auth.
type SMTPTransport struct {
	addr string
	host string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPTransport(host string, port int, username, password string) (*SMTPTransport, error) {
	if host == "" {
		return nil, errors.New("SMTP_HOST is not set")
	}
	if port <= 0 {
		port = 587
	}
	t := &SMTPTransport{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		host: host,
		send: smtp.SendMail,
	}
	if username != "" {
		t.auth = smtp.PlainAuth("", username, password, host)
	}
	return t, nil
}

func (s *SMTPTransport) Name() string { return "smtp" }

// Deliver honours ctx only before the dial; net/smtp has no context support.
func (s *SMTPTransport) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(s.addr, s.auth, msg.From, []string{msg.To}, buildMIME(msg)); err != nil {
		return fmt.Errorf("smtp send via %s: %w", s.addr, err)
	}
	return nil
}

func buildMIME(msg Message) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
