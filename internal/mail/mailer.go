package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mailsense/mailsense/pkg/config"
)

// Mailer performs best-effort delivery of plain-text mail. Failures must
// never propagate to the request that triggered the send.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers through a plain SMTP relay, upgrading to TLS via
// STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" || m.cfg.User == "" || m.cfg.Password == "" {
		return errors.New("smtp not configured")
	}

	from := m.cfg.FromAddress()
	msg := buildMessage(from, to, subject, body)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	c, err := smtp.Dial(m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("dialing smtp server: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

var _ Mailer = (*SMTPMailer)(nil)
