package notify

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Email is one outbound HTML message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	SenderName string
}

// SMTPMailer sends through an authenticated SMTP relay. smtp.SendMail
// upgrades the connection with STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer returns a mailer for cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// Send delivers e. The context bounds only the time spent waiting to start;
// net/smtp has no per-call cancellation.
func (m *SMTPMailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(e.To); err != nil {
		return fmt.Errorf("recipient %q: %w", e.To, err)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	msg := buildMessage(m.cfg.User, m.cfg.SenderName, e, time.Now())
	if err := m.send(addr, auth, m.cfg.User, []string{e.To}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}

func buildMessage(from, fromName string, e Email, now time.Time) []byte {
	sender := (&mail.Address{Name: fromName, Address: from}).String()
	var b strings.Builder
	b.WriteString("From: " + sender + "\r\n")
	b.WriteString("To: " + e.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", e.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.HTML)
	return []byte(b.String())
}
