package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer relays messages through an SMTP server. A Mailer with no host
// drops every message.
type Mailer struct {
	host     string
	port     int
	username string
	password string

	// send is smtp.SendMail; replaced in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(host string, port int, username, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		send:     smtp.SendMail,
	}
}

// Enabled reports whether a relay host is configured.
func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// Send delivers msg synchronously.
func (m *Mailer) Send(msg Message) error {
	if !m.Enabled() {
		return nil
	}
	if msg.From == "" || len(msg.To) == 0 {
		return fmt.Errorf("message needs a sender and at least one recipient")
	}

	var a smtp.Auth
	if m.username != "" {
		a = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, a, msg.From, msg.To, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", addr, err)
	}
	return nil
}

// SendAsync delivers msg in the background and only logs the outcome.
// There is no retry. The returned channel is closed when the attempt ends.
func (m *Mailer) SendAsync(ctx context.Context, msg Message) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := m.Send(msg); err != nil {
			slog.ErrorContext(ctx, "mail delivery failed", "subject", msg.Subject, "error", err)
			return
		}
		if m.Enabled() {
			slog.InfoContext(ctx, "mail sent", "subject", msg.Subject, "to", strings.Join(msg.To, ","))
		}
	}()
	return done
}

// Bytes renders msg as an RFC 5322 message with CRLF line endings.
func (msg Message) Bytes() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

// StartupNotice is the fixed message sent when the server comes up.
func StartupNotice(from, to string) Message {
	return Message{
		From:    from,
		To:      []string{to},
		Subject: "songmarket started",
		Body:    "The songmarket API server has started.",
	}
}
