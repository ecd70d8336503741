// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mail delivers contact form messages over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"corpsite/internal/config"
	"corpsite/internal/models"
)

// ErrNotConfigured is returned by Send when the SMTP settings are incomplete.
var ErrNotConfigured = errors.New("mail not configured")

// dialTimeout bounds connecting to the SMTP server.
const dialTimeout = 10 * time.Second

// Message is a plain-text plus HTML e-mail.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an authenticated SMTP relay. With Secure
// set the connection is TLS from the start (port 465 style); otherwise
// STARTTLS is used whenever the server offers it.
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender creates a sender from the mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Configured reports whether host, credentials and recipient are all set.
func (s *SMTPSender) Configured() bool {
	return s.cfg.Configured()
}

// Send delivers msg. Empty From and To default to the configured addresses.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = s.cfg.From
	}
	if msg.To == "" {
		msg.To = s.cfg.To
	}

	body, err := msg.Bytes()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	tlsConfig := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	if s.cfg.Secure {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if !s.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}

	if ok, _ := c.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}

	return c.Quit()
}

// Bytes renders the message as a multipart/alternative MIME document.
func (m Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	var hdr strings.Builder
	writeHeader := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&hdr, "%s: %s\r\n", k, headerSafe(v))
		}
	}
	writeHeader("From", m.From)
	writeHeader("To", m.To)
	writeHeader("Reply-To", m.ReplyTo)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", headerSafe(m.Subject)))
	writeHeader("Date", time.Now().Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `multipart/alternative; boundary="`+mw.Boundary()+`"`)

	out := bytes.NewBufferString(hdr.String() + "\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=UTF-8", m.Text},
		{"text/html; charset=UTF-8", m.HTML},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("mail part: %w", err)
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("mail encode: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("mail encode: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mail close: %w", err)
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

// ContactMessage composes the notification for a contact form submission.
// The visitor's address goes in Reply-To so a reply reaches them directly.
func ContactMessage(in models.ContactInput) Message {
	subject := "Contact form submission"
	if in.Subject != "" {
		subject = "Contact form: " + in.Subject
	}

	lines := []string{"Name: " + in.Name, "Email: " + in.Email}
	if in.Phone != "" {
		lines = append(lines, "Phone: "+in.Phone)
	}
	if in.Subject != "" {
		lines = append(lines, "Subject: "+in.Subject)
	}
	lines = append(lines, "Message:", in.Message)

	var h strings.Builder
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&h, "<p><strong>%s:</strong> %s</p>\n", label, html.EscapeString(value))
		}
	}
	field("Name", in.Name)
	field("Email", in.Email)
	field("Phone", in.Phone)
	field("Subject", in.Subject)
	h.WriteString("<p><strong>Message:</strong></p>\n")
	h.WriteString("<p>" + strings.ReplaceAll(html.EscapeString(in.Message), "\n", "<br>") + "</p>")

	return Message{
		ReplyTo: in.Email,
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
		HTML:    h.String(),
	}
}

// headerSafe strips line breaks so values cannot inject extra headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
