// Package email sends transactional mail over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/config"
)

// ErrNotConfigured is returned when a send is attempted without SMTP settings.
var ErrNotConfigured = errors.New("email is not configured")

const dialTimeout = 10 * time.Second

// Attachment is a file attached to a message.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Message is a single email, sent to every address in To.
type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Service handles sending email over SMTP.
type Service struct {
	cfg     *config.Config
	enabled bool
}

// NewService creates a new email service.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
	}

	if s.enabled {
		slog.Info("email enabled", "host", cfg.SMTPHost, "port", cfg.SMTPPort, "tls", cfg.SMTPTLS)
	} else {
		slog.Warn("email disabled, SMTP not configured")
	}

	return s
}

// IsEnabled returns true if email is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// Send delivers msg, honouring ctx for the connection setup.
func (s *Service) Send(ctx context.Context, msg *Message) error {
	if !s.enabled {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	body, err := s.build(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.SMTPHost, fmt.Sprint(s.cfg.SMTPPort))

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	client, err := s.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}

	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}

	return client.Quit()
}

// dial opens the SMTP session according to SMTP_TLS.
func (s *Service) dial(ctx context.Context, addr string) (*smtp.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}

	var conn net.Conn
	var err error
	if s.cfg.SMTPTLS == "tls" {
		d := &tls.Dialer{NetDialer: &net.Dialer{}, Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("SMTP dial failed: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SMTP client failed: %w", err)
	}

	if s.cfg.SMTPTLS == "starttls" {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	return client, nil
}

func (s *Service) from() string {
	if s.cfg.SMTPFromName != "" {
		return mime.QEncoding.Encode("utf-8", s.cfg.SMTPFromName) + " <" + s.cfg.SMTPFrom + ">"
	}
	return s.cfg.SMTPFrom
}

// build renders msg as a MIME document. Text and HTML go into a
// multipart/alternative part, attachments alongside it in multipart/mixed.
func (s *Service) build(msg *Message) ([]byte, error) {
	var buf bytes.Buffer

	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", s.from())
	header("To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.SMTPHost))
	header("MIME-Version", "1.0")

	mixed := multipart.NewWriter(&buf)
	header("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mixed.Boundary()))
	buf.WriteString("\r\n")

	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)
	if msg.Text != "" {
		if err := writePart(altWriter, "text/plain; charset=utf-8", "", []byte(msg.Text)); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writePart(altWriter, "text/html; charset=utf-8", "", []byte(msg.HTML)); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}

	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(alt.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})
		if err := writePart(mixed, ct, disposition, a.Content); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePart writes a base64-encoded part wrapped at 76 columns.
func writePart(w *multipart.Writer, contentType, disposition string, content []byte) error {
	h := textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"base64"},
	}
	if disposition != "" {
		h.Set("Content-Disposition", disposition)
	}

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}
