package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/config"
)

// sendTimeout caps a whole SMTP exchange when the caller's context has no earlier deadline.
const sendTimeout = 30 * time.Second

// SMTPSender delivers over SMTP with STARTTLS.
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}
	if strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid subject: contains newline characters")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.cfg.From, to, subject, htmlBody)

	client, stop, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer stop()
	defer func() { _ = client.Close() }()

	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if s.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(envelopeAddress(s.cfg.From)); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Warn("SMTP quit failed", zap.Error(err))
	}

	s.logger.Info("email sent via SMTP", zap.String("to", to))
	return nil
}

// dial connects with the caller's context and bounds every later read and write by a
// deadline, so a server that accepts but never answers cannot hold the caller.
func (s *SMTPSender) dial(ctx context.Context) (*smtp.Client, func() bool, error) {
	deadline := time.Now().Add(sendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))
	dialer := &net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to set SMTP deadline: %w", err)
	}
	// Cancellation closes the socket, unblocking whatever exchange is in flight.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		stop()
		_ = conn.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, fmt.Errorf("SMTP greeting: %w", ctxErr)
		}
		return nil, nil, fmt.Errorf("failed to read SMTP greeting: %w", err)
	}
	return client, stop, nil
}

// buildMessage renders headers in a fixed order followed by the HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	for _, h := range [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	} {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}

// envelopeAddress strips the display name from "Name <addr>".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}
