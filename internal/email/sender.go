// Package email delivers transactional mail through a configurable provider.
package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/config"
)

// Sender delivers a single HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg config.EmailConfig, logger *zap.Logger) (Sender, error) {
	logger = logger.With(zap.String("component", "email"), zap.String("provider", cfg.Provider))
	switch cfg.Provider {
	case "", "log":
		return &LogSender{logger: logger}, nil
	case "smtp":
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		return &SMTPSender{cfg: cfg, logger: logger}, nil
	case "resend":
		return &ResendSender{
			from:   cfg.From,
			client: resend.NewClient(cfg.ResendAPIKey),
			logger: logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender is used in development and tests.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}
	s.logger.Info("email not delivered, log provider active",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)))
	return nil
}

// validateEmailAddress rejects malformed addresses and header injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}
