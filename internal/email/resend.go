package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	from   string
	client *resend.Client
	logger *zap.Logger
}

// NewResendSender wraps an existing client so callers can point it elsewhere.
func NewResendSender(client *resend.Client, from string, logger *zap.Logger) *ResendSender {
	return &ResendSender{from: from, client: client, logger: logger}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn("resend rate limit exceeded",
				zap.String("limit", rateLimitErr.Limit),
				zap.String("remaining", rateLimitErr.Remaining),
				zap.String("reset", rateLimitErr.Reset))
			return fmt.Errorf("email rate limit exceeded: %w", err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info("email sent via Resend", zap.String("email_id", sent.Id), zap.String("to", to))
	return nil
}
