package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/email"
	"github.com/maitriconnect/maitri-api/internal/events"
	"github.com/maitriconnect/maitri-api/internal/observability"
	"github.com/maitriconnect/maitri-api/internal/repository"
)

// NotificationService turns domain events into organizer and member emails.
// Delivery is best effort: failures are logged and counted and never reach the
// request that triggered them.
type NotificationService struct {
	dispatcher  events.Dispatcher
	users       repository.UserRepository
	sender      email.Sender
	logger      *zap.Logger
	metrics     *observability.Metrics
	frontendURL string
}

// NotificationDependencies groups the collaborators of NotificationService.
type NotificationDependencies struct {
	Dispatcher  events.Dispatcher
	UserRepo    repository.UserRepository
	Sender      email.Sender
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	FrontendURL string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher:  deps.Dispatcher,
		users:       deps.UserRepo,
		sender:      deps.Sender,
		logger:      logger.With(zap.String("component", "notifications")),
		metrics:     deps.Metrics,
		frontendURL: strings.TrimRight(deps.FrontendURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApproved, n.handleEventApproved)
	n.dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventPasswordResetIssued, n.handlePasswordReset)
}

func (n *NotificationService) handleEventApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EventApprovedPayload)
	if !ok {
		return n.fail(string(event.Type), fmt.Errorf("unexpected payload %T", event.Payload))
	}
	organizer, err := n.users.GetByID(ctx, payload.OrganizerID)
	if err != nil {
		return n.fail(string(event.Type), fmt.Errorf("lookup organizer: %w", err))
	}

	msg, err := email.EventApproved(organizer.FirstName, payload.Title)
	if err != nil {
		return n.fail(string(event.Type), err)
	}
	n.logger.Info("sending approval notification",
		zap.String("event_id", event.SubjectID),
		zap.String("organizer_id", organizer.ID))
	if err := n.sender.Send(ctx, organizer.Email, msg.Subject, msg.HTML); err != nil {
		return n.fail(string(event.Type), err)
	}
	return nil
}

func (n *NotificationService) handleStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("EventStatusChanged", zap.String("event_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePasswordReset(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetIssuedPayload)
	if !ok {
		return n.fail(string(event.Type), fmt.Errorf("unexpected payload %T", event.Payload))
	}
	link := n.ResetLink(payload.Token)
	n.logger.Debug("password reset link issued", zap.String("user_id", event.SubjectID), zap.String("link", link))

	msg, err := email.PasswordReset(payload.Name, link, payload.ExpiresAt)
	if err != nil {
		return n.fail(string(event.Type), err)
	}
	if err := n.sender.Send(ctx, payload.Email, msg.Subject, msg.HTML); err != nil {
		return n.fail(string(event.Type), err)
	}
	return nil
}

// ResetLink builds the frontend URL that consumes a reset token.
func (n *NotificationService) ResetLink(token string) string {
	return n.frontendURL + "/reset-password/" + token
}

func (n *NotificationService) fail(kind string, err error) error {
	n.metrics.RecordNotificationFailure(kind)
	n.logger.Warn("notification not delivered", zap.String("kind", kind), zap.Error(err))
	return err
}
