package service

import (
	"context"
	"errors"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/cache"
	"github.com/maitriconnect/maitri-api/internal/domain"
	"github.com/maitriconnect/maitri-api/internal/events"
	"github.com/maitriconnect/maitri-api/internal/observability"
	"github.com/maitriconnect/maitri-api/internal/repository"
	"github.com/maitriconnect/maitri-api/internal/sanitize"
	"github.com/maitriconnect/maitri-api/internal/upload"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

// FileStore persists uploaded images and hands back their public path.
type FileStore interface {
	Save(fh *multipart.FileHeader, kind upload.Kind) (string, error)
	Remove(publicPath string) error
}

// EventInput carries the editable fields of a listing.
type EventInput struct {
	Title          string
	Description    string
	Date           string
	Time           string
	Location       string
	Category       string
	ExternalRegURL *string
}

// EventService coordinates listing submission, editing and moderation.
type EventService struct {
	events     repository.EventRepository
	users      repository.UserRepository
	uploads    FileStore
	cache      cache.PublicEvents
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// EventDependencies groups the collaborators of EventService.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	UserRepo   repository.UserRepository
	Uploads    FileStore
	Cache      cache.PublicEvents
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewEventService builds the service. A nil cache disables caching.
func NewEventService(deps EventDependencies) *EventService {
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:     deps.EventRepo,
		users:      deps.UserRepo,
		uploads:    deps.Uploads,
		cache:      c,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// ListPublic returns approved events, served from the cache when possible.
func (s *EventService) ListPublic(ctx context.Context) ([]domain.Event, error) {
	cached, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("public events cache read failed", zap.Error(err))
	case ok:
		s.metrics.RecordCacheLookup("hit")
		return cached, nil
	default:
		s.metrics.RecordCacheLookup("miss")
	}

	list, err := s.events.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, list); err != nil {
		s.logger.Warn("public events cache write failed", zap.Error(err))
	}
	return list, nil
}

// ListOwned returns the caller's events, newest first.
func (s *EventService) ListOwned(ctx context.Context, organizerID string) ([]domain.Event, error) {
	return s.events.ListOwned(ctx, organizerID)
}

// ListAll returns every event with its organizer name, for admins.
func (s *EventService) ListAll(ctx context.Context) ([]domain.EventWithOrganizer, error) {
	return s.events.ListAll(ctx)
}

// Get fetches one event with organizer contact fields.
func (s *EventService) Get(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound("Event")
	}
	event, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Event")
	}
	return event, nil
}

// OwnerOf resolves the organizer id of an event for the ownership policy.
func (s *EventService) OwnerOf(ctx context.Context, id string) (string, error) {
	if !validID(id) {
		return "", apperrors.NewNotFound("Event")
	}
	owner, err := s.events.OwnerOf(ctx, id)
	if err != nil {
		return "", notFoundAs(err, "Event")
	}
	return owner, nil
}

// Create stores a new submission. The flyer is written before the row and removed
// again if the insert fails.
func (s *EventService) Create(ctx context.Context, organizerID string, input EventInput, flyer *multipart.FileHeader) (*domain.Event, error) {
	clean, err := normalizeEventInput(input)
	if err != nil {
		return nil, err
	}
	if flyer == nil {
		return nil, apperrors.NewValidationError("Event flyer is required")
	}

	organizer, err := s.users.GetByID(ctx, organizerID)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}

	imagePath, err := s.saveImage(flyer)
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:          clean.Title,
		Description:    clean.Description,
		Date:           clean.Date,
		Time:           clean.Time,
		Location:       clean.Location,
		Category:       clean.Category,
		ImageURL:       &imagePath,
		ExternalRegURL: clean.ExternalRegURL,
		OrganizerID:    organizer.ID,
		Status:         InitialStatus(organizer.Role),
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.removeImage(imagePath)
		return nil, err
	}

	s.invalidatePublic(ctx)
	s.logger.Info("event submitted",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", event.OrganizerID),
		zap.String("status", string(event.Status)))
	return event, nil
}

// Update overwrites the editable fields of the caller's own event and sends it back
// to review. A new flyer replaces the old one.
func (s *EventService) Update(ctx context.Context, id, organizerID string, input EventInput, flyer *multipart.FileHeader) (*domain.Event, error) {
	clean, err := normalizeEventInput(input)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperrors.NewForbidden("Not authorized to edit this event")
	}
	current, err := s.events.Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewForbidden("Not authorized to edit this event")
		}
		return nil, err
	}
	if current.OrganizerID != organizerID {
		return nil, apperrors.NewForbidden("Not authorized to edit this event")
	}

	var newImage *string
	if flyer != nil {
		path, err := s.saveImage(flyer)
		if err != nil {
			return nil, err
		}
		newImage = &path
	}

	event := &domain.Event{
		ID:             id,
		Title:          clean.Title,
		Description:    clean.Description,
		Date:           clean.Date,
		Time:           clean.Time,
		Location:       clean.Location,
		Category:       clean.Category,
		ImageURL:       newImage,
		ExternalRegURL: clean.ExternalRegURL,
		OrganizerID:    organizerID,
		Status:         ResubmitStatus(),
	}
	if err := s.events.Update(ctx, event); err != nil {
		if newImage != nil {
			s.removeImage(*newImage)
		}
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewForbidden("Not authorized to edit this event")
		}
		return nil, err
	}
	if newImage != nil && current.ImageURL != nil && *current.ImageURL != *newImage {
		s.removeImage(*current.ImageURL)
	}

	s.invalidatePublic(ctx)
	s.logger.Info("event resubmitted", zap.String("event_id", id), zap.String("previous_status", string(current.Status)))
	return event, nil
}

// SetStatus applies an admin moderation decision. Approval notifies the organizer on
// a best-effort basis; notification failures never fail the update.
func (s *EventService) SetStatus(ctx context.Context, id, adminID, rawStatus string) (*domain.Event, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperrors.NewNotFound("Event")
	}

	current, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Event")
	}
	if !CanModerate(current.Status, status) {
		s.logger.Warn("rejected moderation transition",
			zap.String("event_id", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(status)))
		return nil, apperrors.NewValidationError("Invalid status transition")
	}

	event, previous, err := s.events.SetStatus(ctx, id, status)
	if err != nil {
		return nil, notFoundAs(err, "Event")
	}
	s.metrics.RecordModeration(string(previous), string(status))
	s.invalidatePublic(ctx)

	s.publish(ctx, events.New(events.EventStatusChanged, event.ID, adminID, events.EventStatusChangedPayload{
		OldStatus: previous,
		NewStatus: status,
	}))
	if notifiesOrganizer(previous, status) {
		s.publish(ctx, events.New(events.EventApproved, event.ID, adminID, events.EventApprovedPayload{
			Title:       event.Title,
			OrganizerID: event.OrganizerID,
		}))
	}
	return event, nil
}

// Delete removes the caller's own event.
func (s *EventService) Delete(ctx context.Context, id, organizerID string) error {
	if !validID(id) {
		return apperrors.NewForbidden("Not authorized or event not found")
	}
	event, err := s.events.Delete(ctx, id, organizerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewForbidden("Not authorized or event not found")
		}
		return err
	}
	s.afterDelete(ctx, event)
	return nil
}

// DeleteAdmin removes any event.
func (s *EventService) DeleteAdmin(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NewNotFound("Event")
	}
	event, err := s.events.DeleteAny(ctx, id)
	if err != nil {
		return notFoundAs(err, "Event")
	}
	s.afterDelete(ctx, event)
	return nil
}

func (s *EventService) afterDelete(ctx context.Context, event *domain.Event) {
	if event.ImageURL != nil {
		s.removeImage(*event.ImageURL)
	}
	s.invalidatePublic(ctx)
	s.logger.Info("event deleted", zap.String("event_id", event.ID))
}

func (s *EventService) saveImage(fh *multipart.FileHeader) (string, error) {
	path, err := s.uploads.Save(fh, upload.KindFlyer)
	if err != nil {
		return "", uploadError(err)
	}
	return path, nil
}

func (s *EventService) removeImage(path string) {
	if err := s.uploads.Remove(path); err != nil {
		s.logger.Warn("failed to remove flyer", zap.String("path", path), zap.Error(err))
	}
}

func (s *EventService) invalidatePublic(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("public events cache invalidation failed", zap.Error(err))
	}
}

func (s *EventService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

func normalizeEventInput(in EventInput) (EventInput, error) {
	out := EventInput{
		Title:          sanitize.Text(in.Title),
		Description:    sanitize.Text(in.Description),
		Location:       sanitize.Text(in.Location),
		Category:       sanitize.Text(in.Category),
		ExternalRegURL: sanitize.Ptr(in.ExternalRegURL),
	}
	switch {
	case out.Title == "":
		return out, apperrors.NewValidationError("Title is required")
	case out.Description == "":
		return out, apperrors.NewValidationError("Description is required")
	case out.Location == "":
		return out, apperrors.NewValidationError("Location is required")
	case out.Category == "":
		return out, apperrors.NewValidationError("Category is required")
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.Date))
	if err != nil {
		return out, apperrors.NewValidationError("Date must be in YYYY-MM-DD format")
	}
	out.Date = date.Format("2006-01-02")

	clock, err := parseClock(strings.TrimSpace(in.Time))
	if err != nil {
		return out, apperrors.NewValidationError("Time must be in HH:MM format")
	}
	out.Time = clock

	if out.ExternalRegURL != nil {
		u, err := url.ParseRequestURI(*out.ExternalRegURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return out, apperrors.NewValidationError("External registration URL must be an http(s) link")
		}
	}
	return out, nil
}

func parseClock(raw string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", errors.New("invalid time")
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrUnsupportedType):
		return apperrors.NewValidationError("Only image files are allowed")
	case errors.Is(err, upload.ErrTooLarge):
		return apperrors.NewValidationError("File too large")
	}
	return apperrors.NewInternalError(err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notFoundAs rewrites "no rows" style errors into a named not-found error.
func notFoundAs(err error, resource string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource)
	}
	return err
}
