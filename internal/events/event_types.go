package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApproved            EventType = "event_approved"
	EventStatusChanged       EventType = "event_status_changed"
	EventPasswordResetIssued EventType = "password_reset_issued"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, subjectID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EventStatusChangedPayload payload.
type EventStatusChangedPayload struct {
	OldStatus domain.EventStatus `json:"old_status"`
	NewStatus domain.EventStatus `json:"new_status"`
}

// EventApprovedPayload carries what the organizer email needs.
type EventApprovedPayload struct {
	Title       string `json:"title"`
	OrganizerID string `json:"organizer_id"`
}

// PasswordResetIssuedPayload payload. Token is the raw reset token.
type PasswordResetIssuedPayload struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
