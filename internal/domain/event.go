package domain

import "time"

// EventStatus is the moderation state of a listing.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Valid reports whether s is one of the known moderation states.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// Event is a community listing submitted by an organizer.
type Event struct {
	ID             string
	Title          string
	Description    string
	Date           string
	Time           string
	Location       string
	Category       string
	ImageURL       *string
	ExternalRegURL *string
	OrganizerID    string
	Status         EventStatus
	CreatedAt      time.Time
}

// Organizer is the public slice of a user shown next to an event.
type Organizer struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Mobile     *string
	ProfilePic *string
}

// EventWithOrganizer joins an event with its organizer's public fields.
type EventWithOrganizer struct {
	Event
	Organizer Organizer
}
