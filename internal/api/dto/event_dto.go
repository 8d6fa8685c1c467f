package dto

import (
	"time"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

// EventRequest is the editable part of a listing, sent as multipart or JSON.
type EventRequest struct {
	Title          string  `json:"title" form:"title" validate:"required,max=200"`
	Description    string  `json:"description" form:"description" validate:"required,max=5000"`
	Date           string  `json:"date" form:"date" validate:"required"`
	Time           string  `json:"time" form:"time" validate:"required"`
	Location       string  `json:"location" form:"location" validate:"required,max=300"`
	Category       string  `json:"category" form:"category" validate:"required,max=100"`
	ExternalRegURL *string `json:"external_reg_url" form:"external_reg_url" validate:"omitempty,url"`
}

// StatusUpdateRequest payload for PUT /events/:id/status.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// EventResponse mirrors an events row.
type EventResponse struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
	Location       string             `json:"location"`
	Category       string             `json:"category"`
	ImageURL       *string            `json:"image_url"`
	ExternalRegURL *string            `json:"external_reg_url"`
	OrganizerID    string             `json:"organizer_id"`
	Status         domain.EventStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

// EventWithOrganizerResponse flattens organizer columns next to the event.
type EventWithOrganizerResponse struct {
	EventResponse
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email,omitempty"`
	Mobile     *string `json:"mobile,omitempty"`
	ProfilePic *string `json:"profile_pic,omitempty"`
}

// NewEventResponse maps a domain event.
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Date:           e.Date,
		Time:           e.Time,
		Location:       e.Location,
		Category:       e.Category,
		ImageURL:       e.ImageURL,
		ExternalRegURL: e.ExternalRegURL,
		OrganizerID:    e.OrganizerID,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
	}
}

// NewEventListResponse maps a slice, never returning null.
func NewEventListResponse(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventResponse(&events[i]))
	}
	return out
}

// NewEventWithOrganizerResponse maps a joined row.
func NewEventWithOrganizerResponse(e *domain.EventWithOrganizer) EventWithOrganizerResponse {
	return EventWithOrganizerResponse{
		EventResponse: NewEventResponse(&e.Event),
		FirstName:     e.Organizer.FirstName,
		LastName:      e.Organizer.LastName,
		Email:         e.Organizer.Email,
		Mobile:        e.Organizer.Mobile,
		ProfilePic:    e.Organizer.ProfilePic,
	}
}

// NewAdminEventListResponse maps the admin listing.
func NewAdminEventListResponse(events []domain.EventWithOrganizer) []EventWithOrganizerResponse {
	out := make([]EventWithOrganizerResponse, 0, len(events))
	for i := range events {
		out = append(out, NewEventWithOrganizerResponse(&events[i]))
	}
	return out
}
