package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maitriconnect/maitri-api/internal/api/dto"
	"github.com/maitriconnect/maitri-api/internal/auth"
	"github.com/maitriconnect/maitri-api/internal/service"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

// EventsHandler serves listing, submission and moderation endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// ListPublic GET /events.
func (h *EventsHandler) ListPublic(c *fiber.Ctx) error {
	events, err := h.service.ListPublic(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventListResponse(events))
}

// ListOwned GET /events/user.
func (h *EventsHandler) ListOwned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("Authorization denied")
	}
	events, err := h.service.ListOwned(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventListResponse(events))
}

// ListAll GET /events/admin/all.
func (h *EventsHandler) ListAll(c *fiber.Ctx) error {
	events, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAdminEventListResponse(events))
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventWithOrganizerResponse(event))
}

// Create POST /events (multipart, flyer required).
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("Authorization denied")
	}
	var req dto.EventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.service.Create(c.UserContext(), principal.UserID, eventInput(req), optionalFile(c, "flyer"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewEventResponse(event))
}

// Update PUT /events/:id. Sends the listing back to review.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("Authorization denied")
	}
	var req dto.EventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.service.Update(c.UserContext(), c.Params("id"), principal.UserID, eventInput(req), optionalFile(c, "flyer"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventResponse(event))
}

// SetStatus PUT /events/:id/status.
func (h *EventsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("Authorization denied")
	}
	var req dto.StatusUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.service.SetStatus(c.UserContext(), c.Params("id"), principal.UserID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventResponse(event))
}

// Delete DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("Authorization denied")
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), principal.UserID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Event deleted"})
}

// DeleteAdmin DELETE /events/admin/:id.
func (h *EventsHandler) DeleteAdmin(c *fiber.Ctx) error {
	if err := h.service.DeleteAdmin(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Event deleted"})
}

func eventInput(req dto.EventRequest) service.EventInput {
	return service.EventInput{
		Title:          req.Title,
		Description:    req.Description,
		Date:           req.Date,
		Time:           req.Time,
		Location:       req.Location,
		Category:       req.Category,
		ExternalRegURL: req.ExternalRegURL,
	}
}
