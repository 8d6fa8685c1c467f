package service

import (
	"strings"

	"github.com/maitriconnect/maitri-api/internal/domain"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

// InitialStatus is the status a new submission starts in. Admin submissions skip review.
func InitialStatus(role domain.Role) domain.EventStatus {
	if role == domain.RoleAdmin {
		return domain.EventStatusApproved
	}
	return domain.EventStatusPending
}

// ResubmitStatus is the status an event returns to after its owner edits it.
func ResubmitStatus() domain.EventStatus {
	return domain.EventStatusPending
}

// CanModerate reports whether an admin may move an event from one status to another.
// Every valid target is reachable from every state; there is no terminal status.
func CanModerate(from, to domain.EventStatus) bool {
	return from.Valid() && to.Valid()
}

// ParseStatus validates a status supplied by a client.
func ParseStatus(raw string) (domain.EventStatus, error) {
	status := domain.EventStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", apperrors.NewValidationError("Invalid status value")
	}
	return status, nil
}

// notifiesOrganizer reports whether a transition should email the organizer.
func notifiesOrganizer(from, to domain.EventStatus) bool {
	return to == domain.EventStatusApproved && from != domain.EventStatusApproved
}
