package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maitriconnect/maitri-api/internal/domain"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, domain.EventStatusApproved, InitialStatus(domain.RoleAdmin))
	assert.Equal(t, domain.EventStatusPending, InitialStatus(domain.RoleUser))
	assert.Equal(t, domain.EventStatusPending, InitialStatus(""))
	assert.Equal(t, domain.EventStatusPending, ResubmitStatus())
}

func TestCanModerate(t *testing.T) {
	all := []domain.EventStatus{domain.EventStatusPending, domain.EventStatusApproved, domain.EventStatusRejected}
	for _, from := range all {
		for _, to := range all {
			assert.True(t, CanModerate(from, to), "%s -> %s", from, to)
		}
		assert.False(t, CanModerate(from, "archived"))
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" Approved ")
	assert.NoError(t, err)
	assert.Equal(t, domain.EventStatusApproved, got)

	_, err = ParseStatus("published")
	de := apperrors.ToDomainError(err)
	assert.Equal(t, 400, de.HTTPStatus)
}

func TestNotifiesOrganizer(t *testing.T) {
	assert.True(t, notifiesOrganizer(domain.EventStatusPending, domain.EventStatusApproved))
	assert.True(t, notifiesOrganizer(domain.EventStatusRejected, domain.EventStatusApproved))
	assert.False(t, notifiesOrganizer(domain.EventStatusApproved, domain.EventStatusApproved))
	assert.False(t, notifiesOrganizer(domain.EventStatusPending, domain.EventStatusRejected))
}
