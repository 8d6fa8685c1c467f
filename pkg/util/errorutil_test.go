package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"domain error passes through", NewForbidden("nope"), http.StatusForbidden, "nope"},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewNotFound("Event")), http.StatusNotFound, "Event not found"},
		{"fiber error", fiber.NewError(http.StatusBadRequest, "bad body"), http.StatusBadRequest, "bad body"},
		{"no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), http.StatusNotFound, "resource not found"},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "resource already exists"},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, http.StatusBadRequest, "invalid input"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			assert.Equal(t, tc.wantStatus, got.HTTPStatus)
			assert.Equal(t, tc.wantMsg, got.Message)
		})
	}
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(NewNotFound("User")))
	assert.False(t, IsNotFound(NewForbidden("x")))
	assert.False(t, IsNotFound(errors.New("x")))
}
