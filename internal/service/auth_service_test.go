package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

func TestRegisterThenLogin_TokenResolvesToUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	reg, err := h.auth.Register(ctx, RegisterInput{Name: "Asha Rani Patil", Email: "Asha@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", reg.User.FirstName)
	assert.Equal(t, "Rani Patil", reg.User.LastName)
	assert.Equal(t, domain.RoleUser, reg.User.Role)
	assert.Equal(t, "asha@example.com", reg.User.Email)

	id, err := h.auth.TokenManager().ParseToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id)

	login, err := h.auth.Login(ctx, "asha@example.com", "secret1")
	require.NoError(t, err)
	id, err = h.auth.TokenManager().ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id)
	assert.True(t, login.ExpiresAt.After(time.Now()))
}

func TestRegister_Rejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.auth.Register(ctx, RegisterInput{FirstName: "Other", Email: "ASHA@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = h.auth.Register(ctx, RegisterInput{FirstName: "Vik", Email: "not-an-email", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.auth.Register(ctx, RegisterInput{FirstName: "Vik", Email: "vik@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.auth.Register(ctx, RegisterInput{FirstName: "Vik", Email: "vik@example.com", Password: strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = h.auth.Register(ctx, RegisterInput{Email: "vik@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestLogin_Failures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = h.auth.Login(ctx, "asha@example.com", "wrong-pass")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	_, err = h.auth.Login(ctx, "ghost@example.com", "secret1")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reg, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = h.auth.ChangePassword(ctx, reg.User.ID, "wrong", "secret2")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	require.NoError(t, h.auth.ChangePassword(ctx, reg.User.ID, "secret1", "secret2"))
	_, err = h.auth.Login(ctx, "asha@example.com", "secret1")
	assert.Error(t, err)
	_, err = h.auth.Login(ctx, "asha@example.com", "secret2")
	assert.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reg, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "old-secret"})
	require.NoError(t, err)

	err = h.auth.RequestPasswordReset(ctx, "ghost@example.com")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	require.NoError(t, h.auth.RequestPasswordReset(ctx, "asha@example.com"))
	stored, err := h.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	require.NotNil(t, stored.ResetExpires)
	assert.True(t, stored.ResetExpires.After(time.Now()))

	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, "asha@example.com", h.sender.sent[0].To)
	assert.Contains(t, h.sender.sent[0].HTML, "http://localhost:5173/reset-password/"+*stored.ResetToken)

	err = h.auth.ResetPassword(ctx, "bogus-token", "new-secret")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, h.auth.ResetPassword(ctx, *stored.ResetToken, "new-secret"))

	_, err = h.auth.Login(ctx, "asha@example.com", "old-secret")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	_, err = h.auth.Login(ctx, "asha@example.com", "new-secret")
	assert.NoError(t, err)

	// the token is single use
	err = h.auth.ResetPassword(ctx, *stored.ResetToken, "third-secret")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestResetPassword_ExpiredTokenIsCleared(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reg, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "old-secret"})
	require.NoError(t, err)
	require.NoError(t, h.auth.RequestPasswordReset(ctx, "asha@example.com"))
	stored, _ := h.users.GetByID(ctx, reg.User.ID)
	token := *stored.ResetToken

	h.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err = h.auth.ResetPassword(ctx, token, "new-secret")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	stored, _ = h.users.GetByID(ctx, reg.User.ID)
	assert.Nil(t, stored.ResetToken)
	assert.Nil(t, stored.ResetExpires)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reg, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	city := "Pune"
	bio := "<p>Organizer</p>"
	user, err := h.auth.UpdateProfile(ctx, reg.User.ID, ProfileInput{
		LastName:  "Patil",
		City:      &city,
		Bio:       &bio,
		Languages: []string{"Marathi", " ", "Hindi"},
	}, imageHeader(t, "me.png"))
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.FirstName)
	assert.Equal(t, "Patil", user.LastName)
	assert.Equal(t, "Organizer", *user.Profile.Bio)
	assert.Equal(t, []string{"Marathi", "Hindi"}, user.Profile.Languages)
	require.NotNil(t, user.ProfilePic)
	assert.True(t, strings.HasPrefix(*user.ProfilePic, "/uploads/profile-"))

	// no new picture keeps the current one
	user, err = h.auth.UpdateProfile(ctx, reg.User.ID, ProfileInput{City: &city}, nil)
	require.NoError(t, err)
	require.NotNil(t, user.ProfilePic)
	assert.Empty(t, h.store.removed)

	user, err = h.auth.UpdateProfile(ctx, reg.User.ID, ProfileInput{}, imageHeader(t, "me2.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/profile-1.png"}, h.store.removed)
	assert.Equal(t, "/uploads/profile-2.png", *user.ProfilePic)

	profile, err := h.auth.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/profile-2.png", *profile.ProfilePic)
}

func TestPromoteAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Register(ctx, RegisterInput{FirstName: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := h.auth.PromoteAdmin(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = h.auth.PromoteAdmin(ctx, "ghost@example.com")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}
