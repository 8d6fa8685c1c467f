package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

// UserRegisterRequest payload for new users. Either first_name or name is needed.
type UserRegisterRequest struct {
	FirstName string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
	Name      string `json:"name" form:"name" validate:"max=200"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ProfileUpdateRequest accepts JSON or multipart form values.
type ProfileUpdateRequest struct {
	FirstName string     `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName  string     `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
	Email     string     `json:"email" form:"email" validate:"omitempty,email"`
	Mobile    *string    `json:"mobile" form:"mobile" validate:"omitempty,max=32"`
	Bio       *string    `json:"bio" form:"bio" validate:"omitempty,max=2000"`
	Address   *string    `json:"address" form:"address" validate:"omitempty,max=500"`
	Country   *string    `json:"country" form:"country" validate:"omitempty,max=100"`
	State     *string    `json:"state" form:"state" validate:"omitempty,max=100"`
	City      *string    `json:"city" form:"city" validate:"omitempty,max=100"`
	Pincode   *string    `json:"pincode" form:"pincode" validate:"omitempty,max=20"`
	Languages StringList `json:"languages" form:"languages"`
}

// PasswordChangeRequest payload for PUT /auth/password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// StringList decodes either a JSON array or a comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var csv string
	if err := json.Unmarshal(data, &csv); err == nil {
		*l = StringList{csv}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Values splits comma separated entries and drops blanks.
func (l StringList) Values() []string {
	out := []string{}
	for _, entry := range l {
		for _, part := range strings.Split(entry, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// UserSummary is the compact user shape returned by login.
type UserSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// UserResponse is the full profile of the caller.
type UserResponse struct {
	ID         string      `json:"id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	ProfilePic *string     `json:"profile_pic"`
	Mobile     *string     `json:"mobile"`
	Bio        *string     `json:"bio"`
	Address    *string     `json:"address"`
	Country    *string     `json:"country"`
	State      *string     `json:"state"`
	City       *string     `json:"city"`
	Pincode    *string     `json:"pincode"`
	Languages  []string    `json:"languages"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      interface{} `json:"user"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserSummary builds the login summary.
func NewUserSummary(u *domain.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.FirstName, Email: u.Email, Role: u.Role}
}

// NewUserResponse maps a domain user, never exposing secrets.
func NewUserResponse(u *domain.User) UserResponse {
	langs := u.Profile.Languages
	if langs == nil {
		langs = []string{}
	}
	return UserResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Role:       u.Role,
		ProfilePic: u.ProfilePic,
		Mobile:     u.Profile.Mobile,
		Bio:        u.Profile.Bio,
		Address:    u.Profile.Address,
		Country:    u.Profile.Country,
		State:      u.Profile.State,
		City:       u.Profile.City,
		Pincode:    u.Profile.Pincode,
		Languages:  langs,
		CreatedAt:  u.CreatedAt,
	}
}
