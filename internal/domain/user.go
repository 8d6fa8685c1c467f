package domain

import "time"

// Role gates moderation privileges.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered member; organizers and admins are both users.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Profile      Profile
	ProfilePic   *string
	ResetToken   *string
	ResetExpires *time.Time
	CreatedAt    time.Time
}

// Profile holds the optional, user-editable contact fields.
type Profile struct {
	Mobile    *string
	Bio       *string
	Address   *string
	Country   *string
	State     *string
	City      *string
	Pincode   *string
	Languages []string
}

// IsAdmin reports whether the user may moderate events.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
