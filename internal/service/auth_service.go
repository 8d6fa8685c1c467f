package service

import (
	"context"
	"mime/multipart"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maitriconnect/maitri-api/internal/auth"
	"github.com/maitriconnect/maitri-api/internal/config"
	"github.com/maitriconnect/maitri-api/internal/domain"
	"github.com/maitriconnect/maitri-api/internal/events"
	"github.com/maitriconnect/maitri-api/internal/repository"
	"github.com/maitriconnect/maitri-api/internal/sanitize"
	"github.com/maitriconnect/maitri-api/internal/upload"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

const minPasswordLength = 6

// RegisterInput accepts either first/last name or a single display name.
type RegisterInput struct {
	FirstName string
	LastName  string
	Name      string
	Email     string
	Password  string
}

// ProfileInput is a full replacement of the editable profile. Blank names and email
// keep their current values.
type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    *string
	Bio       *string
	Address   *string
	Country   *string
	State     *string
	City      *string
	Pincode   *string
	Languages []string
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration, login, profile and password flows.
type AuthService struct {
	users      repository.UserRepository
	uploads    FileStore
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Uploads    FileStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	resetTTL := time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		uploads:    deps.Uploads,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

// Register creates a new member account and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	first, last := sanitize.Text(in.FirstName), sanitize.Text(in.LastName)
	if first == "" && strings.TrimSpace(in.Name) != "" {
		first, last = splitName(sanitize.Text(in.Name))
	}
	if first == "" {
		return nil, apperrors.NewValidationError("Name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("User already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.ToDomainError(err).HTTPStatus == 409 {
			return nil, apperrors.NewConflict("User already exists")
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password look the same.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := apperrors.NewUnauthorized("Password or Email is incorrect")
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalid
	}
	return s.issue(user)
}

// Profile returns the caller's own record.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}
	return user, nil
}

// UpdateProfile replaces the editable profile fields and optionally the picture.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput, picture *multipart.FileHeader) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}
	previousPic := user.ProfilePic

	if v := sanitize.Text(in.FirstName); v != "" {
		user.FirstName = v
	}
	if v := sanitize.Text(in.LastName); v != "" {
		user.LastName = v
	}
	if strings.TrimSpace(in.Email) != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	user.Profile = domain.Profile{
		Mobile:    sanitize.Ptr(in.Mobile),
		Bio:       sanitize.Ptr(in.Bio),
		Address:   sanitize.Ptr(in.Address),
		Country:   sanitize.Ptr(in.Country),
		State:     sanitize.Ptr(in.State),
		City:      sanitize.Ptr(in.City),
		Pincode:   sanitize.Ptr(in.Pincode),
		Languages: sanitize.TextSlice(in.Languages),
	}

	var newPic string
	user.ProfilePic = nil
	if picture != nil {
		newPic, err = s.uploads.Save(picture, upload.KindProfile)
		if err != nil {
			return nil, uploadError(err)
		}
		user.ProfilePic = &newPic
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if newPic != "" {
			s.removeFile(newPic)
		}
		return nil, err
	}
	if newPic != "" && previousPic != nil && *previousPic != newPic {
		s.removeFile(*previousPic)
	}
	return user, nil
}

// ChangePassword requires the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, "User")
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("Current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", user.ID))
	return nil
}

// RequestPasswordReset stores a fresh reset token on the account and announces it so
// the reset link can be mailed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return notFoundAs(err, "User")
	}

	token := uuid.NewString()
	expires := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return err
	}

	if s.dispatcher != nil {
		evt := events.New(events.EventPasswordResetIssued, user.ID, user.ID, events.PasswordResetIssuedPayload{
			Email:     user.Email,
			Name:      user.FirstName,
			Token:     token,
			ExpiresAt: expires,
		})
		if err := s.dispatcher.Publish(ctx, evt); err != nil {
			s.logger.Warn("password reset notification failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// ResetPassword consumes a reset token. Expired tokens are cleared.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	invalid := apperrors.NewValidationError("Invalid or expired token")
	if strings.TrimSpace(token) == "" {
		return invalid
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return invalid
		}
		return err
	}
	if user.ResetExpires == nil || !s.now().Before(*user.ResetExpires) {
		if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
			s.logger.Warn("failed to clear expired reset token", zap.String("user_id", user.ID), zap.Error(err))
		}
		return invalid
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.users.ClearResetToken(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// PromoteAdmin grants the admin role. Only the operator CLI calls this.
func (s *AuthService) PromoteAdmin(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.SetRole(ctx, strings.TrimSpace(email), domain.RoleAdmin)
	if err != nil {
		return nil, notFoundAs(err, "User")
	}
	s.logger.Info("user promoted to admin", zap.String("user_id", user.ID))
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) removeFile(path string) {
	if err := s.uploads.Remove(path); err != nil {
		s.logger.Warn("failed to remove profile picture", zap.String("path", path), zap.Error(err))
	}
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError("Password must be at least 6 characters")
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperrors.NewValidationError("Password must be at most 72 characters")
	}
	return nil
}

func splitName(name string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(rest)
}

// normalizeEmail stores addresses lowercased; lookups are case-insensitive anyway.
func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", apperrors.NewValidationError("A valid email is required")
	}
	return strings.ToLower(addr.Address), nil
}
