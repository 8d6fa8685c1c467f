package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/maitriconnect/maitri-api/internal/domain"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. User is populated only once a
// policy needed the stored record.
type Principal struct {
	UserID string
	User   *domain.User
}

// UserFinder is the slice of the credential store the gate needs.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate validates bearer tokens and enforces route policies.
type Gate struct {
	tokens *TokenManager
	users  UserFinder
}

// NewGate constructs the authorization gate.
func NewGate(tokens *TokenManager, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate is the user-level gate: it requires a valid bearer token and stores the
// resolved user id on the request.
func (g *Gate) Authenticate(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return apperrors.NewForbidden("Authorization denied")
	}

	token := header
	if scheme, rest, found := strings.Cut(header, " "); found && strings.EqualFold(scheme, "Bearer") {
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return apperrors.NewForbidden("Authorization denied")
	}

	userID, err := g.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("Token is not valid")
	}

	c.Locals(principalKey, &Principal{UserID: userID})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}
