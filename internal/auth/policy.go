package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/maitriconnect/maitri-api/internal/domain"
	apperrors "github.com/maitriconnect/maitri-api/pkg/util"
)

// OwnerLookup resolves the owning user id of the resource named by the route's :id.
type OwnerLookup func(ctx context.Context, resourceID string) (string, error)

// Policy declares what a route requires beyond a valid token. A zero Policy only
// requires authentication.
type Policy struct {
	// Role requires the caller's stored role to match.
	Role domain.Role
	// Owner requires the caller to own the resource identified by the :id param.
	Owner OwnerLookup
	// Denied overrides the forbidden message for ownership failures.
	Denied string
}

// RequireAdmin is the admin-level policy.
var RequireAdmin = Policy{Role: domain.RoleAdmin}

// RequireOwner builds an ownership policy.
func RequireOwner(lookup OwnerLookup, denied string) Policy {
	return Policy{Owner: lookup, Denied: denied}
}

// Require enforces p. It must run after Authenticate. Every lookup failure denies.
func (g *Gate) Require(p Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewForbidden("Authorization denied")
		}

		if p.Role != "" {
			user, err := g.users.GetByID(c.UserContext(), principal.UserID)
			if err != nil || user == nil || user.Role != p.Role {
				return apperrors.NewForbidden(roleDeniedMessage(p.Role))
			}
			principal.User = user
		}

		if p.Owner != nil {
			ownerID, err := p.Owner(c.UserContext(), c.Params("id"))
			if err != nil || ownerID == "" || ownerID != principal.UserID {
				msg := p.Denied
				if msg == "" {
					msg = "Not authorized"
				}
				return apperrors.NewForbidden(msg)
			}
		}

		return c.Next()
	}
}

func roleDeniedMessage(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "Admin access required"
	}
	return "Insufficient role"
}
