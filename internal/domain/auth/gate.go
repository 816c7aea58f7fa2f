package auth

import (
	"context"

	"pixelforge-server-go/internal/platform/errors"
)

const (
	RoleAdmin   = "admin"
	RoleSupport = "support"
	RoleUser    = "user"
)

// Principal is the authenticated identity behind a request.
type Principal struct {
	ID       uint
	Email    string
	Role     string
	Disabled bool
}

type Status int

const (
	StatusAuthorized Status = iota
	StatusUnauthenticated
	StatusForbidden
)

// Outcome is the tagged result of a session evaluation: exactly one of the
// three statuses, with a principal only when authorized.
type Outcome struct {
	Status    Status
	Principal *Principal
}

func Authorized(p Principal) Outcome {
	return Outcome{Status: StatusAuthorized, Principal: &p}
}

func Unauthenticated() Outcome {
	return Outcome{Status: StatusUnauthenticated}
}

func Forbidden() Outcome {
	return Outcome{Status: StatusForbidden}
}

// PrincipalSource resolves the current principal for a user id. It returns a
// not_found error when the account no longer exists.
type PrincipalSource interface {
	PrincipalByID(ctx context.Context, id uint) (*Principal, error)
}

// Gate evaluates inbound session tokens against the current account state.
// It only reads; session failures are reported as outcomes, never panics.
type Gate struct {
	tokens     *TokenManager
	principals PrincipalSource
}

func NewGate(tokens *TokenManager, principals PrincipalSource) *Gate {
	return &Gate{
		tokens:     tokens,
		principals: principals,
	}
}

// Authenticate resolves the bearer token to a principal. The error return is
// reserved for dependency failures; expected rejections come back as outcomes.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (Outcome, error) {
	token := StripBearer(bearer)
	if token == "" {
		return Unauthenticated(), nil
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return Unauthenticated(), nil
	}

	principal, err := g.principals.PrincipalByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsKind(err, errors.KindNotFound) {
			// Token references a deleted account.
			return Unauthenticated(), nil
		}
		return Outcome{}, err
	}

	if principal.Disabled {
		return Forbidden(), nil
	}

	return Authorized(*principal), nil
}

// Authorize authenticates the token and additionally requires the admin role.
func (g *Gate) Authorize(ctx context.Context, bearer string) (Outcome, error) {
	outcome, err := g.Authenticate(ctx, bearer)
	if err != nil || outcome.Status != StatusAuthorized {
		return outcome, err
	}
	if outcome.Principal.Role != RoleAdmin {
		return Forbidden(), nil
	}
	return outcome, nil
}
