package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

// ErrUnauthenticated is returned when a request carries no usable session token.
var ErrUnauthenticated = errors.New("authentication required")

// SessionResolver turns the access token cookie into a Principal.
type SessionResolver struct {
	codec  *auth.TokenCodec
	logger *slog.Logger
}

// NewSessionResolver creates a resolver around a token codec.
func NewSessionResolver(codec *auth.TokenCodec, logger *slog.Logger) *SessionResolver {
	return &SessionResolver{codec: codec, logger: logger}
}

// ResolveOptional returns the caller's principal if the request carries a
// valid token. A missing, expired or tampered token is not an error here.
// The principal is cached on the context for later middleware and handlers.
func (r *SessionResolver) ResolveOptional(c *gin.Context) (auth.Principal, bool) {
	if p, ok := GetPrincipal(c); ok {
		return p, true
	}

	token, err := c.Cookie(constants.AccessTokenCookieName)
	if err != nil || token == "" {
		return auth.Principal{}, false
	}

	principal, err := r.codec.Decode(token)
	if err != nil {
		r.logger.Debug("discarding session token", "reason", decodeFailureKind(err), "client_ip", c.ClientIP())
		return auth.Principal{}, false
	}

	c.Set(constants.ContextKeyPrincipal, principal)
	return principal, true
}

// ResolveRequired is ResolveOptional that fails with ErrUnauthenticated.
func (r *SessionResolver) ResolveRequired(c *gin.Context) (auth.Principal, error) {
	p, ok := r.ResolveOptional(c)
	if !ok {
		return auth.Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// Authenticate attaches the caller's principal, when there is one, to every request.
func (r *SessionResolver) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		r.ResolveOptional(c)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid session token.
func (r *SessionResolver) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := r.ResolveRequired(c); err != nil {
			apierrors.Unauthorized(c, "")
			return
		}
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role differs from role.
// It must run after RequireAuth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if p.Role != role {
			apierrors.Forbidden(c, roleDeniedMessage(role))
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the resolved principal from context
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func roleDeniedMessage(role models.Role) string {
	switch role {
	case models.RoleManager:
		return "Manager access required"
	case models.RoleReportee:
		return "Reportee access required"
	default:
		return "Access denied"
	}
}

func decodeFailureKind(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed"
	default:
		return "unknown"
	}
}
