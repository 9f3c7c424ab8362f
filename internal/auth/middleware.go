package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const (
	claimsKey        = "auth_claims"
	refreshClaimsKey = "auth_refresh_claims"
)

// Middleware guards protected routes: it authenticates tokens and exposes
// role checks for route composition.
type Middleware struct {
	codec         *TokenCodec
	refreshTokens repository.RefreshTokenRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(codec *TokenCodec, refreshTokens repository.RefreshTokenRepository) *Middleware {
	return &Middleware{codec: codec, refreshTokens: refreshTokens}
}

// Authenticate verifies the access token from the bearer header or the
// accessToken cookie and attaches the claims to the request.
func (m *Middleware) Authenticate(c *fiber.Ctx) error {
	token := ExtractToken(c.Get(fiber.HeaderAuthorization), cookieGetter(c), KindAccess)
	if token == "" {
		return apperrors.NewUnauthorized("missing access token")
	}

	claims, err := m.codec.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewUnauthorized("access token expired")
		}
		return apperrors.NewUnauthorized("invalid access token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// RequireRoles ensures the authenticated claims carry one of the allowed
// roles. Composed after Authenticate.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("not authenticated")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[claims.Role]; !exists {
			return apperrors.NewForbidden("you dont have enough permissions")
		}
		return c.Next()
	}
}

// ValidateRefreshToken verifies the refreshToken cookie and additionally
// requires the embedded record to still exist, so a rotated-away token is
// rejected even while its signature remains valid.
func (m *Middleware) ValidateRefreshToken(c *fiber.Ctx) error {
	claims, err := m.parseRefreshCookie(c)
	if err != nil {
		return err
	}

	recordID, err := claims.RefreshRecordID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid refresh token")
	}
	if _, err := m.refreshTokens.GetByID(c.Context(), recordID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("refresh token revoked")
		}
		return apperrors.ToDomainError(err)
	}

	c.Locals(refreshClaimsKey, claims)
	return c.Next()
}

// ParseRefreshToken verifies the refreshToken cookie signature only; logout
// stays idempotent for records already deleted.
func (m *Middleware) ParseRefreshToken(c *fiber.Ctx) error {
	claims, err := m.parseRefreshCookie(c)
	if err != nil {
		return err
	}
	c.Locals(refreshClaimsKey, claims)
	return c.Next()
}

func (m *Middleware) parseRefreshCookie(c *fiber.Ctx) (*Claims, error) {
	token := ExtractToken(c.Get(fiber.HeaderAuthorization), cookieGetter(c), KindRefresh)
	if token == "" {
		return nil, apperrors.NewUnauthorized("missing refresh token")
	}

	claims, err := m.codec.ParseRefreshToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("refresh token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	return claims, nil
}

func cookieGetter(c *fiber.Ctx) func(name string) string {
	return func(name string) string { return c.Cookies(name) }
}

// ClaimsFromContext retrieves access token claims attached by Authenticate.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok
}

// RefreshClaimsFromContext retrieves refresh token claims attached by the
// refresh token middlewares.
func RefreshClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(refreshClaimsKey).(*Claims)
	return claims, ok
}
