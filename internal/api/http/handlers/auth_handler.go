package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthHandler exposes the session endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	cookieDomain string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieDomain string) *AuthHandler {
	return &AuthHandler{auth: authService, cookieDomain: cookieDomain}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(apperrors.FieldError{Path: "body", Message: "invalid payload"})
	}
	req.Normalize()
	if fields := req.Validate(); len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}

	session, err := h.auth.Register(c.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session)
	return c.Status(http.StatusCreated).JSON(dto.SessionResponse{ID: session.UserID})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(apperrors.FieldError{Path: "body", Message: "invalid payload"})
	}
	req.Normalize()
	if fields := req.Validate(); len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}

	session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session)
	return c.JSON(dto.SessionResponse{ID: session.UserID})
}

// Self handles GET /auth/self.
func (h *AuthHandler) Self(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	user, err := h.auth.Self(c.Context(), claims)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	claims, ok := auth.RefreshClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing refresh token")
	}

	session, err := h.auth.Refresh(c.Context(), claims)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, session)
	return c.JSON(dto.SessionResponse{ID: session.UserID})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := auth.RefreshClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing refresh token")
	}

	if err := h.auth.Logout(c.Context(), claims); err != nil {
		return err
	}

	h.clearSessionCookies(c)
	return c.JSON(fiber.Map{})
}

func (h *AuthHandler) setSessionCookies(c *fiber.Ctx, session *service.Session) {
	c.Cookie(h.sessionCookie(auth.AccessTokenCookie, session.AccessToken, session.AccessExpiresAt))
	c.Cookie(h.sessionCookie(auth.RefreshTokenCookie, session.RefreshToken, session.RefreshExpiresAt))
}

func (h *AuthHandler) clearSessionCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(h.sessionCookie(auth.AccessTokenCookie, "", expired))
	c.Cookie(h.sessionCookie(auth.RefreshTokenCookie, "", expired))
}

func (h *AuthHandler) sessionCookie(name, value string, expiresAt time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Domain:   h.cookieDomain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
