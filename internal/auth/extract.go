package auth

import "strings"

// TokenKind selects which transport locations a token may arrive through.
type TokenKind int

const (
	// KindAccess tokens arrive via Authorization header or accessToken cookie.
	KindAccess TokenKind = iota
	// KindRefresh tokens arrive only via the refreshToken cookie.
	KindRefresh
)

// Cookie names used for token transport.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// ExtractToken locates a token by kind. For access tokens a non-empty
// bearer header takes precedence over the cookie. Returns "" when absent.
func ExtractToken(authHeader string, cookie func(name string) string, kind TokenKind) string {
	if kind == KindRefresh {
		return cookie(RefreshTokenCookie)
	}

	if token := bearerToken(authHeader); token != "" {
		return token
	}
	return cookie(AccessTokenCookie)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
