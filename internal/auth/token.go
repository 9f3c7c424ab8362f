package auth

import (
	"crypto/rsa"
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Issuer is the iss claim stamped on every token this service signs.
const Issuer = "auth-service"

var (
	ErrSigningKeyMissing = errors.New("access token signing key not configured")
	ErrSigningFailure    = errors.New("token signing failed")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidSignature  = errors.New("token signature invalid")
	ErrTokenMalformed    = errors.New("token malformed")
)

// Claims describes the JWT payload for both token kinds. Refresh tokens
// additionally carry the refresh record id in the registered ID (jti) claim.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// RefreshRecordID returns the refresh record id carried in the jti claim.
func (c *Claims) RefreshRecordID() (int64, error) {
	return strconv.ParseInt(c.ID, 10, 64)
}

// TokenCodec signs and verifies the two token kinds. Access tokens are
// RS256-signed so resource servers verify them with only the public key;
// refresh tokens are HS256-signed and only ever verified by this service.
// Key material is loaded once at startup and read-only afterwards.
type TokenCodec struct {
	privateKey    *rsa.PrivateKey
	publicKey     *rsa.PublicKey
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenCodec builds a codec from startup key material.
func NewTokenCodec(privateKey *rsa.PrivateKey, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	codec := &TokenCodec{
		privateKey:    privateKey,
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
	if privateKey != nil {
		codec.publicKey = &privateKey.PublicKey
	}
	return codec
}

// PublicKey exposes the access token verification key for JWKS publication.
func (tc *TokenCodec) PublicKey() *rsa.PublicKey {
	return tc.publicKey
}

// GenerateAccessToken signs a short-lived RS256 token for the user.
func (tc *TokenCodec) GenerateAccessToken(userID int64, role domain.Role) (string, time.Time, error) {
	if tc.privateKey == nil {
		return "", time.Time{}, ErrSigningKeyMissing
	}

	now := time.Now()
	expiresAt := now.Add(tc.accessTTL)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(tc.privateKey)
	if err != nil {
		return "", time.Time{}, errors.Join(ErrSigningFailure, err)
	}
	return signed, expiresAt, nil
}

// GenerateRefreshToken signs a long-lived HS256 token embedding the refresh
// record id as jti so the session can be revoked per record.
func (tc *TokenCodec) GenerateRefreshToken(userID int64, role domain.Role, recordID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tc.refreshTTL)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    Issuer,
			ID:        strconv.FormatInt(recordID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.refreshSecret)
	if err != nil {
		return "", time.Time{}, errors.Join(ErrSigningFailure, err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies an RS256 access token and returns its claims.
func (tc *TokenCodec) ParseAccessToken(tokenStr string) (*Claims, error) {
	if tc.publicKey == nil {
		return nil, ErrSigningKeyMissing
	}
	return tc.parse(tokenStr, jwt.SigningMethodRS256.Alg(), func(*jwt.Token) (interface{}, error) {
		return tc.publicKey, nil
	})
}

// ParseRefreshToken verifies an HS256 refresh token and returns its claims.
func (tc *TokenCodec) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return tc.parse(tokenStr, jwt.SigningMethodHS256.Alg(), func(*jwt.Token) (interface{}, error) {
		return tc.refreshSecret, nil
	})
}

func (tc *TokenCodec) parse(tokenStr, alg string, keyFunc jwt.Keyfunc) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, keyFunc,
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return errors.Join(ErrTokenMalformed, err)
	}
}
