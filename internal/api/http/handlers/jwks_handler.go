package handlers

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"math/big"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/auth"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// JWKSHandler serves the access-token public key so resource servers can
// verify tokens without sharing the signing key.
type JWKSHandler struct {
	codec *auth.TokenCodec
}

// NewJWKSHandler constructs handler.
func NewJWKSHandler(codec *auth.TokenCodec) *JWKSHandler {
	return &JWKSHandler{codec: codec}
}

type jwk struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet handles GET /.well-known/jwks.json.
func (h *JWKSHandler) KeySet(c *fiber.Ctx) error {
	publicKey := h.codec.PublicKey()
	if publicKey == nil {
		return apperrors.NewInternalError(auth.ErrSigningKeyMissing)
	}

	return c.JSON(fiber.Map{"keys": []jwk{publicKeyToJWK(publicKey)}})
}

func publicKeyToJWK(key *rsa.PublicKey) jwk {
	modulus := key.N.Bytes()
	digest := sha256.Sum256(modulus)
	return jwk{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		Kid: base64.RawURLEncoding.EncodeToString(digest[:8]),
		N:   base64.RawURLEncoding.EncodeToString(modulus),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
}
