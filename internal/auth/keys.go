package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// LoadPrivateKey parses an RSA private key from inline PEM data, falling
// back to a file path when no inline key is given. Returns nil without
// error when neither source is configured; token issuance then fails with
// ErrSigningKeyMissing.
func LoadPrivateKey(inlinePEM, file string) (*rsa.PrivateKey, error) {
	data := []byte(inlinePEM)
	if len(data) == 0 && file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read private key %s: %w", file, err)
		}
		data = content
	}
	if len(data) == 0 {
		return nil, nil
	}
	return ParsePrivateKeyPEM(data)
}

// ParsePrivateKeyPEM decodes a PKCS#1 or PKCS#8 encoded RSA private key.
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("private key: no PEM block found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key: not an RSA key")
	}
	return key, nil
}
