package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownServiceToken rejects a tool-caller credential that matches no
// configured tool.
var ErrUnknownServiceToken = errors.New("unknown service token")

// ServiceTokenVerifier authenticates MCP tool callers (goal tracker,
// conflict checker, supporting documents) against bcrypt hashes of their
// shared-secret tokens. Only hashes are held in memory or config.
type ServiceTokenVerifier struct {
	// tool name -> bcrypt hash of its token
	hashes map[string]string
}

// NewServiceTokenVerifier creates a verifier from configured hashes
func NewServiceTokenVerifier(hashes map[string]string) *ServiceTokenVerifier {
	return &ServiceTokenVerifier{hashes: hashes}
}

// Verify returns the tool name the token belongs to
func (v *ServiceTokenVerifier) Verify(token string) (string, error) {
	for tool, hash := range v.hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil {
			return tool, nil
		}
	}
	return "", ErrUnknownServiceToken
}

// HashToken produces a bcrypt hash suitable for the verifier's config
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
