package auth

import (
	"crypto/subtle"

	"pingpong-tracker/internal/config"
)

// CredentialVerifier checks a plaintext secret for an identity. The shipped
// implementation is a shared placeholder secret, not a security model; real
// deployments must supply their own.
type CredentialVerifier interface {
	Verify(identity, secret string) bool
}

type SharedSecretVerifier struct {
	secret string
}

func NewSharedSecretVerifier(secret string) *SharedSecretVerifier {
	return &SharedSecretVerifier{secret: secret}
}

func (v *SharedSecretVerifier) Verify(identity, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(v.secret), []byte(secret)) == 1
}

func NewVerifier(cfg *config.Config) CredentialVerifier {
	return NewSharedSecretVerifier(cfg.TeamSecret)
}
