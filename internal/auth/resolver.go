// Package auth provides the credential-lookup interface SigV4 verification
// consumes (spec.md §6, §4.J): "a credential-lookup interface with one
// method: secret_for(access_key_id) → secret | AccessKeyNotFound". A static
// in-memory resolver seeded from Config stands in for STS, matching
// SPEC_FULL.md §5.L.
package auth

import "backend2/internal/apperr"

// StaticResolver resolves exactly one access-key-id/secret pair, the
// emulator's single built-in credential (SPEC_FULL.md §5.L).
type StaticResolver struct {
	accessKeyID string
	secretKey   string
}

// NewStaticResolver constructs a resolver for one credential.
func NewStaticResolver(accessKeyID, secretKey string) *StaticResolver {
	return &StaticResolver{accessKeyID: accessKeyID, secretKey: secretKey}
}

// SecretFor implements internal/sigv4.CredentialResolver.
func (r *StaticResolver) SecretFor(accessKeyID string) (string, error) {
	if accessKeyID == "" || accessKeyID != r.accessKeyID {
		return "", apperr.AccessKeyNotFound(accessKeyID)
	}
	return r.secretKey, nil
}

// AccessKeyID returns the one access key id this resolver accepts, so the
// HTTP layer and debug tooling can report it without duplicating config.
func (r *StaticResolver) AccessKeyID() string {
	return r.accessKeyID
}
