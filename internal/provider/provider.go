package provider

import "context"

// Identity is the profile a social provider asserts for a verified token.
type Identity struct {
	Email string
	Name  string
}

// OAuthProvider verifies an access or ID token with a social identity
// provider and returns the profile it belongs to.
type OAuthProvider interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}
