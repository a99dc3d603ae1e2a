// Package identity verifies externally issued credentials and maps them to a
// local identity. The production verifier checks Firebase ID tokens, which are
// standard OIDC tokens issued by the secure-token service for the project.
package identity

import "context"

// Identity is the claim set derived from a verified credential.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verifier checks an opaque externally issued credential.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// claims is the subset of token claims the service consumes.
type claims struct {
	Subject string `json:"sub"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// toIdentity normalizes raw claims; display name falls back to the email.
func (c claims) toIdentity() *Identity {
	uid := c.Subject
	if uid == "" {
		uid = c.UserID
	}
	name := c.Name
	if name == "" {
		name = c.Email
	}
	return &Identity{UID: uid, Email: c.Email, Name: name}
}
