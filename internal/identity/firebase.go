package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// secureTokenIssuer is the OIDC issuer for Firebase ID tokens of a project.
const secureTokenIssuer = "https://securetoken.google.com/"

// FirebaseVerifier verifies Firebase ID tokens through OIDC discovery against
// the project's secure-token issuer.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewFirebaseVerifier discovers the project's issuer keys. The audience of a
// Firebase ID token is the project ID itself.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	provider, err := oidc.NewProvider(ctx, secureTokenIssuer+projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to discover identity provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: projectID})
	return &FirebaseVerifier{verifier: verifier}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	var c claims
	if err := idToken.Claims(&c); err != nil {
		return nil, err
	}
	return c.toIdentity(), nil
}
