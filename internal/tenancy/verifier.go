package tenancy

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/techappsUT/planer/internal/apperr"
)

// Identity is the verified subject claim set the resolver needs.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier validates a bearer token and returns the verified identity.
type Verifier interface {
	Verify(ctx context.Context, bearerToken string) (*Identity, error)
}

// OIDCVerifier validates bearer tokens against an OIDC issuer's JWKS
// (spec §2 expansion: Identity Verifier adapter).
type OIDCVerifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	audience string
}

func NewOIDCVerifier(ctx context.Context, issuer, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("tenancy: discover oidc provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: audience})
	return &OIDCVerifier{provider: provider, verifier: verifier, audience: audience}, nil
}

// UnconfiguredVerifier rejects every request. It backs deployments that
// start with AUTH_ISSUER unset (config.go warns but does not fail
// startup over it) so the resolver never dereferences a nil Verifier.
type UnconfiguredVerifier struct{}

func (UnconfiguredVerifier) Verify(ctx context.Context, bearerToken string) (*Identity, error) {
	return nil, apperr.Unauthorized("AUTH_ISSUER is not configured")
}

func (v *OIDCVerifier) Verify(ctx context.Context, bearerToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, bearerToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired credential")
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperr.Unauthorized("unreadable token claims")
	}
	if claims.Subject == "" {
		return nil, apperr.Unauthorized("token missing subject claim")
	}

	return &Identity{Subject: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}
