package tenancy

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/apperr"
	"github.com/techappsUT/planer/internal/domain/identity"
	"github.com/techappsUT/planer/internal/store"
)

// RouteOptions is the per-route metadata the resolver consults (spec
// §4.1 inputs), generalized from the teacher's separate public/protected
// router groups into an explicit flag struct so a route can opt out of
// tenancy without opting out of authentication.
type RouteOptions struct {
	IsPublic             bool
	SkipClientValidation bool
}

// Resolver implements spec §4.1's resolution algorithm.
type Resolver struct {
	verifier Verifier
	tenancy  store.TenancyStore
}

func NewResolver(verifier Verifier, tenancyStore store.TenancyStore) *Resolver {
	return &Resolver{verifier: verifier, tenancy: tenancyStore}
}

// Resolve runs steps 2-6 of spec §4.1 for an already-authenticated
// subject. Callers that determine IsPublic should never call this.
func (r *Resolver) Resolve(ctx context.Context, bearerToken string, opts RouteOptions, clientHint *uuid.UUID) (context.Context, error) {
	ident, err := r.verifier.Verify(ctx, bearerToken)
	if err != nil {
		return ctx, err
	}

	user, err := r.findOrProvisionUser(ctx, ident)
	if err != nil {
		return ctx, err
	}
	ctx = WithUser(ctx, user)

	if opts.SkipClientValidation {
		return ctx, nil
	}

	if clientHint != nil {
		client, err := r.tenancy.FindClientByID(ctx, *clientHint)
		if err != nil || client.UserID() != user.ID() {
			return ctx, apperr.Forbidden("client hint does not belong to the caller")
		}
		return WithClientID(ctx, client.ID()), nil
	}

	client, err := r.tenancy.EarliestClientForUser(ctx, user.ID())
	if err != nil {
		return ctx, apperr.BadRequest("caller has no client")
	}
	return WithClientID(ctx, client.ID()), nil
}

func (r *Resolver) findOrProvisionUser(ctx context.Context, ident *Identity) (*identity.User, error) {
	user, err := r.tenancy.FindUserByExternalSubject(ctx, ident.Subject)
	if err == nil {
		return user, nil
	}
	user, _, provisionErr := r.tenancy.ProvisionUser(ctx, ident.Subject, ident.Email, ident.Name)
	if provisionErr != nil {
		return nil, apperr.Internal(provisionErr)
	}
	return user, nil
}

// Middleware adapts Resolve into chi-compatible HTTP middleware given a
// route table lookup function.
func Middleware(resolver *Resolver, routeOptions func(*http.Request) RouteOptions, clientHintHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			opts := routeOptions(req)
			if opts.IsPublic {
				next.ServeHTTP(w, req)
				return
			}

			token, ok := bearerToken(req)
			if !ok {
				writeErr(w, apperr.Unauthorized("missing bearer credential"))
				return
			}

			var hint *uuid.UUID
			if raw := req.Header.Get(clientHintHeader); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					writeErr(w, apperr.Forbidden("malformed client hint"))
					return
				}
				hint = &id
			}

			ctx, err := resolver.Resolve(req.Context(), token, opts, hint)
			if err != nil {
				writeErr(w, err)
				return
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func bearerToken(req *http.Request) (string, bool) {
	header := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimPrefix(header, prefix), true
}

func writeErr(w http.ResponseWriter, err error) {
	appErr := apperr.As(err)
	http.Error(w, appErr.Message, appErr.Kind.HTTPStatus())
}
