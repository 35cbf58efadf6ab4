// Package tenancy implements the Tenancy Resolver (spec §4.1): binding
// a verified identity and an active client to the request scope.
// Grounded on the teacher's internal/middleware/auth.go context-key and
// typed-accessor idiom, generalized from a single TeamID to the
// full (user, client) pair plus a request id.
package tenancy

import (
	"context"

	"github.com/google/uuid"

	"github.com/techappsUT/planer/internal/domain/identity"
)

type contextKey string

const (
	userKey      contextKey = "tenancy.user"
	clientIDKey  contextKey = "tenancy.client_id"
	requestIDKey contextKey = "tenancy.request_id"
)

func WithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFrom(ctx context.Context) (*identity.User, bool) {
	u, ok := ctx.Value(userKey).(*identity.User)
	return u, ok
}

func WithClientID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

func ClientIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(clientIDKey).(uuid.UUID)
	return id, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
