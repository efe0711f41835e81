// internal/app/system/authz/authz.go

// Package authz carries the authenticated actor through the request
// context and enforces role checks.
package authz

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
)

type ctxKey struct{}

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, a visibility.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFrom extracts the authenticated actor set by the authn middleware.
func ActorFrom(ctx context.Context) (visibility.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(visibility.Actor)
	return a, ok
}

// MustActor returns the actor or an authentication error when the route
// was somehow reached without the middleware.
func MustActor(ctx context.Context) (visibility.Actor, error) {
	a, ok := ActorFrom(ctx)
	if !ok {
		return visibility.Actor{}, apierr.Authentication("authentication required")
	}
	return a, nil
}

// Require returns an authorization error unless the actor holds one of
// the given roles.
func Require(a visibility.Actor, roles ...string) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return apierr.Authorization("insufficient role")
}

// RequireRoles is middleware that rejects requests whose actor holds
// none of the given roles. It assumes the authn middleware ran first.
func RequireRoles(log *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, err := MustActor(r.Context())
			if err == nil {
				err = Require(a, roles...)
			}
			if err != nil {
				httpjson.Fail(w, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
