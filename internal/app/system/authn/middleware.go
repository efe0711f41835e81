// internal/app/system/authn/middleware.go

package authn

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// UserSource looks up the user a verified token belongs to. Tokens name
// a user, but role and group membership are always read fresh so revoked
// access takes effect immediately.
type UserSource interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Middleware authenticates requests via the Authorization header and
// installs the resolved actor in the request context.
func Middleware(signer *Signer, users UserSource, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolve(r, signer, users)
			if err != nil {
				httpjson.Fail(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(authz.WithActor(r.Context(), actor)))
		})
	}
}

func resolve(r *http.Request, signer *Signer, users UserSource) (visibility.Actor, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return visibility.Actor{}, apierr.Authentication("missing bearer token")
	}

	id, err := signer.Parse(strings.TrimSpace(token))
	if err != nil {
		return visibility.Actor{}, err
	}

	u, err := users.FindByID(r.Context(), id)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			return visibility.Actor{}, apierr.Authentication("account no longer exists")
		}
		return visibility.Actor{}, err
	}

	return visibility.Actor{ID: u.ID, Role: u.Role, GroupIDs: u.Groups}, nil
}
