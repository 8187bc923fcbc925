package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/domain/user"
)

// actorFromRequest resolves the authenticated Actor from the verified
// JWT claims on the request context.
func actorFromRequest(r *http.Request) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.Actor{}, user.ErrInvalidToken
	}
	return user.ActorFromClaims(claims)
}
