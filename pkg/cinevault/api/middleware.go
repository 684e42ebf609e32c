package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
)

type actorKey struct{}

// ActorAuth resolves the acting account for each request. With a JWT secret
// configured, requests must carry a bearer token whose "sub" claim names the
// account. Without one (development only), the X-Actor header is trusted.
type ActorAuth struct {
	tokenAuth *jwtauth.JWTAuth
}

// NewActorAuth creates the actor resolver. An empty secret disables token
// verification.
func NewActorAuth(secret string) *ActorAuth {
	a := &ActorAuth{}
	if secret != "" {
		a.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)
	}
	return a
}

// TokenAuth exposes the underlying JWT authority, e.g. for issuing tokens in
// tests. Nil when verification is disabled.
func (a *ActorAuth) TokenAuth() *jwtauth.JWTAuth {
	return a.tokenAuth
}

// Middleware returns the chain that resolves the actor into the request
// context.
func (a *ActorAuth) Middleware() []func(http.Handler) http.Handler {
	if a.tokenAuth == nil {
		return []func(http.Handler) http.Handler{a.headerActor}
	}
	return []func(http.Handler) http.Handler{
		jwtauth.Verifier(a.tokenAuth),
		a.tokenActor,
	}
}

func (a *ActorAuth) headerActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get("X-Actor"); actor != "" {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, actor))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *ActorAuth) tokenActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, sub))
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the acting account resolved by ActorAuth, or the
// empty string when the request carried no identity.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
