package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sitecrew/sitecrew/internal/authz"
	"github.com/sitecrew/sitecrew/internal/platform/httpx"
)

type contextKey struct{}

var claimsKey contextKey

// ContextWithClaims stores session claims on the context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the session claims, or nil outside an
// authenticated request.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// RequireAuth validates the bearer token and stores its claims on the
// request context. Requests without a valid token receive 401.
func RequireAuth(codec *TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
				return
			}
			claims, err := codec.Parse(token)
			if err != nil {
				httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireMinRank gates a route subtree on a minimum role rank. It must
// run after RequireAuth. Unknown role names in the claims fail closed.
func RequireMinRank(hierarchy *authz.Hierarchy, min authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.Message(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
				return
			}
			role, err := authz.ParseRole(claims.Role)
			if err != nil {
				httpx.Message(w, http.StatusForbidden, httpx.MsgForbidden)
				return
			}
			actorRank, err := hierarchy.Rank(role)
			if err != nil {
				httpx.Message(w, http.StatusForbidden, httpx.MsgForbidden)
				return
			}
			minRank, err := hierarchy.Rank(min)
			if err != nil {
				httpx.Message(w, http.StatusForbidden, httpx.MsgForbidden)
				return
			}
			if actorRank < minRank {
				httpx.Message(w, http.StatusForbidden, httpx.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
