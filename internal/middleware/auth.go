package middleware

import (
	"net/http"
	"strings"

	"internhub/internal/contextutils"
	"internhub/internal/response"
	"internhub/internal/services"
)

// Authenticator guards routes behind bearer-token authentication
type Authenticator struct {
	auth    services.AuthService
	builder *response.Builder
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(auth services.AuthService, builder *response.Builder) *Authenticator {
	return &Authenticator{auth: auth, builder: builder}
}

// Require rejects requests without a valid bearer token and puts the
// verified principal on the context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.verify(r)
		if err != nil {
			a.builder.WriteError(w, r, err)
			return
		}

		ctx := contextutils.WithPrincipal(r.Context(), claims.PrincipalID, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole additionally restricts a route to one principal kind
func (a *Authenticator) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if contextutils.GetRole(r.Context()) != role {
				a.builder.WriteError(w, r, services.NewForbiddenError("this action is not available for your account type"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// Optional attaches the principal when a valid token is present but lets
// anonymous requests through. Used by public routes whose behavior varies
// slightly for signed-in callers.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := a.verify(r); err == nil {
			ctx := contextutils.WithPrincipal(r.Context(), claims.PrincipalID, claims.Role)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) verify(r *http.Request) (*services.TokenClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, services.NewUnauthorizedError("missing authorization header")
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, services.NewUnauthorizedError("malformed authorization header")
	}

	return a.auth.VerifyToken(token)
}
