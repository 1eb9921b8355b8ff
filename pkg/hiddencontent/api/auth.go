package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// NewJWTAuth returns the HS256 verifier for admin bearer tokens
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// IssueToken signs a bearer token for user, valid for ttl.
func IssueToken(auth *jwtauth.JWTAuth, user hiddencontent.User, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
	}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}
	_, token, err := auth.Encode(claims)
	return token, err
}

// UserFromContext returns the user attached by the authenticator.
func UserFromContext(ctx context.Context) (hiddencontent.User, bool) {
	user, ok := ctx.Value(userKey).(hiddencontent.User)
	return user, ok
}

// authenticator maps verified JWT claims to a hiddencontent.User. It runs
// after jwtauth.Verifier.
func authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		user, ok := userFromClaims(claims)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid token claims")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromClaims(claims map[string]interface{}) (hiddencontent.User, bool) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return hiddencontent.User{}, false
	}

	roleName, _ := claims["role"].(string)
	role := hiddencontent.Role(roleName)
	if !role.IsValid() {
		return hiddencontent.User{}, false
	}

	return hiddencontent.User{ID: id, Role: role}, true
}

// canUpload reports whether role may add files to the media library.
func canUpload(role hiddencontent.Role) bool {
	switch role {
	case hiddencontent.RoleAdministrator, hiddencontent.RoleEditor, hiddencontent.RoleAuthor:
		return true
	}
	return false
}
