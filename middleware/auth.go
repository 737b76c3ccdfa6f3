package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lexivo/pkg/logger"
	"lexivo/pkg/response"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserIDFromContext returns the authenticated Supabase user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// WithUserID stores a user id the way Auth does. Used by tests and the websocket entrypoint.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// Auth verifies Supabase access tokens (HS256, signed with the project JWT
// secret) from the Authorization header and puts the `sub` claim into the
// request context.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, false)
}

// AuthWS is Auth for the websocket upgrade. It also accepts the `token` query
// parameter because browser WebSocket APIs cannot set headers.
func AuthWS(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, true)
}

func authenticate(jwtSecret string, allowQuery bool) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r, allowQuery)
			if tokenString == "" {
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized: No token provided")
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if len(secret) == 0 {
					return nil, fmt.Errorf("server is not configured to validate JWTs")
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				logger.Sugar.Debugf("Invalid token: %v", err)
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized: Invalid or expired token")
				return
			}

			userID, err := claims.GetSubject()
			if err != nil || userID == "" {
				response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized: User ID (sub) claim is missing or invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request, allowQuery bool) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if !allowQuery {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// RequireUser returns the authenticated user id, writing a 401 when there is none.
func RequireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
	}
	return userID, ok
}
