package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userIDContextKey contextKey = "userID"

var ErrNoUserInContext = errors.New("no authenticated user in request context")

// Authenticator verifies bearer tokens issued by the identity provider and
// injects the caller's user id into the request context. Tokens are HS256
// with the numeric user id in the "sub" claim.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext returns the authenticated user id placed by
// Authenticate, or ErrNoUserInContext for unauthenticated requests.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	id, ok := ctx.Value(userIDContextKey).(int)
	if !ok {
		return 0, ErrNoUserInContext
	}
	return id, nil
}

func userIDFromClaims(claims jwt.MapClaims) (int, error) {
	switch sub := claims["sub"].(type) {
	case float64:
		return int(sub), nil
	case string:
		var id int
		if _, err := fmt.Sscanf(sub, "%d", &id); err != nil {
			return 0, fmt.Errorf("invalid sub claim: %w", err)
		}
		return id, nil
	default:
		return 0, errors.New("missing sub claim")
	}
}
