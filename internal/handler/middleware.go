package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mymoney-app/mymoney-go/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// JWTAuthMiddleware validates Bearer tokens issued by the identity provider
// and injects the subject into the request context. When the route carries a
// {userId} parameter, the token subject must match it: users only ever see
// their own data.
func JWTAuthMiddleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handleServiceError(w, &domain.ErrUnauthorized{Message: "missing authorization token"}, logger)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				handleServiceError(w, &domain.ErrUnauthorized{Message: "invalid token format"}, logger)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Debug("auth: token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				handleServiceError(w, &domain.ErrUnauthorized{Message: "invalid or expired token"}, logger)
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				handleServiceError(w, &domain.ErrUnauthorized{Message: "token has no subject"}, logger)
				return
			}

			if pathUser := chi.URLParam(r, "userId"); pathUser != "" && pathUser != sub {
				logger.Warn("auth: subject mismatch",
					zap.String("path", r.URL.Path),
					zap.String("subject", sub),
				)
				handleServiceError(w, &domain.ErrUnauthorized{Message: "token subject does not match user"}, logger)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// requestUserID resolves the acting user: the authenticated token subject
// when present, otherwise the path parameter (auth disabled in config).
func requestUserID(r *http.Request) string {
	if id := UserIDFromContext(r.Context()); id != "" {
		return id
	}
	return chi.URLParam(r, "userId")
}
