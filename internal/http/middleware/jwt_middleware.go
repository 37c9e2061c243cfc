package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/devinfinitee/AI-health-companion/internal/platform/auth"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

type ctxKey string

const CtxUser ctxKey = "user"

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireUser authenticates the bearer token and loads its user. The user,
// without password hash, is available to handlers through CurrentUser.
func RequireUser(tokens TokenVerifier, users UserFinder, out response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				out.Error(w, r, domain.Auth(domain.CodeUnauthenticated, "No authorization token provided"))
				return
			}
			if !strings.HasPrefix(authz, "Bearer ") {
				out.Error(w, r, domain.Auth(domain.CodeUnauthenticated, "Invalid authorization format. Use: Bearer <token>"))
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(authz, "Bearer "))
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				out.Error(w, r, domain.Auth(domain.CodeTokenExpired, "Token has expired. Please login again"))
				return
			case err != nil:
				out.Error(w, r, domain.Auth(domain.CodeInvalidToken, "Invalid token"))
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				out.Error(w, r, domain.Auth(domain.CodeUserNotFound, "User not found"))
				return
			}
			if err != nil {
				out.Error(w, r, domain.Internal("Authentication failed", err))
				return
			}

			ctx := context.WithValue(r.Context(), CtxUser, user.Public())
			ctx = context.WithValue(ctx, logger.UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentUser(r *http.Request) *domain.User {
	v, _ := r.Context().Value(CtxUser).(*domain.User)
	return v
}

// WithUser places u in ctx the way RequireUser does.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	ctx = context.WithValue(ctx, CtxUser, u)
	return context.WithValue(ctx, logger.UserIDKey, u.ID)
}
