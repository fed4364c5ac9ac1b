// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// PrincipalResolver turns a verified user id into the principal access
// decisions are made for.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (access.Principal, error)
}

type AccessTokenClaims struct {
	UserID       string
	TokenVersion int
}

// Authenticator rejects requests without a valid bearer token and attaches
// the resolved principal to the request context.
func Authenticator(
	verifier TokenVerifier,
	resolver PrincipalResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				core.JSONError(w, core.UnauthorizedError("missing authorization token"))
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			principal, err := resolver.Resolve(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.TokenInvalidError())
					return
				}
				core.InternalServerError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth attaches a principal when a valid token is present and
// otherwise lets the request through as anonymous.
func OptionalAuth(
	verifier TokenVerifier,
	resolver PrincipalResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.Resolve(r.Context(), claims.UserID)
			if err != nil {
				slog.Warn("principal resolution failed, continuing anonymously",
					"user_id", claims.UserID,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), principal)))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := access.FromContext(r.Context())

		if !principal.Authenticated {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}

		if !principal.Admin {
			core.JSONError(w, core.ForbiddenError("insufficient permissions"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) string {
	return access.FromContext(ctx).UserID
}
