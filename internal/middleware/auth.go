// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/core"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	ClaimsKey    contextKey = "jwt_claims"
	userSinkKey  contextKey = "user_sink"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*access.Claims, error)
}

// PrincipalResolver loads the user named by a token. It must return an
// error wrapping core.ErrUserNotFound when the user no longer exists.
type PrincipalResolver interface {
	ResolvePrincipal(
		ctx context.Context,
		userID string,
	) (*access.Principal, error)
}

// Authenticator is the "is authenticated" stage of the access gate: a
// well formed, correctly signed, unexpired bearer token whose user still
// exists. The principal carries the stored role, not the token's.
func Authenticator(
	verifier TokenVerifier,
	resolver PrincipalResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), claims.UserID)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			if sink, ok := r.Context().Value(userSinkKey).(*string); ok {
				*sink = principal.UserID
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, PrincipalKey, principal)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is the "role permitted" stage of the access gate.
func RequireRole(allowed access.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := access.Authorize(GetPrincipal(r.Context()), allowed); err != nil {
				if errors.Is(err, core.ErrUnauthorized) {
					core.JSONError(
						w,
						core.UnauthorizedError("authentication required"),
					)
					return
				}
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(access.AdminOnly)(next)
}

func RequireAuthor(next http.Handler) http.Handler {
	return RequireRole(access.Authors)(next)
}

// ExtractToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or not a bearer credential.
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
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrUserNotFound):
		core.JSONError(w, core.UserNotFoundError())
	case errors.Is(err, core.ErrTokenMalformed),
		errors.Is(err, core.ErrTokenSignature):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}

func GetPrincipal(ctx context.Context) *access.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*access.Principal); ok {
		return p
	}
	return nil
}

func GetClaims(ctx context.Context) *access.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*access.Claims); ok {
		return claims
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

func GetUserRole(ctx context.Context) access.Role {
	if p := GetPrincipal(ctx); p != nil {
		return p.Role
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetPrincipal(ctx) != nil
}

func IsAdmin(ctx context.Context) bool {
	return GetPrincipal(ctx).IsAdmin()
}

func withUserSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, userSinkKey, sink)
}

// WithPrincipal stores p in ctx the way Authenticator does.
func WithPrincipal(ctx context.Context, p *access.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
