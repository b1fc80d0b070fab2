package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/jwt"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	UserEmailKey contextKey = "user_email"
	TokenIDKey   contextKey = "token_id"
)

var knownRoles = map[string]bool{
	entity.RoleAdmin:    true,
	entity.RoleDoctor:   true,
	entity.RolePatient:  true,
	entity.RoleHospital: true,
}

// AuthMiddleware trusts access tokens minted by the auth service and turns
// their claims into a Principal.
type AuthMiddleware struct {
	jwtService *jwt.JWTService
}

func NewAuthMiddleware(jwtService *jwt.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		if claims.UserID == uuid.Nil || !knownRoles[claims.Role] {
			response.Unauthorized(w, "Invalid token claims")
			return
		}

		ctx := WithPrincipal(r.Context(), entity.Principal{UserID: claims.UserID, Role: claims.Role})
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithPrincipal stores the authenticated caller in ctx.
func WithPrincipal(ctx context.Context, p entity.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext extracts the authenticated caller from context
func PrincipalFromContext(ctx context.Context) (entity.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(entity.Principal)
	return p, ok
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}
