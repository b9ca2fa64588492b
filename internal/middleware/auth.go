package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"camphub-be/internal/domain"
	apperrors "camphub-be/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Claims carried by the identity collaborator's tokens.
type Claims struct {
	Email       string `json:"email"`
	CampID      string `json:"camp_id,omitempty"`
	AccountType string `json:"account_type"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens and injects the authenticated
// principal into the request context.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

func NewAuthMiddleware(jwtSecret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(jwtSecret), logger: logger}
}

// RequireAuth rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeAuthError(w, "missing authorization token")
			return
		}

		principal, err := m.validateToken(token)
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			writeAuthError(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) validateToken(tokenString string) (*domain.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	accountType := claims.AccountType
	if accountType == "" {
		accountType = "personal"
	}

	return &domain.Principal{
		ID:          claims.Subject,
		CampID:      claims.CampID,
		AccountType: accountType,
		Email:       claims.Email,
	}, nil
}

// GetPrincipal returns the authenticated principal, or nil on routes that
// skipped RequireAuth.
func GetPrincipal(ctx context.Context) *domain.Principal {
	principal, _ := ctx.Value(principalContextKey).(*domain.Principal)
	return principal
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	var resp apperrors.ErrorResponse
	resp.Error.Type = apperrors.ErrorTypeAuthentication
	resp.Error.Message = message
	resp.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	_ = json.NewEncoder(w).Encode(resp)
}
