// Package middleware содержит HTTP middleware для сервиса стирки ковров.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/carpetwash-system/internal/model"
	"github.com/mmeshcher/carpetwash-system/internal/service"
)

type contextKey string

const userKey contextKey = "user"

// SessionCookieName задаёт имя cookie с токеном сессии.
const SessionCookieName = "session_token"

// UserResolver разрешает токен сессии во владельца учётной записи.
type UserResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware выполняет проверку аутентификации по токену сессии из
// cookie или заголовка Authorization.
type AuthMiddleware struct {
	resolver UserResolver
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware.
func NewAuthMiddleware(resolver UserResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// TokenFromRequest извлекает токен сессии из запроса: сначала из cookie,
// затем из заголовка Authorization с схемой Bearer.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

// Middleware проверяет токен сессии и добавляет пользователя в контекст
// запроса. Просроченные и незнакомые токены отклоняются с кодом 401,
// заблокированные учётные записи — с кодом 403.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}

		user, err := a.resolver.ResolveSession(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrAccountBanned) {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext извлекает пользователя из контекста запроса.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

// SetSessionCookie устанавливает cookie с токеном сессии.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// ClearSessionCookie удаляет cookie с токеном сессии.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
