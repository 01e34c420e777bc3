package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/taskflow-api/internal/auth"
	"github.com/BuzzLyutic/taskflow-api/pkg/respond"
)

type ctxKey int

const userIDKey ctxKey = iota

// Authenticate пропускает дальше только запросы с валидным bearer-токеном
// и кладет id владельца в контекст запроса
func Authenticate(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "Please authenticate")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Please authenticate")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID возвращает id аутентифицированного пользователя из контекста
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
