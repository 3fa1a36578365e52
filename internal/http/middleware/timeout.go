package middleware

import (
	"net/http"
	"time"

	"github.com/pribylovaa/go-forum-store/internal/pkg/deadline"
)

// Timeout - бюджет на запрос (http.timeout): каждая мутация синхронно переписывает
// документ, и медленный бэкенд не должен держать запрос дольше budget.
func Timeout(budget time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if budget <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := deadline.Ensure(r.Context(), budget)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
