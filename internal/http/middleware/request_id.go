package middleware

import (
	"net/http"

	"github.com/pribylovaa/go-forum-store/internal/pkg/requestid"
)

// RequestID берёт id из X-Request-Id (или выдаёт новый), кладёт его в контекст
// и возвращает клиенту в том же заголовке. Стоит до Logging и Recover.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestid.Resolve(r.Header.Get(requestid.Header))
			// Recover стоит снаружи и видит только заголовки запроса.
			r.Header.Set(requestid.Header, id)

			w.Header().Set(requestid.Header, id)
			next.ServeHTTP(w, r.WithContext(requestid.Into(r.Context(), id)))
		})
	}
}
