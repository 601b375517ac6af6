package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marmitar/MC426-backend/pkg/logger"
)

// RequestID assigns a UUID to every request (reusing an inbound
// X-Request-Id header when present), attaches it to the request
// context via pkg/logger.WithRequestID, and echoes it back on the
// response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
