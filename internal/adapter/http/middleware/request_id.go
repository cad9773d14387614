package middleware

import (
	"net/http"

	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID attaches a request id to the context and echoes it back in the
// response. An id supplied by the client is kept.
func (h *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			generated, err := uuid.New()
			if err == nil {
				id = generated.String()
			}
		}

		if id != "" {
			w.Header().Set(requestIDHeader, id)
			r = r.WithContext(wrap.WithRequestID(r.Context(), id))
		}

		next.ServeHTTP(w, r)
	})
}
