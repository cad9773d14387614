package middleware

import (
	"fmt"
	"net/http"
)

func (h *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("%s", p))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
