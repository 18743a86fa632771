// Package requestid assigns each request an ID for log correlation. An
// incoming X-Request-ID is honored so IDs survive proxies.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"bizdesk/pkg/requestcontext"
)

const Header = "X-Request-ID"

// Middleware stores the request ID in the context and echoes it on the
// response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
