package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/ardanlabs/waveportal/foundation/web"
)

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// An origin of "*" allows any origin, otherwise the request origin must be
// in the comma separated list.
func Cors(origins string) web.Middleware {
	allowed := strings.Split(origins, ",")

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			origin := r.Header.Get("Origin")

			for _, a := range allowed {
				a = strings.TrimSpace(a)
				if a == "*" || a == origin {

					// Set the CORS headers to the response.
					w.Header().Set("Access-Control-Allow-Origin", a)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")
					w.Header().Set("Access-Control-Max-Age", "86400")
					break
				}
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
