package middlewares

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows credentialed requests from origins. Cookies carry the tokens,
// so a wildcard origin is never used.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
