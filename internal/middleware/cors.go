package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"land-backend/internal/config"
)

// NewCORS builds the CORS handler from server config. Credentials are only
// allowed for an explicit origin list; browsers reject them with "*".
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.Server.CorsAllowedOrigins
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           300,
	})
	return c.Handler
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
