package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Screens run in a local webview or dev server.
var defaultCORSOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// CORS returns middleware that applies the bridge's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", screenLeaseHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
