package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors allows any origin. Session tokens travel in the Authorization header,
// so no cookies are involved.
func Cors() Middleware {
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	return cors.New(options).Handler
}
