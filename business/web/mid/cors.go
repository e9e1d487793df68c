package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ballot/foundation/web"
	"github.com/rs/cors"
)

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
func Cors(origins ...string) web.Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
	})

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			c.HandlerFunc(w, r)

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
