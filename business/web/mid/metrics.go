package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ballot/business/sys/metrics"
	"github.com/ardanlabs/ballot/foundation/web"
)

// Metrics counts every request by the status code it completed with.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)

			v, verr := web.GetValues(ctx)
			if verr == nil {
				metrics.ObserveRequest(v.StatusCode)
			}

			return err
		}

		return h
	}

	return m
}
