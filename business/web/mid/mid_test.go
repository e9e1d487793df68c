package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/ballot/business/web/errs"
	"github.com/ardanlabs/ballot/business/web/mid"
	"github.com/ardanlabs/ballot/foundation/validate"
	"github.com/ardanlabs/ballot/foundation/web"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newApp() *web.App {
	log := zap.NewNop().Sugar()

	app := web.NewApp(
		make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Metrics(),
		mid.Errors(log),
		mid.Panics(),
	)

	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrustedf(http.StatusConflict, "election %s is not ongoing", "e1")
	})
	app.Handle(http.MethodGet, "v1", "/fields", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return validate.NewFieldsError("title", errors.New("title is a required field"))
	})
	app.Handle(http.MethodGet, "v1", "/internal", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("disk on fire")
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})
	app.Handle(http.MethodGet, "v1", "/cors", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}, mid.Cors("http://ballot.test"))

	return app
}

func Test_Errors(t *testing.T) {
	app := newApp()

	tt := []struct {
		name   string
		path   string
		status int
		msg    string
		fields map[string]string
	}{
		{"trusted", "/v1/trusted", http.StatusConflict, "election e1 is not ongoing", nil},
		{"fields", "/v1/fields", http.StatusBadRequest, "data validation error", map[string]string{"title": "title is a required field"}},
		{"internal", "/v1/internal", http.StatusInternalServerError, "Internal Server Error", nil},
		{"panic", "/v1/panic", http.StatusInternalServerError, "Internal Server Error", nil},
	}

	t.Log("Given the need to respond to handler errors in a uniform way.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
				{
					r := httptest.NewRequest(http.MethodGet, tst.path, nil)
					w := httptest.NewRecorder()
					app.ServeHTTP(w, r)

					require.Equal(t, tst.status, w.Code)

					var resp errs.Response
					require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
					require.Equal(t, tst.msg, resp.Error)
					require.Equal(t, tst.fields, resp.Fields)
					require.NotEmpty(t, resp.TraceID)
					t.Logf("\t%s\tTest %d:\tShould get the expected response.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Cors(t *testing.T) {
	app := newApp()

	t.Log("Given the need to allow cross origin requests.")
	{
		r := httptest.NewRequest(http.MethodGet, "/v1/cors", nil)
		r.Header.Set("Origin", "http://ballot.test")
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "http://ballot.test", w.Header().Get("Access-Control-Allow-Origin"))
		t.Logf("\t%s\tShould allow a configured origin.", success)

		r = httptest.NewRequest(http.MethodGet, "/v1/cors", nil)
		r.Header.Set("Origin", "http://evil.test")
		w = httptest.NewRecorder()
		app.ServeHTTP(w, r)

		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		t.Logf("\t%s\tShould not allow an unknown origin.", success)
	}
}
