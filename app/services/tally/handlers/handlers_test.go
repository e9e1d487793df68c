package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ballot/app/services/tally/handlers"
	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/business/core/tally/stores/tallymem"
	"github.com/ardanlabs/ballot/business/web/errs"
	"github.com/ardanlabs/ballot/foundation/blockchain/keys"
	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/ardanlabs/ballot/foundation/events"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type election struct {
	ID         string   `json:"id"`
	Candidates []string `json:"candidates"`
	Voters     []string `json:"voters"`
	Status     string   `json:"status"`
}

type apiTest struct {
	t   *testing.T
	app http.Handler
}

func (at apiTest) do(method string, path string, body any, status int, resp any) {
	at.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(at.t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	at.app.ServeHTTP(w, r)

	require.Equal(at.t, status, w.Code, "%s %s: %s", method, path, w.Body.String())

	if resp != nil {
		require.NoError(at.t, json.NewDecoder(w.Body).Decode(resp))
	}
}

func address(regNo string) string {
	return keys.Address(keys.Derive("password", regNo))
}

// =============================================================================

func Test_ElectionAPI(t *testing.T) {
	log := zap.NewNop().Sugar()

	at := apiTest{
		t: t,
		app: handlers.APIMux(handlers.APIMuxConfig{
			Shutdown:    make(chan os.Signal, 1),
			Log:         log,
			Tally:       tally.NewCore(log, tallymem.NewStore(), nil),
			Evts:        events.New(),
			CORSOrigins: []string{"*"},
		}),
	}

	cand1 := address("202300001")
	cand2 := address("202300002")
	voter := address("202300003")

	t.Log("Given the need to run an election over the api.")
	{
		var e election
		at.do(http.MethodPost, "/v1/elections", map[string]any{"title": "Class Rep", "candidates": []string{cand1, cand2}}, http.StatusCreated, &e)
		require.Equal(t, "PENDING", e.Status)
		t.Logf("\t%s\tShould be able to create an election.", success)

		var er errs.Response
		at.do(http.MethodPost, "/v1/elections", map[string]any{"title": "Bad", "candidates": []string{cand1}}, http.StatusBadRequest, &er)
		require.Contains(t, er.Fields, "candidates")
		t.Logf("\t%s\tShould reject an election with one candidate.", success)

		at.do(http.MethodGet, "/v1/elections/unknown", nil, http.StatusNotFound, nil)
		t.Logf("\t%s\tShould get a 404 for an unknown election.", success)

		base := "/v1/elections/" + e.ID

		at.do(http.MethodPost, base+"/register", map[string]string{"address": voter}, http.StatusOK, &e)
		require.Len(t, e.Voters, 3)
		at.do(http.MethodPost, base+"/register", map[string]string{"address": voter}, http.StatusConflict, nil)
		t.Logf("\t%s\tShould be able to register a voter once.", success)

		at.do(http.MethodPost, base+"/begin", nil, http.StatusOK, &e)
		require.Equal(t, "ONGOING", e.Status)
		t.Logf("\t%s\tShould be able to begin the election.", success)

		var cast struct {
			TxHash      string             `json:"tx_hash"`
			Transaction ledger.Transaction `json:"transaction"`
		}
		ballot := map[string]string{"reg_no": "202300003", "password": "password", "candidate": cand1}
		at.do(http.MethodPost, base+"/vote", ballot, http.StatusOK, &cast)
		require.Equal(t, cast.Transaction.Hash(), cast.TxHash)
		t.Logf("\t%s\tShould be able to vote.", success)

		at.do(http.MethodPost, base+"/vote", ballot, http.StatusBadRequest, nil)
		t.Logf("\t%s\tShould not be able to vote twice.", success)

		var status struct {
			Status string `json:"status"`
		}
		at.do(http.MethodGet, base+"/status/"+url.PathEscape(voter), nil, http.StatusOK, &status)
		require.Equal(t, "VOTED", status.Status)
		t.Logf("\t%s\tShould report the voter voted.", success)

		var results []tally.Result
		at.do(http.MethodGet, base+"/results", nil, http.StatusOK, &results)
		require.Equal(t, []tally.Result{{Candidate: cand1, Votes: 2}, {Candidate: cand2, Votes: 1}}, results)
		t.Logf("\t%s\tShould tally the votes.", success)

		var audit struct {
			Valid bool `json:"valid"`
		}
		at.do(http.MethodGet, base+"/audit", nil, http.StatusOK, &audit)
		require.True(t, audit.Valid)
		t.Logf("\t%s\tShould pass the audit.", success)

		var receipt ledger.Receipt
		at.do(http.MethodGet, fmt.Sprintf("%s/receipts/%s", base, cast.TxHash), nil, http.StatusOK, &receipt)
		require.True(t, receipt.Verify())
		at.do(http.MethodGet, fmt.Sprintf("%s/receipts/%s", base, strings.ToLower(cast.TxHash)), nil, http.StatusOK, &receipt)
		require.Equal(t, cast.TxHash, receipt.TxHash)
		at.do(http.MethodGet, base+"/receipts/"+strings.Repeat("0", 64), nil, http.StatusNotFound, nil)

		var bad errs.Response
		at.do(http.MethodGet, base+"/receipts/ABCD", nil, http.StatusBadRequest, &bad)
		require.Contains(t, bad.Error, `"ABCD" is not a transaction hash`)
		t.Logf("\t%s\tShould return a verifiable receipt.", success)

		at.do(http.MethodPost, base+"/end", nil, http.StatusOK, &e)
		at.do(http.MethodPost, base+"/end", nil, http.StatusConflict, nil)
		t.Logf("\t%s\tShould be able to end the election once.", success)

		var all []election
		at.do(http.MethodGet, "/v1/elections", nil, http.StatusOK, &all)
		require.Len(t, all, 1)
		require.Equal(t, "ENDED", all[0].Status)
		t.Logf("\t%s\tShould list the elections.", success)
	}
}

func Test_ElectionEvents(t *testing.T) {
	ctx := t.Context()
	log := zap.NewNop().Sugar()

	evts := events.New()
	ev := func(electionID string, kind string, msg string) {
		evts.Publish(events.Event{ElectionID: electionID, Kind: kind, Message: msg})
	}
	core := tally.NewCore(log, tallymem.NewStore(), ev)

	srv := httptest.NewServer(handlers.APIMux(handlers.APIMuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		Tally:    core,
		Evts:     evts,
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	candidates := []string{address("202300001"), address("202300002")}

	watched, err := core.Create(ctx, tally.NewElection{Title: "Watched", Candidates: candidates})
	require.NoError(t, err)
	other, err := core.Create(ctx, tally.NewElection{Title: "Other", Candidates: candidates})
	require.NoError(t, err)

	t.Log("Given the need to stream the events of an election.")
	{
		_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/v1/elections/unknown/events", nil)
		require.Error(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		t.Logf("\t%s\tShould not stream an unknown election.", success)

		c, _, err := websocket.DefaultDialer.Dial(wsURL+"/v1/elections/"+watched.ID+"/events", nil)
		require.NoError(t, err)
		defer c.Close()
		t.Logf("\t%s\tShould be able to upgrade the connection.", success)

		_, err = core.Begin(ctx, other.ID)
		require.NoError(t, err)
		_, err = core.Register(ctx, watched.ID, address("202300003"))
		require.NoError(t, err)
		_, err = core.Begin(ctx, watched.ID)
		require.NoError(t, err)

		var got []events.Event
		for range 2 {
			var evt events.Event
			require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
			require.NoError(t, c.ReadJSON(&evt))
			got = append(got, evt)
		}

		require.Equal(t, watched.ID, got[0].ElectionID, "Should not deliver events of another election.")
		require.Equal(t, "register", got[0].Kind)
		require.Equal(t, watched.ID, got[1].ElectionID)
		require.Equal(t, "begin", got[1].Kind)
		t.Logf("\t%s\tShould only receive the events of the watched election.", success)

		evts.Shutdown()

		require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				var ne interface{ Timeout() bool }
				if errors.As(err, &ne) && ne.Timeout() {
					t.Fatalf("\t%s\tShould close the stream on shutdown: %v", failed, err)
				}
				break
			}
		}
		t.Logf("\t%s\tShould close the stream on shutdown.", success)
	}
}
