package cmd

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/ballot/app/services/tally/handlers"
	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/business/core/tally/stores/tallymem"
	"github.com/ardanlabs/ballot/foundation/blockchain/keys"
	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/ardanlabs/ballot/foundation/events"
	"github.com/ardanlabs/ballot/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func run(t *testing.T, args ...string) error {
	t.Helper()

	password = ""
	electionID = ""
	namesPath = ""
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func address(regNo string) string {
	return keys.Address(keys.Derive("password", regNo))
}

// =============================================================================

func Test_OfflineChain(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	dir := t.TempDir()
	chain := filepath.Join(dir, "chain.json")
	voters := filepath.Join(dir, "voters.txt")

	addrs := []string{address("202300001"), address("202300002"), address("202300003")}
	require.NoError(t, os.WriteFile(voters, []byte(strings.Join(addrs, "\n")+"\n\n"), 0600))

	t.Log("Given the need to manage a chain file from the command line.")
	{
		require.NoError(t, run(t, "genesis", "--voters", voters, "--chain", chain))
		require.NoError(t, run(t, "verify", "--voters", voters, "--chain", chain))
		t.Logf("\t%s\tShould be able to create and verify a genesis chain.", success)

		require.NoError(t, run(t, "sign", "--chain", chain, "-r", "202300001", "-p", "password", "--to", addrs[1]))

		data, err := os.ReadFile(chain)
		require.NoError(t, err)
		l, err := ledger.FromString(string(data))
		require.NoError(t, err)
		require.Len(t, l.Blocks(), 2)
		require.Equal(t, int64(0), l.Balance(addrs[0]))
		require.Equal(t, int64(2), l.Balance(addrs[1]))
		t.Logf("\t%s\tShould commit a signed vote to the chain file.", success)

		names := filepath.Join(dir, "names.txt")
		require.NoError(t, os.WriteFile(names, []byte("Ada "+addrs[0]+"\n"), 0600))
		require.NoError(t, run(t, "balance", "--chain", chain, "--names", names, addrs[0], addrs[1]))

		require.Error(t, run(t, "balance", "--chain", chain, "--names", filepath.Join(dir, "missing.txt"), addrs[0]))
		t.Logf("\t%s\tShould print balances with readable names.", success)

		require.NoError(t, os.WriteFile(names, []byte("Ada "+addrs[0]+"\nBob Stone "+addrs[1]+"\n"), 0600))
		require.NoError(t, run(t, "names", "--chain", chain, "--names", names))

		ns, err := nameservice.New(names)
		require.NoError(t, err)
		want := pterm.TableData{
			{"Name", "Address", "Balance"},
			{"Ada", addrs[0], "0"},
			{"Bob Stone", addrs[1], "2"},
		}
		require.Equal(t, want, namesTable(ns, l))
		t.Logf("\t%s\tShould list the names file with balances.", success)

		tx := l.Blocks()[1].Transactions[0]
		require.NoError(t, run(t, "receipt", "--chain", chain, tx.Hash()))
		require.ErrorIs(t, run(t, "receipt", "--chain", chain, "ABCD"), ledger.ErrTransactionNotFound)
		t.Logf("\t%s\tShould be able to verify a receipt.", success)

		err = run(t, "sign", "--chain", chain, "-r", "202300001", "-p", "password", "--to", addrs[2])
		require.True(t, ledger.IsTransactionError(err), "Should not be able to vote twice: %v", err)
		t.Logf("\t%s\tShould not be able to vote twice.", success)

		require.NoError(t, os.WriteFile(voters, []byte(addrs[0]+"\n"+addrs[1]+"\n"), 0600))
		require.ErrorIs(t, run(t, "verify", "--voters", voters, "--chain", chain), ErrAuditFailed)
		t.Logf("\t%s\tShould fail the audit with a different voter list.", success)
	}
}

func Test_ServiceVote(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	ctx := context.Background()
	log := zap.NewNop().Sugar()
	core := tally.NewCore(log, tallymem.NewStore(), nil)

	srv := httptest.NewServer(handlers.APIMux(handlers.APIMuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		Tally:    core,
		Evts:     events.New(),
	}))
	defer srv.Close()

	cand1 := address("202300001")
	cand2 := address("202300002")

	e, err := core.Create(ctx, tally.NewElection{Title: "Class Rep", Candidates: []string{cand1, cand2}})
	require.NoError(t, err)
	_, err = core.Begin(ctx, e.ID)
	require.NoError(t, err)

	t.Log("Given the need to vote through the tally service.")
	{
		require.NoError(t, run(t, "vote", "--url", srv.URL, "-e", e.ID, "-r", "202300001", "-p", "password", "-t", cand2))

		results, err := core.Results(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, int64(2), results[1].Votes)
		t.Logf("\t%s\tShould be able to vote.", success)

		err = run(t, "vote", "--url", srv.URL, "-e", e.ID, "-r", "202300001", "-p", "password", "-t", cand1)
		require.ErrorContains(t, err, "status 400")
		t.Logf("\t%s\tShould get the service error for a self vote.", success)

		require.NoError(t, run(t, "results", "--url", srv.URL, "-e", e.ID))
		t.Logf("\t%s\tShould be able to print the results.", success)
	}
}
