package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrInvalidReceipt is returned when a receipt's proof does not lead to its
// merkle root.
var ErrInvalidReceipt = errors.New("receipt does not verify")

var electionID string

var receiptCmd = &cobra.Command{
	Use:   "receipt <tx hash>",
	Short: "Print and verify the proof a vote was committed.",
	Long:  "Reads the chain file unless an election id is provided, then the receipt comes from the tally service.",
	Args:  cobra.ExactArgs(1),
	RunE:  receiptRun,
}

func init() {
	rootCmd.AddCommand(receiptCmd)
	receiptCmd.Flags().StringVarP(&electionID, "election", "e", "", "Id of the election on the tally service.")
}

func receiptRun(cmd *cobra.Command, args []string) error {
	var r ledger.Receipt
	var err error

	switch electionID {
	case "":
		r, err = localReceipt(args[0])
	default:
		r, err = remoteReceipt(electionID, args[0])
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	pterm.Println(string(data))

	if !r.Verify() {
		return ErrInvalidReceipt
	}
	pterm.Success.Printfln("transaction is in block %d", r.BlockIndex)

	return nil
}

func localReceipt(txHash string) (ledger.Receipt, error) {
	l, err := loadChain()
	if err != nil {
		return ledger.Receipt{}, err
	}

	return l.Receipt(txHash)
}

func remoteReceipt(id string, txHash string) (ledger.Receipt, error) {
	endpoint := fmt.Sprintf("%s/v1/elections/%s/receipts/%s", serviceURL, url.PathEscape(id), txHash)

	var r ledger.Receipt
	if err := call(http.MethodGet, endpoint, nil, &r); err != nil {
		return ledger.Receipt{}, err
	}

	return r, nil
}
