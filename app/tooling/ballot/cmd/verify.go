package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ErrAuditFailed is returned when the chain does not pass the audit.
var ErrAuditFailed = errors.New("chain failed the audit")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Audit the chain file against the registered voters.",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&votersPath, "voters", "v", "zblock/voters.txt", "File with one registered address per line.")
}

func verifyRun(cmd *cobra.Command, args []string) error {
	addrs, err := readAddresses(votersPath)
	if err != nil {
		return fmt.Errorf("reading voters: %w", err)
	}

	l, err := loadChain()
	if err != nil {
		return err
	}

	if !l.IsValid(addrs) {
		return ErrAuditFailed
	}

	pterm.Success.Printfln("chain of %d blocks is valid", len(l.Blocks()))

	return nil
}
