package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var votersPath string

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Create a chain that gives every registered address one vote.",
	RunE:  genesisRun,
}

func init() {
	rootCmd.AddCommand(genesisCmd)
	genesisCmd.Flags().StringVarP(&votersPath, "voters", "v", "zblock/voters.txt", "File with one registered address per line.")
}

func genesisRun(cmd *cobra.Command, args []string) error {
	addrs, err := readAddresses(votersPath)
	if err != nil {
		return fmt.Errorf("reading voters: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(chainPath), 0755); err != nil {
		return err
	}

	l, err := ledger.New(addrs)
	if err != nil {
		return err
	}

	if err := storeChain(l); err != nil {
		return err
	}

	pterm.Success.Printfln("genesis written to %s for %d voters", chainPath, len(addrs))

	return nil
}
