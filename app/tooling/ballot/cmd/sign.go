package cmd

import (
	"github.com/ardanlabs/ballot/foundation/blockchain/keys"
	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount int64
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a vote and commit it to the chain file.",
	RunE:  signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
	credentialFlags(signCmd)
	signCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the candidate.")
	signCmd.Flags().Int64VarP(&amount, "amount", "a", 1, "Units to send.")
	signCmd.MarkFlagRequired("to")
}

func signRun(cmd *cobra.Command, args []string) error {
	pass, err := getPassword()
	if err != nil {
		return err
	}

	l, err := loadChain()
	if err != nil {
		return err
	}

	pk := keys.Derive(pass, regNo)

	tx := ledger.NewTransaction(keys.Address(pk), to, amount)
	if err := tx.Sign(pk); err != nil {
		return err
	}

	if err := l.AddTransaction(tx); err != nil {
		return err
	}

	if err := storeChain(l); err != nil {
		return err
	}

	pterm.Success.Printfln("committed %s", tx)
	pterm.Println(tx.Hash())

	return nil
}
