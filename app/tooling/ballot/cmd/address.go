package cmd

import (
	"github.com/ardanlabs/ballot/foundation/blockchain/keys"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address derived from the voter's credentials.",
	RunE:  addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
	credentialFlags(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) error {
	pass, err := getPassword()
	if err != nil {
		return err
	}

	pk := keys.Derive(pass, regNo)
	pterm.Println(keys.Address(pk))

	return nil
}
