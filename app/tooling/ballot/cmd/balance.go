package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address...]",
	Short: "Print the committed balance of each address.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	l, err := loadChain()
	if err != nil {
		return err
	}

	ns, err := loadNames()
	if err != nil {
		return err
	}

	data := pterm.TableData{{"Address", "Balance"}}
	for _, address := range args {
		data = append(data, []string{ns.Lookup(address), pterm.Sprint(l.Balance(address))})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
