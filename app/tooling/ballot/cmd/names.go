package cmd

import (
	"sort"

	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/ardanlabs/ballot/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Print the names file with the committed balance of each address.",
	Args:  cobra.NoArgs,
	RunE:  namesRun,
}

func init() {
	rootCmd.AddCommand(namesCmd)
}

func namesRun(cmd *cobra.Command, args []string) error {
	ns, err := loadNames()
	if err != nil {
		return err
	}

	l, err := loadChain()
	if err != nil {
		return err
	}

	return pterm.DefaultTable.WithHasHeader().WithData(namesTable(ns, l)).Render()
}

// namesTable lists every named address in name order with its committed
// balance.
func namesTable(ns *nameservice.NameService, l *ledger.Ledger) pterm.TableData {
	names := ns.Copy()

	addresses := make([]string, 0, len(names))
	for address := range names {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return names[addresses[i]] < names[addresses[j]] })

	data := pterm.TableData{{"Name", "Address", "Balance"}}
	for _, address := range addresses {
		data = append(data, []string{names[address], address, pterm.Sprint(l.Balance(address))})
	}

	return data
}
